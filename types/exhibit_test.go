package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestExhibitWindow(t *testing.T) {
	c := qt.New(t)
	start := time.Unix(1_000, 0)
	h := &ExhibitHeader{StartTime: start, EndTime: start.Add(time.Hour)}

	c.Assert(h.Open(start.Add(-time.Second)), qt.IsFalse)
	c.Assert(h.Open(start), qt.IsTrue)
	c.Assert(h.Open(start.Add(time.Hour-time.Second)), qt.IsTrue)
	c.Assert(h.Open(start.Add(time.Hour)), qt.IsFalse)

	c.Assert(h.Status(start.Add(-time.Second)), qt.Equals, ExhibitUpcoming)
	c.Assert(h.Status(start), qt.Equals, ExhibitOngoing)
	c.Assert(h.Status(start.Add(time.Hour)), qt.Equals, ExhibitEnded)
}

func TestExhibitIDKeyOrder(t *testing.T) {
	c := qt.New(t)
	var id ExhibitID
	c.Assert(id.Unmarshal(ExhibitID(258).Marshal()), qt.IsNil)
	c.Assert(id, qt.Equals, ExhibitID(258))
	c.Assert(string(ExhibitID(2).Marshal()) < string(ExhibitID(10).Marshal()), qt.IsTrue)
	c.Assert(id.Unmarshal([]byte{1}), qt.Not(qt.IsNil))

	parsed, err := ParseExhibitID("42")
	c.Assert(err, qt.IsNil)
	c.Assert(parsed, qt.Equals, ExhibitID(42))
	_, err = ParseExhibitID("-1")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestExhibitEncoding(t *testing.T) {
	c := qt.New(t)
	e := &Exhibit{
		ExhibitHeader: ExhibitHeader{
			ID:          1,
			Organizer:   common.HexToAddress("0x00000000000000000000000000000000000000aa"),
			MetadataCID: "bafy",
			StartTime:   time.Unix(100, 0).UTC(),
			EndTime:     time.Unix(200, 0).UTC(),
			PassEnabled: true,
		},
		EncryptedCount: Handle{1, 2, 3},
	}

	data, err := cbor.Marshal(e)
	c.Assert(err, qt.IsNil)
	var back Exhibit
	c.Assert(cbor.Unmarshal(data, &back), qt.IsNil)
	c.Assert(back.ID, qt.Equals, e.ID)
	c.Assert(back.Organizer, qt.Equals, e.Organizer)
	c.Assert(back.StartTime.Equal(e.StartTime), qt.IsTrue)
	c.Assert(back.EncryptedCount, qt.Equals, e.EncryptedCount)

	js, err := json.Marshal(e.Header())
	c.Assert(err, qt.IsNil)
	c.Assert(string(js), qt.Not(qt.Contains), "encryptedCount")
}

func TestHandleText(t *testing.T) {
	c := qt.New(t)
	h := Handle{0xff}
	txt, err := h.MarshalText()
	c.Assert(err, qt.IsNil)
	var back Handle
	c.Assert(back.UnmarshalText(txt), qt.IsNil)
	c.Assert(back, qt.Equals, h)
	c.Assert(back.IsZero(), qt.IsFalse)
	_, err = HandleFromHex("0x01")
	c.Assert(err, qt.Not(qt.IsNil))
}
