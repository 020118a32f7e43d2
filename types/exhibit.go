package types

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ExhibitID identifies an exhibit. Ids are allocated sequentially starting
// at 1 and are never reused.
type ExhibitID uint64

// FirstExhibitID is the id allocated to the first scheduled exhibit.
const FirstExhibitID ExhibitID = 1

// Marshal encodes the id as 8 big endian bytes, so keys sort by id.
func (id ExhibitID) Marshal() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Unmarshal decodes an id encoded with Marshal.
func (id *ExhibitID) Unmarshal(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("invalid ExhibitID length: %d", len(data))
	}
	*id = ExhibitID(binary.BigEndian.Uint64(data))
	return nil
}

func (id ExhibitID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseExhibitID parses a decimal exhibit id.
func ParseExhibitID(s string) (ExhibitID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid exhibit id %q: %w", s, err)
	}
	return ExhibitID(v), nil
}

// ExhibitStatus is the lifecycle phase of an exhibit relative to a clock.
type ExhibitStatus string

const (
	ExhibitUpcoming ExhibitStatus = "upcoming"
	ExhibitOngoing  ExhibitStatus = "ongoing"
	ExhibitEnded    ExhibitStatus = "ended"
)

// ExhibitHeader is the public part of an exhibit, without the encrypted
// attendance counter.
type ExhibitHeader struct {
	ID          ExhibitID      `json:"id"          cbor:"0,keyasint,omitempty"`
	Organizer   common.Address `json:"organizer"   cbor:"1,keyasint,omitempty"`
	MetadataCID string         `json:"metadataCID" cbor:"2,keyasint,omitempty"`
	StartTime   time.Time      `json:"startTime"   cbor:"3,keyasint,omitempty"`
	EndTime     time.Time      `json:"endTime"     cbor:"4,keyasint,omitempty"`
	PassEnabled bool           `json:"passEnabled" cbor:"5,keyasint,omitempty"`
}

// Exhibit is the full exhibit record.
type Exhibit struct {
	ExhibitHeader
	EncryptedCount Handle `json:"encryptedCount" cbor:"6,keyasint,omitempty"`
}

// Header returns the header projection of the exhibit.
func (e *Exhibit) Header() *ExhibitHeader {
	h := e.ExhibitHeader
	return &h
}

// Open reports whether check-ins are accepted at t. The window includes its
// start and excludes its end.
func (h *ExhibitHeader) Open(t time.Time) bool {
	return !t.Before(h.StartTime) && t.Before(h.EndTime)
}

// Status returns the lifecycle phase of the exhibit at t.
func (h *ExhibitHeader) Status(t time.Time) ExhibitStatus {
	switch {
	case t.Before(h.StartTime):
		return ExhibitUpcoming
	case h.Open(t):
		return ExhibitOngoing
	default:
		return ExhibitEnded
	}
}

func (e *Exhibit) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}
