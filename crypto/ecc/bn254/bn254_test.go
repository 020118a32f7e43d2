package bn254

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestGroupLaws(t *testing.T) {
	c := qt.New(t)

	g := New()
	g.SetGenerator()

	zero := New()
	c.Assert(zero.IsZero(), qt.IsTrue)

	// G + O = G
	sum := New()
	sum.Add(g, zero)
	c.Assert(sum.Equal(g), qt.IsTrue)

	// 2G + 3G = 5G
	two, three, five := New(), New(), New()
	two.ScalarBaseMult(big.NewInt(2))
	three.ScalarMult(g, big.NewInt(3))
	five.ScalarBaseMult(big.NewInt(5))
	sum.Add(two, three)
	c.Assert(sum.Equal(five), qt.IsTrue)

	// G + (-G) = O
	neg := New()
	neg.Neg(g)
	sum.Add(g, neg)
	c.Assert(sum.IsZero(), qt.IsTrue)
}

func TestMarshalRoundTrip(t *testing.T) {
	c := qt.New(t)

	p := New()
	p.ScalarBaseMult(big.NewInt(1234))

	back := New()
	c.Assert(back.Unmarshal(p.Marshal()), qt.IsNil)
	c.Assert(back.Equal(p), qt.IsTrue)

	js, err := json.Marshal(p)
	c.Assert(err, qt.IsNil)
	fromJSON := New()
	c.Assert(json.Unmarshal(js, fromJSON), qt.IsNil)
	c.Assert(fromJSON.Equal(p), qt.IsTrue)

	cb, err := cbor.Marshal(p)
	c.Assert(err, qt.IsNil)
	fromCBOR := New()
	c.Assert(cbor.Unmarshal(cb, fromCBOR), qt.IsNil)
	c.Assert(fromCBOR.Equal(p), qt.IsTrue)

	// the identity survives encoding too
	zero := New()
	back = New()
	back.SetGenerator()
	c.Assert(back.Unmarshal(zero.Marshal()), qt.IsNil)
	c.Assert(back.IsZero(), qt.IsTrue)
}

func TestRejectsPointsOffCurve(t *testing.T) {
	c := qt.New(t)
	p := New()
	c.Assert(p.UnmarshalJSON([]byte(`["1","3"]`)), qt.ErrorMatches, ".*not on bn254")
}
