package poseidon

import (
	"math/big"
	"testing"

	"github.com/billat883/ArtSync/crypto/ecc/bn254"
	qt "github.com/frankban/quicktest"
)

func TestMultiPoseidonChunking(t *testing.T) {
	c := qt.New(t)

	_, err := MultiPoseidon()
	c.Assert(err, qt.ErrorMatches, "no inputs provided")

	inputs := make([]*big.Int, 40)
	for i := range inputs {
		inputs[i] = big.NewInt(int64(i))
	}
	h1, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	h2, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h2), qt.Equals, 0)

	inputs[39] = big.NewInt(1000)
	h3, err := MultiPoseidon(inputs...)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Cmp(h3), qt.Not(qt.Equals), 0)
}

func TestTranscriptBindsEveryValue(t *testing.T) {
	c := qt.New(t)

	g := bn254.New()
	g.SetGenerator()
	base, err := NewTranscript("test").AppendPoints(g).AppendBytes([]byte("contract")).Challenge()
	c.Assert(err, qt.IsNil)

	otherDomain, err := NewTranscript("other").AppendPoints(g).AppendBytes([]byte("contract")).Challenge()
	c.Assert(err, qt.IsNil)
	c.Assert(base.Cmp(otherDomain), qt.Not(qt.Equals), 0)

	otherBytes, err := NewTranscript("test").AppendPoints(g).AppendBytes([]byte("contracT")).Challenge()
	c.Assert(err, qt.IsNil)
	c.Assert(base.Cmp(otherBytes), qt.Not(qt.Equals), 0)

	// long byte strings span several limbs
	long := make([]byte, 100)
	long[99] = 1
	h, err := NewTranscript("test").AppendBytes(long).Challenge()
	c.Assert(err, qt.IsNil)
	c.Assert(h.Sign() > 0, qt.IsTrue)
}
