// Package poseidon hashes sequences of field elements with the iden3 Poseidon
// permutation over the BN254 scalar field.
package poseidon

import (
	"fmt"
	"math/big"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// maxChunk is the widest input the iden3 permutation accepts.
const maxChunk = 16

// MultiPoseidon hashes up to 256 field elements, chunked in groups of 16
// whose digests are hashed again when there is more than one chunk.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) > 256 {
		return nil, fmt.Errorf("too many inputs")
	} else if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	hashes := []*big.Int{}
	chunk := []*big.Int{}
	for _, input := range inputs {
		if len(chunk) == maxChunk {
			hash, err := poseidon.Hash(chunk)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			chunk = []*big.Int{}
		}
		chunk = append(chunk, input)
	}
	if len(chunk) > 0 {
		hash, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return poseidon.Hash(hashes)
}

// Transcript accumulates the public values of a Fiat-Shamir proof. Values are
// reduced into the scalar field as they are appended.
type Transcript struct {
	elems []*big.Int
}

// NewTranscript starts a transcript with a domain separation tag.
func NewTranscript(domain string) *Transcript {
	t := &Transcript{}
	return t.AppendBytes([]byte(domain))
}

// Append adds integers to the transcript.
func (t *Transcript) Append(values ...*big.Int) *Transcript {
	for _, v := range values {
		t.elems = append(t.elems, ecc.BigToFF(constants.Q, new(big.Int).Abs(v)))
	}
	return t
}

// AppendPoints adds the affine coordinates of each point.
func (t *Transcript) AppendPoints(points ...ecc.Point) *Transcript {
	for _, p := range points {
		x, y := p.Point()
		t.Append(x, y)
	}
	return t
}

// AppendBytes adds an arbitrary byte string, split in 31 byte limbs so each
// limb is a canonical field element. The length is appended first.
func (t *Transcript) AppendBytes(b []byte) *Transcript {
	t.Append(big.NewInt(int64(len(b))))
	for start := 0; start < len(b); start += 31 {
		end := min(start+31, len(b))
		t.Append(new(big.Int).SetBytes(b[start:end]))
	}
	return t
}

// Challenge hashes the transcript.
func (t *Transcript) Challenge() (*big.Int, error) {
	return MultiPoseidon(t.elems...)
}
