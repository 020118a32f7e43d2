package elgamal

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/billat883/ArtSync/crypto/ecc"
)

// SizeCiphertext is the length of a serialized ciphertext: two compressed
// points.
const SizeCiphertext = 64

// Ciphertext represents an ElGamal encrypted message with homomorphic properties.
// It is a wrapper for convenience of the elGamal ciphersystem that encapsulates the two points of a ciphertext.
type Ciphertext struct {
	C1 ecc.Point `json:"c1"`
	C2 ecc.Point `json:"c2"`
}

// NewCiphertext creates a new Ciphertext on the same curve as the given
// Point. Both points are the identity, which is a valid encryption of zero.
func NewCiphertext(curve ecc.Point) *Ciphertext {
	return &Ciphertext{C1: curve.New(), C2: curve.New()}
}

// Encrypt encrypts a message using the public key provided as elliptic curve point.
// The randomness k can be provided or nil to generate a new one.
func (z *Ciphertext) Encrypt(message *big.Int, publicKey ecc.Point, k *big.Int) (*Ciphertext, error) {
	var err error
	if k == nil {
		k, err = RandK()
		if err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	c1, c2, err := EncryptWithK(publicKey, message, k)
	if err != nil {
		return nil, fmt.Errorf("elgamal encryption failed: %w", err)
	}
	z.C1 = c1
	z.C2 = c2
	return z, nil
}

// Add adds two Ciphertext and stores the result in z, which is also returned.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.SafeAdd(x.C1, y.C1)
	z.C2.SafeAdd(x.C2, y.C2)
	return z
}

// IsZero reports whether z is the trivial encryption of zero.
func (z *Ciphertext) IsZero() bool {
	return z.C1.IsZero() && z.C2.IsZero()
}

// Serialize returns C1 || C2 in compressed form.
func (z *Ciphertext) Serialize() []byte {
	buf := make([]byte, 0, SizeCiphertext)
	buf = append(buf, z.C1.Marshal()...)
	return append(buf, z.C2.Marshal()...)
}

// Deserialize reconstructs a Ciphertext from the output of Serialize. The
// points must be allocated on the expected curve.
func (z *Ciphertext) Deserialize(data []byte) error {
	if len(data) != SizeCiphertext {
		return fmt.Errorf("invalid input length: got %d bytes, expected %d bytes", len(data), SizeCiphertext)
	}
	half := SizeCiphertext / 2
	if err := z.C1.Unmarshal(data[:half]); err != nil {
		return fmt.Errorf("invalid c1: %w", err)
	}
	if err := z.C2.Unmarshal(data[half:]); err != nil {
		return fmt.Errorf("invalid c2: %w", err)
	}
	return nil
}

// Marshal converts Ciphertext to a byte slice.
func (z *Ciphertext) Marshal() ([]byte, error) {
	return json.Marshal(z)
}

// Unmarshal populates Ciphertext from a byte slice.
func (z *Ciphertext) Unmarshal(data []byte) error {
	return json.Unmarshal(data, z)
}

// String returns a string representation of the Ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.C1 == nil || z.C2 == nil {
		return "{C1: nil, C2: nil}"
	}
	return fmt.Sprintf("{C1: %s, C2: %s}", z.C1.String(), z.C2.String())
}
