package elgamal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/billat883/ArtSync/crypto/hash/poseidon"
	"github.com/vocdoni/arbo"
)

// SizeEncryptionProof is the length of a serialized EncryptionProof.
const SizeEncryptionProof = 64

const proofDomain = "artsync/elgamal/encryption/v1"

// ErrInvalidEncryptionProof is returned when a proof does not verify.
var ErrInvalidEncryptionProof = errors.New("invalid encryption proof")

// EncryptionProof is a non-interactive Chaum-Pedersen proof that a
// ciphertext (C1, C2) encrypts a known value v under a public key, that is
// log_G(C1) == log_PK(C2 - v*G). The challenge is bound to the caller
// context, so a proof cannot be replayed under a different binding.
type EncryptionProof struct {
	Challenge *big.Int
	Response  *big.Int
}

// ProveEncryption builds a proof that ct encrypts value with randomness k
// under publicKey.
func ProveEncryption(publicKey ecc.Point, ct *Ciphertext, value, k *big.Int, context []byte) (*EncryptionProof, error) {
	order := publicKey.Order()
	r, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, fmt.Errorf("cannot generate proof nonce: %w", err)
	}
	a1 := publicKey.New()
	a1.ScalarBaseMult(r)
	a2 := publicKey.New()
	a2.ScalarMult(publicKey, r)

	e, err := challenge(publicKey, ct, value, a1, a2, context)
	if err != nil {
		return nil, err
	}
	// z = r + e*k mod order
	z := new(big.Int).Mul(e, k)
	z.Add(z, r)
	z.Mod(z, order)
	return &EncryptionProof{Challenge: e, Response: z}, nil
}

// Verify checks the proof for ct, value and context.
func (p *EncryptionProof) Verify(publicKey ecc.Point, ct *Ciphertext, value *big.Int, context []byte) error {
	if p == nil || p.Challenge == nil || p.Response == nil {
		return ErrInvalidEncryptionProof
	}
	order := publicKey.Order()
	if p.Challenge.Sign() < 0 || p.Challenge.Cmp(order) >= 0 ||
		p.Response.Sign() < 0 || p.Response.Cmp(order) >= 0 {
		return ErrInvalidEncryptionProof
	}
	// a1 = z*G - e*C1
	a1 := publicKey.New()
	a1.ScalarBaseMult(p.Response)
	eC1 := publicKey.New()
	eC1.ScalarMult(ct.C1, p.Challenge)
	eC1.Neg(eC1)
	a1.Add(a1, eC1)

	// a2 = z*PK - e*(C2 - v*G)
	vG := publicKey.New()
	vG.ScalarBaseMult(new(big.Int).Mod(value, order))
	vG.Neg(vG)
	shared := publicKey.New()
	shared.Add(ct.C2, vG)
	shared.ScalarMult(shared, p.Challenge)
	shared.Neg(shared)
	a2 := publicKey.New()
	a2.ScalarMult(publicKey, p.Response)
	a2.Add(a2, shared)

	e, err := challenge(publicKey, ct, value, a1, a2, context)
	if err != nil {
		return err
	}
	if e.Cmp(p.Challenge) != 0 {
		return ErrInvalidEncryptionProof
	}
	return nil
}

// Serialize returns the challenge and response as 32 byte little endian
// field elements.
func (p *EncryptionProof) Serialize() []byte {
	buf := make([]byte, 0, SizeEncryptionProof)
	buf = append(buf, arbo.BigIntToBytes(32, p.Challenge)...)
	return append(buf, arbo.BigIntToBytes(32, p.Response)...)
}

// Deserialize reads a proof produced by Serialize.
func (p *EncryptionProof) Deserialize(data []byte) error {
	if len(data) != SizeEncryptionProof {
		return fmt.Errorf("invalid proof length: got %d bytes, expected %d bytes", len(data), SizeEncryptionProof)
	}
	p.Challenge = arbo.BytesToBigInt(data[:32])
	p.Response = arbo.BytesToBigInt(data[32:])
	return nil
}

func challenge(publicKey ecc.Point, ct *Ciphertext, value *big.Int, a1, a2 ecc.Point, context []byte) (*big.Int, error) {
	e, err := poseidon.NewTranscript(proofDomain).
		AppendPoints(publicKey, ct.C1, ct.C2, a1, a2).
		Append(value).
		AppendBytes(context).
		Challenge()
	if err != nil {
		return nil, fmt.Errorf("cannot compute proof challenge: %w", err)
	}
	return e.Mod(e, publicKey.Order()), nil
}
