package coprocessor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/billat883/ArtSync/crypto/elgamal"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// SizeInputProof is the length of an input proof: the serialized ciphertext
// followed by its encryption proof.
const SizeInputProof = elgamal.SizeCiphertext + elgamal.SizeEncryptionProof

// VerifyInput checks that the proof carries the ciphertext behind handle and
// proves it encrypts the accepted input under binding. Accepted ciphertexts
// are stored so they can be used as operands.
func (cp *Coprocessor) VerifyInput(ctx context.Context, handle types.Handle, proof []byte, binding fhe.Binding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if binding.ChainID != cp.conf.ChainID {
		return fmt.Errorf("%w: chain id %d, expected %d", fhe.ErrInvalidProof, binding.ChainID, cp.conf.ChainID)
	}
	if len(proof) != SizeInputProof {
		return fmt.Errorf("%w: length %d", fhe.ErrInvalidProof, len(proof))
	}
	serialized := proof[:elgamal.SizeCiphertext]
	if HandleOf(serialized) != handle {
		return fmt.Errorf("%w: handle does not match ciphertext", fhe.ErrInvalidProof)
	}
	ct := elgamal.NewCiphertext(cp.publicKey)
	if err := ct.Deserialize(serialized); err != nil {
		return fmt.Errorf("%w: %v", fhe.ErrInvalidProof, err)
	}
	ep := &elgamal.EncryptionProof{}
	if err := ep.Deserialize(proof[elgamal.SizeCiphertext:]); err != nil {
		return fmt.Errorf("%w: %v", fhe.ErrInvalidProof, err)
	}
	value := new(big.Int).SetUint64(cp.conf.AcceptedInput)
	if err := ep.Verify(cp.publicKey, ct, value, binding.Bytes()); err != nil {
		log.Debugw("input proof rejected", "handle", handle.String(), "user", binding.User.Hex())
		return fmt.Errorf("%w: %v", fhe.ErrInvalidProof, err)
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()
	b := cp.stg.NewBatch()
	if err := b.SetCiphertext(handle, serialized); err != nil {
		b.Discard()
		return err
	}
	return b.Commit()
}

// Encryptor produces encrypted inputs on the client side, the counterpart of
// VerifyInput.
type Encryptor struct {
	publicKey ecc.Point
	chainID   uint64
}

// NewEncryptor returns an Encryptor for the coprocessor public key.
func NewEncryptor(publicKey ecc.Point, chainID uint64) *Encryptor {
	return &Encryptor{publicKey: publicKey, chainID: chainID}
}

// EncryptInput encrypts value for use by user in contract. It returns the
// input handle and the proof to submit with it.
func (e *Encryptor) EncryptInput(value uint64, contract, user common.Address) (types.Handle, []byte, error) {
	k, err := elgamal.RandK()
	if err != nil {
		return types.Handle{}, nil, err
	}
	v := new(big.Int).SetUint64(value)
	ct, err := elgamal.NewCiphertext(e.publicKey).Encrypt(v, e.publicKey, k)
	if err != nil {
		return types.Handle{}, nil, err
	}
	binding := fhe.Binding{Contract: contract, User: user, ChainID: e.chainID}
	ep, err := elgamal.ProveEncryption(e.publicKey, ct, v, k, binding.Bytes())
	if err != nil {
		return types.Handle{}, nil, err
	}
	serialized := ct.Serialize()
	proof := make([]byte, 0, SizeInputProof)
	proof = append(proof, serialized...)
	proof = append(proof, ep.Serialize()...)
	return HandleOf(serialized), proof, nil
}
