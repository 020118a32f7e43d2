// Package fhe defines the capabilities the attendance ledger consumes from
// the confidential computation layer: input verification, homomorphic
// arithmetic on ciphertext handles, handle access control and user
// decryption. The ledger only ever sees opaque handles.
package fhe

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidProof is returned when an encrypted input does not carry a
	// valid proof for its binding.
	ErrInvalidProof = errors.New("invalid input proof")
	// ErrDecryptionDenied is returned when the decryption service refuses a
	// request (bad signature, expired or out of scope authorization, or
	// missing access grants).
	ErrDecryptionDenied = errors.New("decryption denied")
	// ErrUnavailable is returned when the decryption service cannot be
	// reached or does not answer in time.
	ErrUnavailable = errors.New("decryption service unavailable")
	// ErrUnknownHandle is returned for handles the layer does not know.
	ErrUnknownHandle = errors.New("unknown ciphertext handle")
)

// Binding ties an encrypted input to the contract consuming it and to the
// user submitting it, so the input cannot be replayed elsewhere.
type Binding struct {
	Contract common.Address
	User     common.Address
	ChainID  uint64
}

// Bytes returns the canonical encoding of the binding.
func (b Binding) Bytes() []byte {
	buf := make([]byte, 0, 2*common.AddressLength+8)
	buf = append(buf, b.Contract.Bytes()...)
	buf = append(buf, b.User.Bytes()...)
	return binary.BigEndian.AppendUint64(buf, b.ChainID)
}

// InputVerifier validates client encrypted inputs.
type InputVerifier interface {
	// VerifyInput accepts the handle if the proof shows it is a well formed
	// encryption of the expected input under binding. It returns
	// ErrInvalidProof otherwise.
	VerifyInput(ctx context.Context, handle types.Handle, proof []byte, binding Binding) error
}

// Arithmetic computes on ciphertext handles.
type Arithmetic interface {
	// Add returns a handle to the encryption of the sum of a and b.
	Add(ctx context.Context, a, b types.Handle) (types.Handle, error)
	// TrivialZero returns a handle to an encryption of zero.
	TrivialZero(ctx context.Context) (types.Handle, error)
}

// AccessControl manages who may use a handle.
type AccessControl interface {
	Allow(ctx context.Context, handle types.Handle, account common.Address) error
	IsAllowed(ctx context.Context, handle types.Handle, account common.Address) (bool, error)
}

// Executor bundles the capabilities a contract needs to maintain encrypted
// state.
type Executor interface {
	InputVerifier
	Arithmetic
	AccessControl
}

// HandleContractPair names a handle and the contract it belongs to.
type HandleContractPair struct {
	Handle          types.Handle   `json:"handle"`
	ContractAddress common.Address `json:"contractAddress"`
}

// UserDecryptRequest asks the decryption service to re-encrypt the cleartext
// of each handle to the requester ephemeral public key.
type UserDecryptRequest struct {
	RequestID         string               `json:"requestId"`
	Pairs             []HandleContractPair `json:"handleContractPairs"`
	UserAddress       common.Address       `json:"userAddress"`
	ContractAddresses []common.Address     `json:"contractAddresses"`
	PublicKey         types.HexBytes       `json:"publicKey"`
	Signature         types.HexBytes       `json:"signature"`
	StartTimestamp    int64                `json:"startTimestamp"`
	DurationDays      uint64               `json:"durationDays"`
}

// DecryptedValue is the re-encrypted cleartext of one handle.
type DecryptedValue struct {
	Handle     types.Handle   `json:"handle"`
	Ciphertext types.HexBytes `json:"ciphertext"`
}

// UserDecryptResponse carries one value per requested pair, in order.
type UserDecryptResponse struct {
	RequestID string           `json:"requestId"`
	Values    []DecryptedValue `json:"values"`
}

// DecryptionService performs user decryption.
type DecryptionService interface {
	UserDecrypt(ctx context.Context, req *UserDecryptRequest) (*UserDecryptResponse, error)
}
