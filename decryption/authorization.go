// Package decryption obtains cleartexts of encrypted counters for a
// requester. It keeps short lived, signed user decryption authorizations,
// bound to an ephemeral key pair, and drives the request to the decryption
// service.
package decryption

import (
	"crypto/ecdsa"
	"errors"
	"slices"
	"time"

	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// DefaultDurationDays is the validity of a new authorization.
const DefaultDurationDays = 365

const secondsPerDay = 86400

var (
	// ErrSignatureDeclined is returned when the requester does not sign the
	// authorization.
	ErrSignatureDeclined = errors.New("authorization signature declined")
	// ErrOutOfScope is returned when a handle belongs to a contract the
	// authorization does not cover. Nothing is sent to the service.
	ErrOutOfScope = errors.New("contract outside authorization scope")
	// ErrAuthorizationExpired is returned when the authorization is no
	// longer valid. Nothing is sent to the service.
	ErrAuthorizationExpired = errors.New("authorization expired")
)

// Signer signs user decryption authorizations for its address.
type Signer interface {
	Address() common.Address
	SignTypedData(td apitypes.TypedData) ([]byte, error)
}

// Authorization is a signed permission to decrypt values of a fixed set of
// contracts, re-encrypted to PublicKey. It never leaves the process.
type Authorization struct {
	Requester         common.Address    `json:"requester"`
	ContractAddresses []common.Address  `json:"contractAddresses"`
	PublicKey         types.HexBytes    `json:"publicKey"`
	PrivateKey        *ecdsa.PrivateKey `json:"-"`
	Signature         types.HexBytes    `json:"signature"`
	IssuedAt          int64             `json:"issuedAt"`
	DurationDays      uint64            `json:"durationDays"`
}

// Expired reports whether an authorization issued at issuedAt (unix seconds)
// for durationDays is no longer valid at now. Durations above
// fhe.MaxDurationDays are never valid.
func Expired(issuedAt int64, durationDays uint64, now time.Time) bool {
	if durationDays > fhe.MaxDurationDays {
		return true
	}
	return now.Unix() >= issuedAt+int64(durationDays)*secondsPerDay
}

// Expired reports whether the authorization is no longer valid at now.
func (a *Authorization) Expired(now time.Time) bool {
	return Expired(a.IssuedAt, a.DurationDays, now)
}

// Allows reports whether contract is within the signed scope.
func (a *Authorization) Allows(contract common.Address) bool {
	return slices.Contains(a.ContractAddresses, contract)
}

func (a *Authorization) payload() *fhe.UserDecryptAuthorization {
	return &fhe.UserDecryptAuthorization{
		PublicKey:         a.PublicKey,
		ContractAddresses: a.ContractAddresses,
		StartTimestamp:    a.IssuedAt,
		DurationDays:      a.DurationDays,
	}
}

// TypedData returns the EIP-712 payload the requester signed.
func (a *Authorization) TypedData(domain fhe.DecryptionDomain) apitypes.TypedData {
	return a.payload().TypedData(domain)
}
