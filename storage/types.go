package storage

import (
	"math/big"
	"time"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// AttendanceRecord marks that an attendee signed in to an exhibit. Its
// presence is the signed-in flag; records are never removed.
type AttendanceRecord struct {
	CheckedInAt time.Time `cbor:"0,keyasint,omitempty"`
}

// PassRecord marks that the pass for (exhibit, attendee) was minted.
type PassRecord struct {
	TokenID  uint64    `cbor:"0,keyasint,omitempty"`
	MintedAt time.Time `cbor:"1,keyasint,omitempty"`
}

// EncryptionKeys is the coprocessor ElGamal keypair. The public key is the
// compressed curve point.
type EncryptionKeys struct {
	PublicKey  []byte   `cbor:"0,keyasint,omitempty"`
	PrivateKey *big.Int `cbor:"1,keyasint,omitempty"`
}

// AccessGrant allows an account to use a ciphertext handle.
type AccessGrant struct {
	Handle  types.Handle   `cbor:"0,keyasint,omitempty"`
	Account common.Address `cbor:"1,keyasint,omitempty"`
}

// PassToken is a minted attendance credential.
type PassToken struct {
	ID        uint64          `json:"id"        cbor:"0,keyasint,omitempty"`
	Owner     common.Address  `json:"owner"     cbor:"1,keyasint,omitempty"`
	ExhibitID types.ExhibitID `json:"exhibitId" cbor:"2,keyasint,omitempty"`
	MintedAt  time.Time       `json:"mintedAt"  cbor:"3,keyasint,omitempty"`
}

// TokenSettings holds the administrative accounts of the pass token.
type TokenSettings struct {
	Owner  common.Address `cbor:"0,keyasint,omitempty"`
	Minter common.Address `cbor:"1,keyasint,omitempty"`
}
