// Package expo is the confidential attendance ledger. It keeps the registry
// of exhibits, accepts encrypted check-ins that increment each exhibit's
// encrypted attendance counter, and gates the minting of attendance passes.
//
// An Expo acts as a single contract identity: its address binds encrypted
// inputs, receives access on every counter handle and scopes decryption
// requests. Mutations are serialized and each one commits in a single
// storage transaction, so readers only observe complete transitions.
package expo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNotFound        = errors.New("exhibit not found")
	ErrInvalidWindow   = errors.New("exhibit start must be before its end")
	ErrWindowClosed    = errors.New("exhibit is not open")
	ErrAlreadySignedIn = errors.New("attendee already signed in")
	ErrInvalidProof    = fhe.ErrInvalidProof
	ErrNotEligible     = errors.New("not eligible to mint a pass")
	ErrInvalidNonce    = errors.New("invalid schedule nonce")
)

// PassIssuer mints attendance pass credentials.
type PassIssuer interface {
	Mint(ctx context.Context, to common.Address, exhibitID types.ExhibitID) (pass.TokenID, error)
}

// Config holds the collaborators of an Expo.
type Config struct {
	// Address is the contract identity of the ledger.
	Address common.Address
	// ChainID binds encrypted inputs to the chain.
	ChainID uint64
	// Executor provides input verification, arithmetic and access control
	// on ciphertext handles.
	Executor fhe.Executor
	// Issuer mints passes.
	Issuer PassIssuer
	// Policy selects who, besides the ledger itself, may decrypt a counter.
	// Defaults to OrganizerAndAttendee.
	Policy AccessPolicy
	// Events receives ledger events. Optional.
	Events *event.Bus
	// Now is the ledger clock. Defaults to time.Now.
	Now func() time.Time
}

// Expo is the attendance ledger.
type Expo struct {
	mu      sync.RWMutex
	stg     *storage.Storage
	fhe     fhe.Executor
	issuer  PassIssuer
	policy  AccessPolicy
	events  *event.Bus
	address common.Address
	chainID uint64
	now     func() time.Time
	nextID  types.ExhibitID
}

// New returns the ledger over stg, resuming from the stored state.
func New(stg *storage.Storage, conf Config) (*Expo, error) {
	if stg == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	if conf.Executor == nil {
		return nil, fmt.Errorf("missing fhe executor")
	}
	if conf.Issuer == nil {
		return nil, fmt.Errorf("missing pass issuer")
	}
	if conf.Address == (common.Address{}) {
		return nil, fmt.Errorf("missing contract address")
	}
	if conf.Policy == nil {
		conf.Policy = OrganizerAndAttendee{}
	}
	if conf.Now == nil {
		conf.Now = time.Now
	}
	next, err := stg.NextExhibitID()
	if err != nil {
		return nil, err
	}
	return &Expo{
		stg:     stg,
		fhe:     conf.Executor,
		issuer:  conf.Issuer,
		policy:  conf.Policy,
		events:  conf.Events,
		address: conf.Address,
		chainID: conf.ChainID,
		now:     conf.Now,
		nextID:  next,
	}, nil
}

// Address returns the contract identity of the ledger.
func (e *Expo) Address() common.Address {
	return e.address
}

// Now returns the ledger time.
func (e *Expo) Now() time.Time {
	return e.now()
}

// ChainID returns the chain encrypted inputs are bound to.
func (e *Expo) ChainID() uint64 {
	return e.chainID
}

func (e *Expo) publish(t event.Type, data any) {
	if e.events != nil {
		e.events.Publish(event.New(t, data))
	}
}

// grant allows the ledger and the accounts chosen by the policy on handle.
func (e *Expo) grant(ctx context.Context, h types.Handle, header *types.ExhibitHeader, attendee common.Address) error {
	accounts := append([]common.Address{e.address}, e.policy.Grants(header, attendee)...)
	for _, account := range accounts {
		if err := e.fhe.Allow(ctx, h, account); err != nil {
			return fmt.Errorf("allow %s on %s: %w", account.Hex(), h, err)
		}
	}
	return nil
}

func (e *Expo) exhibit(id types.ExhibitID) (*types.Exhibit, error) {
	ex, err := e.stg.Exhibit(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		log.Warnw("could not read exhibit", "exhibitId", id, "error", err)
		return nil, err
	}
	return ex, nil
}
