// Package pass implements the attendance pass credential: a non fungible
// token minted once per exhibit and attendee by a single authorized minter.
package pass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// Name and Symbol of the pass token.
	Name   = "ArtSync Pass"
	Symbol = "ASPASS"
)

var (
	ErrNotMinter      = errors.New("caller is not the minter")
	ErrNotOwner       = errors.New("caller is not the token owner")
	ErrAlreadyMinted  = errors.New("pass already minted for this exhibit")
	ErrTokenNotFound  = errors.New("token not found")
	ErrZeroAddress    = errors.New("zero address")
	ErrNotInitialized = errors.New("token not initialized")
)

// TokenID identifies a minted pass. Ids start at 1.
type TokenID uint64

// Token is the pass credential issuer.
type Token struct {
	stg *storage.Storage
	now func() time.Time
	mu  sync.Mutex
}

// New returns the token over stg. On first use the owner becomes the token
// administrator; later calls keep the stored settings.
func New(stg *storage.Storage, owner common.Address, now func() time.Time) (*Token, error) {
	if stg == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	if now == nil {
		now = time.Now
	}
	t := &Token{stg: stg, now: now}
	_, err := stg.TokenSettings()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if owner == (common.Address{}) {
			return nil, ErrZeroAddress
		}
		if err := stg.SetTokenSettings(&storage.TokenSettings{Owner: owner}); err != nil {
			return nil, err
		}
		log.Infow("pass token initialized", "owner", owner.Hex())
	case err != nil:
		return nil, err
	}
	return t, nil
}

// Owner returns the token administrator.
func (t *Token) Owner() (common.Address, error) {
	ts, err := t.settings()
	if err != nil {
		return common.Address{}, err
	}
	return ts.Owner, nil
}

// Minter returns the account allowed to mint, the zero address if unset.
func (t *Token) Minter() (common.Address, error) {
	ts, err := t.settings()
	if err != nil {
		return common.Address{}, err
	}
	return ts.Minter, nil
}

// SetMinter replaces the minter. Only the owner may call it.
func (t *Token) SetMinter(caller, minter common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts, err := t.settings()
	if err != nil {
		return err
	}
	if caller != ts.Owner {
		return ErrNotOwner
	}
	if minter == (common.Address{}) {
		return ErrZeroAddress
	}
	ts.Minter = minter
	if err := t.stg.SetTokenSettings(ts); err != nil {
		return err
	}
	log.Infow("pass minter set", "minter", minter.Hex())
	return nil
}

// Mint creates the pass of exhibitID for to. The caller must be the minter.
func (t *Token) Mint(ctx context.Context, caller, to common.Address, exhibitID types.ExhibitID) (TokenID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if to == (common.Address{}) {
		return 0, ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ts, err := t.settings()
	if err != nil {
		return 0, err
	}
	if ts.Minter == (common.Address{}) || caller != ts.Minter {
		return 0, ErrNotMinter
	}
	if _, err := t.stg.TokenFor(exhibitID, to); err == nil {
		return 0, ErrAlreadyMinted
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	id, err := t.stg.NextTokenID()
	if err != nil {
		return 0, err
	}
	balance, err := t.stg.Balance(to)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b := t.stg.NewBatch()
	if err := b.SetToken(&storage.PassToken{
		ID:        id,
		Owner:     to,
		ExhibitID: exhibitID,
		MintedAt:  t.now(),
	}, balance+1); err != nil {
		b.Discard()
		return 0, err
	}
	if err := b.Commit(); err != nil {
		return 0, fmt.Errorf("commit token %d: %w", id, err)
	}
	log.Debugw("pass minted", "tokenId", id, "owner", to.Hex(), "exhibitId", exhibitID)
	return TokenID(id), nil
}

// OwnerOf returns the holder of the token.
func (t *Token) OwnerOf(id TokenID) (common.Address, error) {
	tk, err := t.token(id)
	if err != nil {
		return common.Address{}, err
	}
	return tk.Owner, nil
}

// ExhibitOf returns the exhibit the token was minted for.
func (t *Token) ExhibitOf(id TokenID) (types.ExhibitID, error) {
	tk, err := t.token(id)
	if err != nil {
		return 0, err
	}
	return tk.ExhibitID, nil
}

// BalanceOf returns how many passes owner holds.
func (t *Token) BalanceOf(owner common.Address) (uint64, error) {
	if owner == (common.Address{}) {
		return 0, ErrZeroAddress
	}
	return t.stg.Balance(owner)
}

// TokenURI returns the metadata pointer of the token.
func (t *Token) TokenURI(id TokenID) (string, error) {
	tk, err := t.token(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("artsync://exhibit/%d/pass/%d", tk.ExhibitID, tk.ID), nil
}

// TokenFor returns the token minted to owner for the exhibit.
func (t *Token) TokenFor(exhibitID types.ExhibitID, owner common.Address) (TokenID, error) {
	id, err := t.stg.TokenFor(exhibitID, owner)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, ErrTokenNotFound
	}
	return TokenID(id), err
}

// Issuer returns a view of the token that mints on behalf of caller.
func (t *Token) Issuer(caller common.Address) *Issuer {
	return &Issuer{token: t, caller: caller}
}

func (t *Token) token(id TokenID) (*storage.PassToken, error) {
	tk, err := t.stg.Token(uint64(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	return tk, err
}

func (t *Token) settings() (*storage.TokenSettings, error) {
	ts, err := t.stg.TokenSettings()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return ts, err
}

// Issuer mints passes with a fixed caller identity.
type Issuer struct {
	token  *Token
	caller common.Address
}

// Mint mints the pass of exhibitID for to.
func (i *Issuer) Mint(ctx context.Context, to common.Address, exhibitID types.ExhibitID) (TokenID, error) {
	return i.token.Mint(ctx, i.caller, to, exhibitID)
}
