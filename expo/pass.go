package expo

import (
	"context"
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// PassStatus summarizes the pass of an attendee for an exhibit.
type PassStatus struct {
	Eligible bool         `json:"eligible"`
	Minted   bool         `json:"minted"`
	TokenID  pass.TokenID `json:"tokenId,omitempty"`
}

func (e *Expo) passStatus(id types.ExhibitID, attendee common.Address) (*PassStatus, error) {
	ex, err := e.exhibit(id)
	if err != nil {
		return nil, err
	}
	status := &PassStatus{}
	rec, err := e.stg.PassRecord(id, attendee)
	switch {
	case err == nil:
		status.Minted = true
		status.TokenID = pass.TokenID(rec.TokenID)
		return status, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	if !ex.PassEnabled {
		return status, nil
	}
	status.Eligible, err = e.stg.HasCheckedIn(id, attendee)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// CanMintPass reports whether the exhibit issues passes, the attendee signed
// in and has not minted yet.
func (e *Expo) CanMintPass(_ context.Context, id types.ExhibitID, attendee common.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	status, err := e.passStatus(id, attendee)
	if err != nil {
		return false, err
	}
	return status.Eligible, nil
}

// PassStatus returns the eligibility and the minted token of attendee.
func (e *Expo) PassStatus(_ context.Context, id types.ExhibitID, attendee common.Address) (*PassStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.passStatus(id, attendee)
}

// MintPass mints the exhibit pass for an eligible attendee.
func (e *Expo) MintPass(ctx context.Context, id types.ExhibitID, attendee common.Address) (pass.TokenID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	status, err := e.passStatus(id, attendee)
	if err != nil {
		return 0, err
	}
	if !status.Eligible {
		return 0, ErrNotEligible
	}
	tokenID, err := e.issuer.Mint(ctx, attendee, id)
	if err != nil {
		return 0, fmt.Errorf("mint pass: %w", err)
	}
	b := e.stg.NewBatch()
	if err := b.SetPassRecord(id, attendee, &storage.PassRecord{
		TokenID:  uint64(tokenID),
		MintedAt: e.now(),
	}); err != nil {
		b.Discard()
		return 0, err
	}
	if err := b.Commit(); err != nil {
		return 0, fmt.Errorf("commit pass record: %w", err)
	}

	log.Infow("pass minted", "exhibitId", id, "attendee", attendee.Hex(), "tokenId", tokenID)
	e.publish(event.PassMintedType, event.PassMinted{
		ExhibitID: id,
		Attendee:  attendee,
		TokenID:   uint64(tokenID),
	})
	return tokenID, nil
}
