package expo

import (
	"context"
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// CheckIn records that attendee signed in to the exhibit and adds the
// encrypted one to the exhibit counter. Checks run in order: the exhibit must
// exist, be open at the ledger time, not have the attendee signed in yet,
// and the input must verify for this ledger and attendee. A rejected or
// cancelled check-in leaves the ledger unchanged.
func (e *Expo) CheckIn(ctx context.Context, id types.ExhibitID, encryptedOne types.Handle,
	inputProof []byte, attendee common.Address,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex, err := e.exhibit(id)
	if err != nil {
		return err
	}
	now := e.now()
	if !ex.Open(now) {
		return fmt.Errorf("%w: exhibit %d is %s", ErrWindowClosed, id, ex.Status(now))
	}
	signed, err := e.stg.HasCheckedIn(id, attendee)
	if err != nil {
		return err
	}
	if signed {
		return ErrAlreadySignedIn
	}

	binding := fhe.Binding{Contract: e.address, User: attendee, ChainID: e.chainID}
	if err := e.fhe.VerifyInput(ctx, encryptedOne, inputProof, binding); err != nil {
		if errors.Is(err, fhe.ErrInvalidProof) {
			return err
		}
		return fmt.Errorf("verify input: %w", err)
	}
	sum, err := e.fhe.Add(ctx, ex.EncryptedCount, encryptedOne)
	if err != nil {
		return fmt.Errorf("add to counter: %w", err)
	}
	if err := e.grant(ctx, sum, &ex.ExhibitHeader, attendee); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ex.EncryptedCount = sum
	b := e.stg.NewBatch()
	if err := b.SetExhibit(ex); err != nil {
		b.Discard()
		return err
	}
	if err := b.SetCheckedIn(id, attendee, &storage.AttendanceRecord{CheckedInAt: now}); err != nil {
		b.Discard()
		return err
	}
	if err := b.Commit(); err != nil {
		return fmt.Errorf("commit check-in: %w", err)
	}

	log.Infow("attendee checked in", "exhibitId", id, "attendee", attendee.Hex())
	e.publish(event.CheckedInType, event.CheckedIn{ExhibitID: id, Attendee: attendee})
	return nil
}

// HasCheckedIn reports whether attendee signed in to the exhibit.
func (e *Expo) HasCheckedIn(_ context.Context, id types.ExhibitID, attendee common.Address) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, err := e.exhibit(id); err != nil {
		return false, err
	}
	return e.stg.HasCheckedIn(id, attendee)
}
