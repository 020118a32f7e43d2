package expo

import (
	"context"
	"fmt"
	"time"

	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// Schedule creates an exhibit open from start (inclusive) to end (exclusive)
// with an encrypted attendance counter of zero. Anyone may schedule.
//
// Bounds are kept in whole unix seconds: start is rounded up and end down, so
// the stored window never exceeds the requested one.
func (e *Expo) Schedule(ctx context.Context, organizer common.Address, metadataCID string,
	start, end time.Time, passEnabled bool,
) (types.ExhibitID, error) {
	return e.schedule(ctx, organizer, nil, metadataCID, start, end, passEnabled)
}

// ScheduleWithNonce is Schedule for signed requests. The nonce must equal
// ScheduleNonce(organizer), and it is consumed in the same transaction as
// the exhibit, so a request can be accepted once only.
func (e *Expo) ScheduleWithNonce(ctx context.Context, organizer common.Address, nonce uint64, metadataCID string,
	start, end time.Time, passEnabled bool,
) (types.ExhibitID, error) {
	return e.schedule(ctx, organizer, &nonce, metadataCID, start, end, passEnabled)
}

// ScheduleNonce returns the nonce the next signed schedule request of
// organizer must carry.
func (e *Expo) ScheduleNonce(organizer common.Address) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stg.ScheduleNonce(organizer)
}

func (e *Expo) schedule(ctx context.Context, organizer common.Address, nonce *uint64, metadataCID string,
	start, end time.Time, passEnabled bool,
) (types.ExhibitID, error) {
	start, end = ceilSecond(start), floorSecond(end)
	if !start.Before(end) {
		return 0, ErrInvalidWindow
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if nonce != nil {
		expected, err := e.stg.ScheduleNonce(organizer)
		if err != nil {
			return 0, err
		}
		if *nonce != expected {
			return 0, fmt.Errorf("%w: got %d, expected %d", ErrInvalidNonce, *nonce, expected)
		}
	}

	ex := &types.Exhibit{
		ExhibitHeader: types.ExhibitHeader{
			ID:          e.nextID,
			Organizer:   organizer,
			MetadataCID: metadataCID,
			StartTime:   start,
			EndTime:     end,
			PassEnabled: passEnabled,
		},
	}
	zero, err := e.fhe.TrivialZero(ctx)
	if err != nil {
		return 0, fmt.Errorf("encrypted zero: %w", err)
	}
	if err := e.grant(ctx, zero, &ex.ExhibitHeader, common.Address{}); err != nil {
		return 0, err
	}
	ex.EncryptedCount = zero
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b := e.stg.NewBatch()
	if err := b.SetExhibit(ex); err != nil {
		b.Discard()
		return 0, err
	}
	if err := b.SetNextExhibitID(ex.ID + 1); err != nil {
		b.Discard()
		return 0, err
	}
	if nonce != nil {
		if err := b.SetScheduleNonce(organizer, *nonce+1); err != nil {
			b.Discard()
			return 0, err
		}
	}
	if err := b.Commit(); err != nil {
		return 0, fmt.Errorf("commit exhibit %d: %w", ex.ID, err)
	}
	e.nextID = ex.ID + 1

	log.Infow("exhibit scheduled",
		"exhibitId", ex.ID,
		"organizer", organizer.Hex(),
		"start", start.Unix(),
		"end", end.Unix(),
		"passEnabled", passEnabled)
	e.publish(event.ExhibitScheduledType, event.ExhibitScheduled{ExhibitID: ex.ID, Organizer: organizer})
	return ex.ID, nil
}

// Exhibit returns the full exhibit record.
func (e *Expo) Exhibit(_ context.Context, id types.ExhibitID) (*types.Exhibit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.exhibit(id)
}

// ExhibitHeader returns the exhibit without its encrypted counter.
func (e *Expo) ExhibitHeader(_ context.Context, id types.ExhibitID) (*types.ExhibitHeader, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ex, err := e.exhibit(id)
	if err != nil {
		return nil, err
	}
	return ex.Header(), nil
}

// EncryptedAttendance returns the handle of the exhibit attendance counter.
func (e *Expo) EncryptedAttendance(_ context.Context, id types.ExhibitID) (types.Handle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ex, err := e.exhibit(id)
	if err != nil {
		return types.Handle{}, err
	}
	return ex.EncryptedCount, nil
}

// NextExhibitID returns the id the next scheduled exhibit will receive.
func (e *Expo) NextExhibitID() types.ExhibitID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nextID
}

// Exhibits returns up to limit headers in id order, starting at from.
func (e *Expo) Exhibits(ctx context.Context, from types.ExhibitID, limit int) ([]*types.ExhibitHeader, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if from < types.FirstExhibitID {
		from = types.FirstExhibitID
	}
	headers := []*types.ExhibitHeader{}
	for id := from; id < e.nextID && len(headers) < limit; id++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ex, err := e.exhibit(id)
		if err != nil {
			return nil, err
		}
		headers = append(headers, ex.Header())
	}
	return headers, nil
}

func floorSecond(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0)
}

func ceilSecond(t time.Time) time.Time {
	f := floorSecond(t)
	if f.Before(t) {
		return f.Add(time.Second)
	}
	return f
}
