package storage

import (
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// Exhibit returns the exhibit with the given id, or ErrNotFound.
func (s *Storage) Exhibit(id types.ExhibitID) (*types.Exhibit, error) {
	e := &types.Exhibit{}
	if err := s.getArtifact(exhibitPrefix, id.Marshal(), e); err != nil {
		return nil, err
	}
	return e, nil
}

// NextExhibitID returns the id the next scheduled exhibit will receive.
func (s *Storage) NextExhibitID() (types.ExhibitID, error) {
	var next types.ExhibitID
	err := s.getArtifact(metadataPrefix, nextExhibitIDKey, &next)
	if errors.Is(err, ErrNotFound) {
		return types.FirstExhibitID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read next exhibit id: %w", err)
	}
	return next, nil
}

// SetExhibit stores the exhibit record.
func (b *Batch) SetExhibit(e *types.Exhibit) error {
	if e == nil {
		return fmt.Errorf("nil exhibit data")
	}
	return b.setArtifact(exhibitPrefix, e.ID.Marshal(), e)
}

// SetNextExhibitID stores the id counter.
func (b *Batch) SetNextExhibitID(id types.ExhibitID) error {
	return b.setArtifact(metadataPrefix, nextExhibitIDKey, id)
}

// ScheduleNonce returns the nonce the next signed schedule request of
// organizer must carry. It starts at zero.
func (s *Storage) ScheduleNonce(organizer common.Address) (uint64, error) {
	var nonce uint64
	err := s.getArtifact(schedNoncePrefix, organizer.Bytes(), &nonce)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schedule nonce: %w", err)
	}
	return nonce, nil
}

// SetScheduleNonce stores the next schedule nonce of organizer.
func (b *Batch) SetScheduleNonce(organizer common.Address, nonce uint64) error {
	return b.setArtifact(schedNoncePrefix, organizer.Bytes(), nonce)
}

// CheckedIn returns the attendance record of attendee for the exhibit, or
// ErrNotFound if they did not sign in.
func (s *Storage) CheckedIn(id types.ExhibitID, attendee common.Address) (*AttendanceRecord, error) {
	rec := &AttendanceRecord{}
	if err := s.getArtifact(attendancePrefix, accountKey(id, attendee), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// HasCheckedIn reports whether the attendee signed in to the exhibit.
func (s *Storage) HasCheckedIn(id types.ExhibitID, attendee common.Address) (bool, error) {
	return s.has(attendancePrefix, accountKey(id, attendee))
}

// SetCheckedIn stores the attendance record.
func (b *Batch) SetCheckedIn(id types.ExhibitID, attendee common.Address, rec *AttendanceRecord) error {
	return b.setArtifact(attendancePrefix, accountKey(id, attendee), rec)
}

// PassRecord returns the pass record of the attendee for the exhibit, or
// ErrNotFound if no pass was minted.
func (s *Storage) PassRecord(id types.ExhibitID, attendee common.Address) (*PassRecord, error) {
	rec := &PassRecord{}
	if err := s.getArtifact(passRecordPrefix, accountKey(id, attendee), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetPassRecord stores the pass record.
func (b *Batch) SetPassRecord(id types.ExhibitID, attendee common.Address, rec *PassRecord) error {
	return b.setArtifact(passRecordPrefix, accountKey(id, attendee), rec)
}
