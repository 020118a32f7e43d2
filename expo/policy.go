package expo

import (
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// AccessPolicy chooses the accounts granted access to a new counter handle of
// an exhibit. The attendee is the zero address when the handle is created by
// Schedule.
type AccessPolicy interface {
	Grants(header *types.ExhibitHeader, attendee common.Address) []common.Address
}

// OrganizerAndAttendee grants the exhibit organizer and the attendee whose
// check-in produced the handle.
type OrganizerAndAttendee struct{}

func (OrganizerAndAttendee) Grants(header *types.ExhibitHeader, attendee common.Address) []common.Address {
	accounts := []common.Address{header.Organizer}
	if attendee != (common.Address{}) && attendee != header.Organizer {
		accounts = append(accounts, attendee)
	}
	return accounts
}

// OrganizerOnly grants the exhibit organizer.
type OrganizerOnly struct{}

func (OrganizerOnly) Grants(header *types.ExhibitHeader, _ common.Address) []common.Address {
	return []common.Address{header.Organizer}
}
