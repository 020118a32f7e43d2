package api

import (
	"fmt"

	"github.com/billat883/ArtSync/expo"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// Info describes the ledger contract and the keys clients need to encrypt
// inputs and sign decryption authorizations.
type Info struct {
	Contract          common.Address  `json:"contract"`
	ChainID           uint64          `json:"chainId"`
	VerifyingContract common.Address  `json:"verifyingContract"`
	EncryptionKey     types.HexBytes  `json:"encryptionKey"`
	TokenName         string          `json:"tokenName"`
	TokenSymbol       string          `json:"tokenSymbol"`
	NextExhibitID     types.ExhibitID `json:"nextExhibitId"`
}

// ScheduleRequest creates an exhibit. The organizer is the signer of
// ScheduleMessage.
type ScheduleRequest struct {
	MetadataCID string `json:"metadataCID"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	PassEnabled bool   `json:"passEnabled"`
	// Nonce is the ScheduleNonce of the organizer. A request is accepted
	// once only.
	Nonce     uint64         `json:"nonce"`
	Signature types.HexBytes `json:"signature"`
}

// ScheduleResponse returns the id of the new exhibit.
type ScheduleResponse struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
}

// ScheduleNonce is the nonce the next schedule request of an organizer must
// carry.
type ScheduleNonce struct {
	Organizer common.Address `json:"organizer"`
	Nonce     uint64         `json:"nonce"`
}

// Exhibits is a page of exhibit headers.
type Exhibits struct {
	Exhibits []*types.ExhibitHeader `json:"exhibits"`
}

// ExhibitInfo is an exhibit with its status at the time of the request.
type ExhibitInfo struct {
	*types.Exhibit
	Status types.ExhibitStatus `json:"status"`
}

// Attendance carries the handle of the encrypted attendance counter.
type Attendance struct {
	ExhibitID      types.ExhibitID `json:"exhibitId"`
	EncryptedCount types.Handle    `json:"encryptedCount"`
}

// CheckInRequest signs an attendee in. The attendee is the signer of
// CheckInMessage, and the input must be bound to it.
type CheckInRequest struct {
	Handle     types.Handle   `json:"handle"`
	InputProof types.HexBytes `json:"inputProof"`
	Signature  types.HexBytes `json:"signature"`
}

// CheckInStatus tells whether an attendee signed in.
type CheckInStatus struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
	Attendee  common.Address  `json:"attendee"`
	CheckedIn bool            `json:"checkedIn"`
}

// PassStatus is the pass status of an attendee.
type PassStatus struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
	Attendee  common.Address  `json:"attendee"`
	*expo.PassStatus
}

// MintPassRequest mints the pass of the signer of MintPassMessage.
type MintPassRequest struct {
	Signature types.HexBytes `json:"signature"`
}

// MintPassResponse identifies the minted pass.
type MintPassResponse struct {
	TokenID  pass.TokenID `json:"tokenId"`
	TokenURI string       `json:"tokenURI"`
}

// ScheduleMessage is the message an organizer signs to schedule an exhibit.
func ScheduleMessage(chainID uint64, contract common.Address, req *ScheduleRequest) []byte {
	return []byte(fmt.Sprintf("artsync:schedule:%d:%s:%d:%s:%d:%d:%t",
		chainID, contract.Hex(), req.Nonce, req.MetadataCID, req.StartTime, req.EndTime, req.PassEnabled))
}

// CheckInMessage is the message an attendee signs to check in with handle.
func CheckInMessage(chainID uint64, contract common.Address, id types.ExhibitID, handle types.Handle) []byte {
	return []byte(fmt.Sprintf("artsync:checkin:%d:%s:%d:%s", chainID, contract.Hex(), id, handle))
}

// MintPassMessage is the message an attendee signs to mint the exhibit pass.
func MintPassMessage(chainID uint64, contract common.Address, id types.ExhibitID) []byte {
	return []byte(fmt.Sprintf("artsync:mintpass:%d:%s:%d", chainID, contract.Hex(), id))
}
