package api

import (
	"encoding/json"
	"net/http"

	"github.com/billat883/ArtSync/crypto/ethereum"
)

// checkIn signs the attendee in to the exhibit
// POST /exhibits/{exhibitId}/checkins
func (a *API) checkIn(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	req := &CheckInRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Handle.IsZero() {
		ErrMalformedHandle.With("empty handle").Write(w)
		return
	}
	attendee, err := ethereum.AddrFromSignature(CheckInMessage(a.expo.ChainID(), a.expo.Address(), id, req.Handle), req.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}
	if err := a.expo.CheckIn(r.Context(), id, req.Handle, req.InputProof, attendee); err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &CheckInStatus{ExhibitID: id, Attendee: attendee, CheckedIn: true})
}

// checkInStatus tells whether the address signed in
// GET /exhibits/{exhibitId}/checkins/{address}
func (a *API) checkInStatus(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	attendee, ok := addressParam(r)
	if !ok {
		ErrMalformedAddress.Write(w)
		return
	}
	signed, err := a.expo.HasCheckedIn(r.Context(), id, attendee)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &CheckInStatus{ExhibitID: id, Attendee: attendee, CheckedIn: signed})
}
