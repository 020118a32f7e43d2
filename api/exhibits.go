package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
)

// schedule creates a new exhibit
// POST /exhibits
func (a *API) schedule(w http.ResponseWriter, r *http.Request) {
	req := &ScheduleRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}

	// Extract the organizer from the signature
	organizer, err := ethereum.AddrFromSignature(ScheduleMessage(a.expo.ChainID(), a.expo.Address(), req), req.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}

	id, err := a.expo.ScheduleWithNonce(r.Context(), organizer, req.Nonce, req.MetadataCID,
		time.Unix(req.StartTime, 0), time.Unix(req.EndTime, 0), req.PassEnabled)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	log.Infow("new exhibit", "exhibitId", id, "organizer", organizer.Hex())
	httpWriteJSON(w, &ScheduleResponse{ExhibitID: id})
}

// scheduleNonce returns the nonce the next schedule request of the organizer
// must carry
// GET /organizers/{address}/nonce
func (a *API) scheduleNonce(w http.ResponseWriter, r *http.Request) {
	organizer, ok := addressParam(r)
	if !ok {
		ErrMalformedAddress.Write(w)
		return
	}
	nonce, err := a.expo.ScheduleNonce(organizer)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &ScheduleNonce{Organizer: organizer, Nonce: nonce})
}

// exhibits lists exhibit headers
// GET /exhibits?from=1&limit=50
func (a *API) exhibits(w http.ResponseWriter, r *http.Request) {
	from, err := uintQuery(r, "from", uint64(types.FirstExhibitID))
	if err != nil {
		ErrMalformedParam.Withf("from: %v", err).Write(w)
		return
	}
	limit, err := uintQuery(r, "limit", DefaultExhibitsLimit)
	if err != nil || limit == 0 || limit > MaxExhibitsLimit {
		ErrMalformedParam.Withf("limit must be between 1 and %d", MaxExhibitsLimit).Write(w)
		return
	}
	headers, err := a.expo.Exhibits(r.Context(), types.ExhibitID(from), int(limit))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &Exhibits{Exhibits: headers})
}

// exhibit returns the full exhibit record
// GET /exhibits/{exhibitId}
func (a *API) exhibit(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	ex, err := a.expo.Exhibit(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &ExhibitInfo{Exhibit: ex, Status: ex.Status(a.expo.Now())})
}

// exhibitHeader returns the exhibit without its encrypted counter
// GET /exhibits/{exhibitId}/header
func (a *API) exhibitHeader(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	header, err := a.expo.ExhibitHeader(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, header)
}

// attendance returns the encrypted attendance counter handle
// GET /exhibits/{exhibitId}/attendance
func (a *API) attendance(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	h, err := a.expo.EncryptedAttendance(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &Attendance{ExhibitID: id, EncryptedCount: h})
}
