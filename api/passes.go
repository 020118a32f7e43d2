package api

import (
	"encoding/json"
	"net/http"

	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/log"
)

// mintPass mints the exhibit pass of the signer
// POST /exhibits/{exhibitId}/passes
func (a *API) mintPass(w http.ResponseWriter, r *http.Request) {
	id, err := exhibitIDParam(r)
	if err != nil {
		ErrMalformedExhibitID.WithErr(err).Write(w)
		return
	}
	req := &MintPassRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	attendee, err := ethereum.AddrFromSignature(MintPassMessage(a.expo.ChainID(), a.expo.Address(), id), req.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}
	tokenID, err := a.expo.MintPass(r.Context(), id, attendee)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	uri, err := a.token.TokenURI(tokenID)
	if err != nil {
		log.Warnw("minted token without uri", "tokenId", tokenID, "error", err)
	}
	httpWriteJSON(w, &MintPassResponse{TokenID: tokenID, TokenURI: uri})
}

// passStatus returns the pass eligibility and the minted token of the address
// GET /exhibits/{exhibitId}/passes/{address}
func (a *API) passStatus(w http.ResponseWriter, r *http.Request) {
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
	status, err := a.expo.PassStatus(r.Context(), id, attendee)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, &PassStatus{ExhibitID: id, Attendee: attendee, PassStatus: status})
}
