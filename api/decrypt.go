package api

import (
	"encoding/json"
	"net/http"

	"github.com/billat883/ArtSync/fhe"
)

// userDecrypt re-encrypts the requested values to the ephemeral key of a
// signed authorization
// POST /decrypt
func (a *API) userDecrypt(w http.ResponseWriter, r *http.Request) {
	req := &fhe.UserDecryptRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	resp, err := a.decryption.UserDecrypt(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httpWriteJSON(w, resp)
}
