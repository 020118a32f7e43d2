package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/billat883/ArtSync/expo"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// exhibitIDParam parses the exhibit id of the route.
func exhibitIDParam(r *http.Request) (types.ExhibitID, error) {
	return types.ParseExhibitID(chi.URLParam(r, ExhibitURLParam))
}

// addressParam parses the address of the route.
func addressParam(r *http.Request) (common.Address, bool) {
	s := chi.URLParam(r, AddressURLParam)
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// uintQuery returns the query parameter as an integer, or def if absent.
func uintQuery(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// writeLedgerError maps the ledger errors to their API definitions.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, expo.ErrNotFound):
		ErrExhibitNotFound.WithErr(err).Write(w)
	case errors.Is(err, expo.ErrInvalidWindow):
		ErrInvalidWindow.Write(w)
	case errors.Is(err, expo.ErrInvalidNonce):
		ErrInvalidNonce.WithErr(err).Write(w)
	case errors.Is(err, expo.ErrWindowClosed):
		ErrWindowClosed.WithErr(err).Write(w)
	case errors.Is(err, expo.ErrAlreadySignedIn):
		ErrAlreadySignedIn.Write(w)
	case errors.Is(err, fhe.ErrInvalidProof):
		ErrInvalidInputProof.WithErr(err).Write(w)
	case errors.Is(err, expo.ErrNotEligible):
		ErrNotEligible.Write(w)
	case errors.Is(err, fhe.ErrDecryptionDenied):
		ErrDecryptionDenied.WithErr(err).Write(w)
	case errors.Is(err, fhe.ErrUnavailable):
		ErrDecryptionUnavailable.WithErr(err).Write(w)
	case errors.Is(err, fhe.ErrUnknownHandle):
		ErrUnknownHandle.WithErr(err).Write(w)
	case errors.Is(err, pass.ErrNotMinter), errors.Is(err, pass.ErrAlreadyMinted):
		ErrPassIssuerFailed.WithErr(err).Write(w)
	default:
		log.Warnw("api internal error", "error", err.Error())
		ErrGenericInternalServerError.WithErr(err).Write(w)
	}
}
