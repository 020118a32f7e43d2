package api

import (
	"net/http"

	"github.com/billat883/ArtSync/pass"
)

// info describes the ledger
// GET /info
func (a *API) info(w http.ResponseWriter, _ *http.Request) {
	httpWriteJSON(w, &Info{
		Contract:          a.expo.Address(),
		ChainID:           a.expo.ChainID(),
		VerifyingContract: a.domain.VerifyingContract,
		EncryptionKey:     a.encryptionKey.Marshal(),
		TokenName:         pass.Name,
		TokenSymbol:       pass.Symbol,
		NextExhibitID:     a.expo.NextExhibitID(),
	})
}
