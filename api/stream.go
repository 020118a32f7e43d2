package api

import (
	"encoding/json"
	"net/http"

	"github.com/billat883/ArtSync/log"
)

// stream sends ledger events as server-sent events
// GET /events
func (a *API) stream(w http.ResponseWriter, r *http.Request) {
	if a.events == nil {
		ErrResourceNotFound.With("event stream disabled").Write(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		ErrStreamingUnsupported.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := a.events.Subscribe(r.Context())
	if _, err := w.Write([]byte(": stream started\n\n")); err != nil {
		return
	}
	flusher.Flush()

	for evt := range ch {
		payload, err := json.Marshal(evt)
		if err != nil {
			log.Warnw("could not encode event", "type", evt.Type, "error", err)
			continue
		}
		if _, err := w.Write([]byte("event: " + string(evt.Type) + "\ndata: ")); err != nil {
			return
		}
		if _, err := w.Write(append(payload, '\n', '\n')); err != nil {
			return
		}
		flusher.Flush()
	}
}
