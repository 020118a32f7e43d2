package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/billat883/ArtSync/event"
	"github.com/billat883/ArtSync/log"
)

// EventLogger writes every ledger event to the process log.
type EventLogger struct {
	bus    *event.Bus
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEventLogger creates an EventLogger over bus.
func NewEventLogger(bus *event.Bus) *EventLogger {
	return &EventLogger{bus: bus}
}

// Start subscribes to all event types.
func (el *EventLogger) Start(ctx context.Context) error {
	el.mu.Lock()
	defer el.mu.Unlock()
	if el.cancel != nil {
		return fmt.Errorf("service already running")
	}
	ctx, el.cancel = context.WithCancel(ctx)
	el.done = make(chan struct{})
	ch := el.bus.Subscribe(ctx)
	go func() {
		defer close(el.done)
		for evt := range ch {
			logEvent(evt)
		}
	}()
	return nil
}

// Stop unsubscribes and waits for the pending events to be logged.
func (el *EventLogger) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()
	if el.cancel == nil {
		return
	}
	el.cancel()
	<-el.done
	el.cancel = nil
}

func logEvent(evt event.Event) {
	switch data := evt.Data.(type) {
	case event.ExhibitScheduled:
		log.Infow("exhibit scheduled", "exhibitId", data.ExhibitID, "organizer", data.Organizer.Hex())
	case event.CheckedIn:
		log.Infow("attendee checked in", "exhibitId", data.ExhibitID, "attendee", data.Attendee.Hex())
	case event.PassMinted:
		log.Infow("pass minted", "exhibitId", data.ExhibitID, "attendee", data.Attendee.Hex(), "tokenId", data.TokenID)
	default:
		log.Debugw("ledger event", "type", evt.Type, "timestamp", evt.Timestamp)
	}
}
