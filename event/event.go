// Package event fans out ledger events to in-process subscribers such as the
// event logger and the server-sent events stream of the API.
package event

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
)

// SubscriberQueueSize is the buffer of every subscription. Events published
// while it is full are dropped for that subscriber.
const SubscriberQueueSize = 32

type Type string

const (
	ExhibitScheduledType Type = "exhibit.scheduled"
	CheckedInType        Type = "exhibit.checkedin"
	PassMintedType       Type = "exhibit.passminted"
)

type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func New(t Type, data any) Event {
	return Event{Type: t, Timestamp: time.Now(), Data: data}
}

// ExhibitScheduled is published when an exhibit is created.
type ExhibitScheduled struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
	Organizer common.Address  `json:"organizer"`
}

// CheckedIn is published when an attendee signs in to an exhibit.
type CheckedIn struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
	Attendee  common.Address  `json:"attendee"`
}

// PassMinted is published when an attendee mints the exhibit pass.
type PassMinted struct {
	ExhibitID types.ExhibitID `json:"exhibitId"`
	Attendee  common.Address  `json:"attendee"`
	TokenID   uint64          `json:"tokenId"`
}

type subscription struct {
	ch    chan Event
	types []Type
}

func (s *subscription) wants(t Type) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Bus delivers published events to every matching subscription without
// blocking the publisher.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*subscription
	next    int
	done    chan struct{}
	closed  bool
	wg      sync.WaitGroup
	metrics *metrics
}

// NewBus returns an empty bus. If reg is not nil the bus metrics are
// registered on it.
func NewBus(reg prometheus.Registerer) *Bus {
	b := &Bus{
		subs: make(map[int]*subscription),
		done: make(chan struct{}),
	}
	if reg != nil {
		b.metrics = newMetrics(reg)
	}
	return b
}

// Subscribe returns a channel receiving the events of the given types, or of
// every type if none is given. The channel is closed when ctx ends or the bus
// is closed.
func (b *Bus) Subscribe(ctx context.Context, types ...Type) <-chan Event {
	sub := &subscription{ch: make(chan Event, SubscriberQueueSize), types: types}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	id := b.next
	b.next++
	b.subs[id] = sub
	b.wg.Add(1)
	b.mu.Unlock()
	if b.metrics != nil {
		b.metrics.subscribers.Inc()
	}

	go func() {
		defer b.wg.Done()
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
		if b.metrics != nil {
			b.metrics.subscribers.Dec()
		}
	}()
	return sub.ch
}

// Publish delivers evt to every matching subscription.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.metrics != nil {
		b.metrics.published.WithLabelValues(string(evt.Type)).Inc()
	}
	for _, sub := range b.subs {
		if !sub.wants(evt.Type) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			if b.metrics != nil {
				b.metrics.dropped.WithLabelValues(string(evt.Type)).Inc()
			}
		}
	}
}

// Close ends every subscription and waits for them to be released. Publish
// is a no-op afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()
	b.wg.Wait()
}
