// Package msghub relays completed checks to live monitors.
package msghub

import (
	"container/ring"
	"context"

	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/event"
)

// Length of msghub operation queue
const opChanLen = 100

// Listener receives the contents of the history buffer, followed by new check results.
type Listener interface {
	Receive(res event.CheckResult) error
	Delete(id string) error
}

// Hub relays check results on to its listeners.
type Hub struct {
	// history buffer, points to the next slot to write.  The following non-nil entry is the oldest
	// result.
	history   *ring.Ring
	listeners map[Listener]struct{} // listeners interested in new results
	opChan    chan func(h *Hub)     // operations queued for this actor
}

// New constructs a new Hub which will cache historyLen results in memory for playback to future
// listeners.  The hub follows the extension host's check and record deletion events.
func New(historyLen int, extHost *extension.Host) *Hub {
	hub := &Hub{
		history:   ring.New(historyLen),
		listeners: make(map[Listener]struct{}),
		opChan:    make(chan func(h *Hub), opChanLen),
	}

	extHost.Events.AfterCheckListGenerated.AddListener("msghub",
		func(res event.CheckResult) {
			hub.Dispatch(res)
		})
	extHost.Events.AfterRecordDeleted.AddListener("msghub",
		func(meta event.RecordMetadata) {
			hub.Delete(meta.ID)
		})

	return hub
}

// Start Hub processing loop.
func (hub *Hub) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-hub.opChan:
			op(hub)
		}
	}
}

// Dispatch queues a result for broadcast by the hub.  The result will be placed into the history
// buffer and then relayed to all registered listeners.
func (hub *Hub) Dispatch(res event.CheckResult) {
	hub.opChan <- func(h *Hub) {
		if h.history == nil {
			return
		}
		h.history.Value = res
		h.history = h.history.Next()

		// Deliver to all listeners, removing listeners if they return an error.
		for l := range h.listeners {
			if err := l.Receive(res); err != nil {
				delete(h.listeners, l)
			}
		}
	}
}

// Delete removes the result for the record id from the history buffer, and tells listeners it is
// gone.
func (hub *Hub) Delete(id string) {
	hub.opChan <- func(h *Hub) {
		if h.history == nil {
			return
		}
		for i, r := 0, h.history; i < h.history.Len(); i, r = i+1, r.Next() {
			if res, ok := r.Value.(event.CheckResult); ok && res.RecordID == id {
				r.Value = nil
			}
		}

		for l := range h.listeners {
			if err := l.Delete(id); err != nil {
				delete(h.listeners, l)
			}
		}
	}
}

// AddListener registers a listener to receive broadcasted results, after replaying the history.
func (hub *Hub) AddListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		if h.history != nil {
			h.history.Do(func(v any) {
				if v != nil {
					_ = l.Receive(v.(event.CheckResult))
				}
			})
		}
		h.listeners[l] = struct{}{}
	}
}

// RemoveListener deletes a listener registration, it will cease to receive results.
func (hub *Hub) RemoveListener(l Listener) {
	hub.opChan <- func(h *Hub) {
		delete(h.listeners, l)
	}
}

// Sync blocks until the msghub has processed its queue up to this point, useful for unit tests.
func (hub *Hub) Sync() {
	done := make(chan struct{})
	hub.opChan <- func(h *Hub) {
		close(done)
	}
	<-done
}
