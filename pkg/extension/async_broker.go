package extension

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AsyncEventBroker maintains a list of listeners interested in a specific type of event.  Events
// are sent in parallel to all listeners, and no result is returned.
type AsyncEventBroker[E any] struct {
	sync.RWMutex
	names []string  // Ordered listener names.
	funcs []func(E) // Ordered listener functions.
}

// Emit sends the provided event to each registered listener in parallel.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	eb.RLock()
	defer eb.RUnlock()

	for i, l := range eb.funcs {
		// Events are copied to minimize the risk of mutation.
		go runListener(eb.names[i], l, *event)
	}
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.Lock()
	defer eb.Unlock()

	eb.names, eb.funcs = removeNamed(eb.names, eb.funcs, name)
	eb.names = append(eb.names, name)
	eb.funcs = append(eb.funcs, listener)
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()

	eb.names, eb.funcs = removeNamed(eb.names, eb.funcs, name)
}

// Listeners returns the registered listener names.
func (eb *AsyncEventBroker[E]) Listeners() []string {
	eb.RLock()
	defer eb.RUnlock()

	return slices.Clone(eb.names)
}

func runListener[E any](name string, l func(E), event E) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "extension").Str("listener", name).Interface("panic", r).
				Msg("Async event listener panicked")
		}
	}()
	l(event)
}

// AsyncTestListener returns a func that will wait for an event and return it, or timeout with an
// error.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	events := make(chan E, capacity)
	eb.AddListener(name, func(e E) {
		events <- e
	})

	count := 0

	return func() (*E, error) {
		count++

		defer func() {
			if count >= capacity {
				eb.RemoveListener(name)
			}
		}()

		select {
		case e := <-events:
			return &e, nil

		case <-time.After(time.Second * 2):
			return nil, errors.New("timeout waiting for event")
		}
	}
}
