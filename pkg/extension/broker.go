package extension

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// EventBroker maintains an ordered list of listeners interested in a specific type of event, and
// returns the first non-nil response.
type EventBroker[E any, R any] struct {
	sync.RWMutex
	names []string     // Ordered listener names.
	funcs []func(E) *R // Ordered listener functions.
}

// Emit sends the provided event to each registered listener in order, until one returns a non-nil
// result.  That result will be returned to the caller.  A listener that panics is logged and
// treated as having returned nil.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	eb.RLock()
	defer eb.RUnlock()

	for i, l := range eb.funcs {
		// Events are copied to minimize the risk of mutation.
		if result := callListener(eb.names[i], l, *event); result != nil {
			return result
		}
	}

	return nil
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
// Listeners should be added in order of priority, most significant first.
func (eb *EventBroker[E, R]) AddListener(name string, listener func(E) *R) {
	eb.Lock()
	defer eb.Unlock()

	eb.names, eb.funcs = removeNamed(eb.names, eb.funcs, name)
	eb.names = append(eb.names, name)
	eb.funcs = append(eb.funcs, listener)
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()

	eb.names, eb.funcs = removeNamed(eb.names, eb.funcs, name)
}

// Listeners returns the registered listener names in priority order.
func (eb *EventBroker[E, R]) Listeners() []string {
	eb.RLock()
	defer eb.RUnlock()

	return slices.Clone(eb.names)
}

func callListener[E any, R any](name string, l func(E) *R, event E) (result *R) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "extension").Str("listener", name).Interface("panic", r).
				Msg("Event listener panicked")
			result = nil
		}
	}()
	return l(event)
}

// removeNamed drops the entry called name from the parallel name and listener slices.
func removeNamed[F any](names []string, funcs []F, name string) ([]string, []F) {
	i := slices.Index(names, name)
	if i < 0 {
		return names, funcs
	}
	return slices.Delete(names, i, i+1), slices.Delete(funcs, i, i+1)
}
