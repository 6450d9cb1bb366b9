package signals

import (
	"fmt"
	"reflect"
	"sync"
)

type Observer[E any] func(E)

// Signal delivers events to attached observers in attachment order.
type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) (detach func())
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}

type entry[E any] struct {
	id       any
	observer Observer[E]
}

// SignalImp is safe for concurrent use. Observers run on the notifying
// goroutine, outside the lock, so they may attach or detach.
type SignalImp[E any] struct {
	mu        sync.RWMutex
	observers []entry[E]
}

func NewSignal[E any]() *SignalImp[E] {
	return &SignalImp[E]{}
}

// Attach registers observer once per id. The id defaults to the function
// pointer, so pass an explicit id for closures. Ids that are not comparable,
// such as slices, are keyed by their formatted value.
func (s *SignalImp[E]) Attach(observer Observer[E], observerID ...any) func() {
	id := resolveID(observer, observerID)
	detach := func() { s.Detach(observer, id) }

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.observers {
		if e.id == id {
			return detach
		}
	}
	s.observers = append(s.observers, entry[E]{id: id, observer: observer})
	return detach
}

func (s *SignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	id := resolveID(observer, observerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.observers {
		if e.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *SignalImp[E]) Notify(event E) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()

	for _, e := range observers {
		e.observer(event)
	}
}

func (s *SignalImp[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// formattedID stands in for an id that cannot be compared with ==.
type formattedID string

func resolveID[E any](observer Observer[E], observerID []any) any {
	if len(observerID) == 0 {
		return reflect.ValueOf(observer).Pointer()
	}
	id := observerID[0]
	if id != nil && !reflect.ValueOf(id).Comparable() {
		return formattedID(fmt.Sprintf("%#v", id))
	}
	return id
}
