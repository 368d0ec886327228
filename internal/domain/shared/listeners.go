package shared

import "sync"

// Listeners is a subscription list for store change callbacks.
// Callbacks run synchronously, in subscription order, on the goroutine that calls Notify.
type Listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (l *Listeners[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, listener[T]{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every subscriber with v.
// The subscriber list is snapshotted first, so callbacks may subscribe or unsubscribe.
func (l *Listeners[T]) Notify(v T) {
	l.mu.Lock()
	snapshot := make([]listener[T], len(l.subs))
	copy(snapshot, l.subs)
	l.mu.Unlock()

	for _, s := range snapshot {
		s.fn(v)
	}
}

// Len returns the number of active subscribers
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
