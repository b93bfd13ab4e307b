// Package syncx holds small concurrency helpers shared across packages.
package syncx

import (
	"sync"
	"sync/atomic"
)

// Lazy builds a value on first successful Get and returns the same value
// afterwards. Concurrent first calls run the builder once. A failed build is
// not cached, so the next Get tries again.
type Lazy[T any] struct {
	mu    sync.Mutex
	build func() (T, error)
	value atomic.Pointer[T]
}

func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get returns the built value. Once built, it takes no lock.
func (l *Lazy[T]) Get() (T, error) {
	if v := l.value.Load(); v != nil {
		return *v, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if v := l.value.Load(); v != nil {
		return *v, nil
	}

	v, err := l.build()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value.Store(&v)
	return v, nil
}

// Ready reports whether the value has been built
func (l *Lazy[T]) Ready() bool {
	return l.value.Load() != nil
}
