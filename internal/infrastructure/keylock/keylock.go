// Package keylock provides an in-process mutex per key.
package keylock

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Mutex serializes holders of the same key. Entries are dropped once no
// goroutine holds or waits for them.
type Mutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

var _ ports.KeyedLocker = (*Mutex)(nil)

func New() *Mutex {
	return &Mutex{entries: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done.
func (m *Mutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, fmt.Errorf("%w: waiting for lock %q: %w", apperrors.ErrTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Mutex) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// Len reports how many keys are currently tracked.
func (m *Mutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
