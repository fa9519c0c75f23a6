package core

import (
	"context"
	"sync"
)

// Locker serialises planning runs per warehouse. Every operation reads the
// location and stock tables, plans in memory and writes the result back; two
// runs interleaving on the same warehouse would plan against stale state.
type Locker interface {
	// Lock blocks until the warehouse is exclusively held or ctx is done.
	// The returned func releases the lock.
	Lock(ctx context.Context, warehouseID int) (func(), error)
}

type localLocker struct {
	mu    sync.Mutex
	slots map[int]chan struct{}
}

// NewLocalLocker returns a Locker that serialises runs within this process.
func NewLocalLocker() Locker {
	return &localLocker{slots: make(map[int]chan struct{})}
}

func (l *localLocker) slot(warehouseID int) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[warehouseID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[warehouseID] = ch
	}
	return ch
}

func (l *localLocker) Lock(ctx context.Context, warehouseID int) (func(), error) {
	ch := l.slot(warehouseID)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}
