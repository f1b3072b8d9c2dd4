package app

import (
	"context"

	"github.com/bft-labs/vpxview/internal/domain"
)

// DefaultKeyQueueSize is the key queue capacity used when none is given.
const DefaultKeyQueueSize = 64

// KeyQueue is the single suspension point of the navigation loop. Producers
// (displays, watchers) Send from any goroutine; the controller consumes with
// NextKey.
type KeyQueue struct {
	ch chan domain.Key
}

// NewKeyQueue creates a queue holding up to size pending keys.
func NewKeyQueue(size int) *KeyQueue {
	if size <= 0 {
		size = DefaultKeyQueueSize
	}
	return &KeyQueue{ch: make(chan domain.Key, size)}
}

// Send enqueues key without blocking. It returns false when the queue is
// full and the key was dropped.
func (q *KeyQueue) Send(key domain.Key) bool {
	if key == domain.KeyNone {
		return false
	}
	select {
	case q.ch <- key:
		return true
	default:
		return false
	}
}

// NextKey blocks until a key is queued or ctx is done.
func (q *KeyQueue) NextKey(ctx context.Context) (domain.Key, error) {
	select {
	case k := <-q.ch:
		return k, nil
	case <-ctx.Done():
		return domain.KeyNone, ctx.Err()
	}
}

// Len returns the number of pending keys.
func (q *KeyQueue) Len() int {
	return len(q.ch)
}
