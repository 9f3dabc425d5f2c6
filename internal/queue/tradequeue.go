// Package queue implements the bounded producer/consumer trade queue
// used between the exchange ingest path and the transaction logger.
package queue

import (
	"sync"

	"github.com/tradepulse/tradepulse/internal/model"
)

// TradeQueue is a bounded FIFO of model.Trade with blocking push and a
// shutdown-aware blocking pop.
//
// The original C implementation backed this with a hand-rolled ring buffer,
// a mutex and a condition variable, and never checked fullness on push
// A hand-rolled ring buffer with a mutex and condition variable would need
// to check fullness on push to avoid silently overwriting data. Go's
// buffered channel already gives a blocking-push/blocking-pop FIFO with the
// correct backpressure for free — push blocks until a consumer frees a slot
// — so that is what backs this type.
type TradeQueue struct {
	items chan model.Trade
	done  chan struct{}
	once  sync.Once
}

// New creates a TradeQueue with the given capacity.
func New(capacity int) *TradeQueue {
	return &TradeQueue{
		items: make(chan model.Trade, capacity),
		done:  make(chan struct{}),
	}
}

// Push blocks until the trade is enqueued. It never drops or overwrites.
func (q *TradeQueue) Push(t model.Trade) {
	q.items <- t
}

// Pop blocks until a trade is available or the queue is shut down. The
// second return value is false only when shutdown was observed with no
// trade pending. Trades
// already enqueued before shutdown are always drained first.
func (q *TradeQueue) Pop() (model.Trade, bool) {
	select {
	case t := <-q.items:
		return t, true
	default:
	}

	select {
	case t := <-q.items:
		return t, true
	case <-q.done:
		return model.Trade{}, false
	}
}

// Shutdown wakes any blocked Pop once the queue is drained. Safe to call
// more than once.
func (q *TradeQueue) Shutdown() {
	q.once.Do(func() {
		close(q.done)
	})
}

// Len reports the number of trades currently queued (best-effort, for
// diagnostics only).
func (q *TradeQueue) Len() int {
	return len(q.items)
}
