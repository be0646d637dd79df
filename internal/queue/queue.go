// Package queue implements the serial audio queue: a single-consumer FIFO
// that processes voice requests strictly one at a time, plus the fixed
// window rate limiter and external-audio coordination that gate it.
// Reduced from the teacher's priority heap, lookahead buffer and
// memory-bounded backpressure to the strictly-serial FIFO the
// notification daemon needs: there is never more than one sentence
// playing, so priority ordering and lookahead have no role here.
package queue

import (
	"context"
	"sync"

	"github.com/pai-voice/paivoiced/internal/dlog"
)

var log = dlog.For("queue")

// MaxDepth bounds the queue: further enqueues are dropped with a log
// message rather than growing without limit.
const MaxDepth = 256

// Item is one queued unit of work plus its completion signal.
type Item struct {
	Text     string
	Volume   float64
	Prosody  any
	VoiceID  string
	resolved chan struct{}
}

// Resolved returns a channel closed once the item has been processed, or
// immediately if Enqueue dropped it.
func (i *Item) Resolved() <-chan struct{} { return i.resolved }

// Queue is a single-consumer FIFO. Processing is strictly sequential: the
// consumer picks the next item only after the previous item's handler has
// returned, so at most one synthesis-and-playback cycle is ever running.
type Queue struct {
	mu      sync.Mutex
	items   []*Item
	notify  chan struct{}
	handler func(ctx context.Context, item *Item)
}

// New creates a queue that calls handler for each dequeued item, exactly
// one at a time, on its own goroutine. Processing stops when ctx is done.
func New(ctx context.Context, handler func(ctx context.Context, item *Item)) *Queue {
	q := &Queue{
		notify:  make(chan struct{}, 1),
		handler: handler,
	}
	go q.run(ctx)
	return q
}

// Enqueue adds an item to the tail of the queue and returns immediately;
// the caller does not await completion. Returns false if the queue is at
// MaxDepth, in which case the item is dropped (drop-newest) rather than
// blocking the caller or growing unbounded.
func (q *Queue) Enqueue(item *Item) bool {
	item.resolved = make(chan struct{})

	q.mu.Lock()
	if len(q.items) >= MaxDepth {
		q.mu.Unlock()
		log.Warn("queue at max depth, dropping newest item", "depth", MaxDepth)
		close(item.resolved)
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) run(ctx context.Context) {
	for {
		item := q.dequeue()
		if item == nil {
			select {
			case <-ctx.Done():
				return
			case <-q.notify:
				continue
			}
		}

		q.handler(ctx, item)
		close(item.resolved)

		if ctx.Err() != nil {
			return
		}
	}
}

func (q *Queue) dequeue() *Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// Len reports the current queue depth: the items waiting, not counting
// the one being processed.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
