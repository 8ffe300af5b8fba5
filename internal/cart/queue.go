package cart

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/funnelcart/pkg/errors"
	"github.com/angelmondragon/funnelcart/pkg/metrics"
)

type task struct {
	name string
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// mutationQueue serializes every ledger mutation: a single drain goroutine
// runs each queued closure to completion, awaited sub-steps included, before
// starting the next. This gives at-most-one-in-flight semantics without
// locks around the mutation bodies.
type mutationQueue struct {
	cartID  string
	tasks   chan task
	quit    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	metrics *metrics.EngineMetrics
}

func newMutationQueue(cartID string, buffer int, m *metrics.EngineMetrics) *mutationQueue {
	if buffer <= 0 {
		buffer = 64
	}
	q := &mutationQueue{
		cartID:  cartID,
		tasks:   make(chan task, buffer),
		quit:    make(chan struct{}),
		metrics: m,
	}
	q.wg.Add(1)
	go q.drain()
	return q
}

// Do enqueues a mutation and waits for its completion. There is no
// mid-operation cancellation: once queued, a mutation always runs.
func (q *mutationQueue) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is closed")
	}
	t := task{name: name, ctx: ctx, fn: fn, done: make(chan error, 1)}
	q.tasks <- t
	q.mu.RUnlock()

	q.metrics.SetQueueDepth(q.cartID, len(q.tasks))
	return <-t.done
}

func (q *mutationQueue) drain() {
	defer q.wg.Done()
	for {
		select {
		case t := <-q.tasks:
			q.run(t)
		case <-q.quit:
			for {
				select {
				case t := <-q.tasks:
					q.run(t)
				default:
					return
				}
			}
		}
	}
}

func (q *mutationQueue) run(t task) {
	start := time.Now()
	err := t.fn(t.ctx)
	q.metrics.ObserveMutation(t.name, err, time.Since(start))
	q.metrics.SetQueueDepth(q.cartID, len(q.tasks))
	t.done <- err
}

// Close stops accepting mutations, finishes the pending ones, and returns.
func (q *mutationQueue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.quit)
	})
	q.wg.Wait()
}
