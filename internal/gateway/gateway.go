package gateway

import (
	"context"
	"sync"

	"github.com/user/cartable/internal/types"
)

// Gateway orchestrates inbound messages into runs: each message is wrapped
// in a Run and enqueued on its sender's lane for serialized processing.
type Gateway struct {
	Queue *Queue

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Gateway with the given concurrency limit for simultaneous
// run processing across senders.
func New(maxConcurrent ...int64) *Gateway {
	var concurrency int64 = 2
	if len(maxConcurrent) > 0 && maxConcurrent[0] > 0 {
		concurrency = maxConcurrent[0]
	}
	return &Gateway{
		Queue: NewQueue(concurrency),
	}
}

// Start initialises the gateway's context and starts the internal queue.
func (g *Gateway) Start(ctx context.Context) {
	g.ctx, g.cancel = context.WithCancel(ctx)
	g.Queue.Start(g.ctx)
}

// Stop cancels the gateway context, stops the queue, and waits for any
// outstanding work to finish.
func (g *Gateway) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
	g.Queue.Stop()
	g.wg.Wait()
}

// RunOption configures optional behavior on a Run.
type RunOption func(*Run)

// WithOnComplete sets a callback invoked when the run produces a reply.
func WithOnComplete(fn func(types.Reply)) RunOption {
	return func(r *Run) { r.OnComplete = fn }
}

// HandleInbound wraps the message in a Run and enqueues it on the sender's
// lane.
func (g *Gateway) HandleInbound(ctx context.Context, msg *types.InboundMessage, opts ...RunOption) error {
	run := NewRun(msg)
	for _, opt := range opts {
		opt(run)
	}
	return g.Queue.Enqueue(run)
}
