// Package publisher decouples event emission from sink latency. Sync mode
// appends inline; async mode buffers behind a single drain goroutine so a
// slow sink never blocks a user-facing request.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"goggins/internal/audit"
)

type Publisher struct {
	sink   audit.Sink
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given
// buffer size. When the buffer is full, events are dropped with a log line
// rather than blocking the caller.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}

	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit publishes an event, stamping the timestamp if unset. Publish
// failures are logged, never returned to domain callers: audit must not
// fail user-facing operations.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		if err := p.sink.Append(ctx, event); err != nil {
			p.log("audit append failed", event, err)
		}
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	select {
	case p.buffer <- event:
	default:
		p.log("audit buffer full, dropping event", event, nil)
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.log("audit append failed", event, err)
		}
	}
}

// Close stops the drain goroutine after flushing buffered events.
func (p *Publisher) Close() {
	if p.buffer == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.buffer)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) log(msg string, event audit.Event, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(msg, "action", event.Action, "user_id", event.UserID, "error", err)
}
