package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rl1809/bookstore/internal/port"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("publisher closed")
)

const publishTimeout = 5 * time.Second

type event struct {
	eventType string
	payload   any
}

// AsyncPublisher hands events to a pool of workers so request handlers never
// wait on the broker. Close drains whatever is queued.
type AsyncPublisher struct {
	next   port.EventPublisher
	queue  chan event
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAsyncPublisher(next port.EventPublisher, workers, queueSize int) *AsyncPublisher {
	p := &AsyncPublisher{
		next:  next,
		queue: make(chan event, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(id)
		}(i)
	}
	return p
}

func (p *AsyncPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- event{eventType: eventType, payload: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *AsyncPublisher) workerLoop(id int) {
	for ev := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := p.next.Publish(ctx, ev.eventType, ev.payload); err != nil {
			log.Error().Err(err).Int("worker", id).Str("event", ev.eventType).Msg("publish event failed")
		}

		cancel()
	}
}
