package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	block  chan struct{}
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return r.err
}

func (r *recordingPublisher) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestEncodeEnvelope(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	body, err := encodeEnvelope(domain.EventBookDeleted, domain.BookDeleted{BookID: "b1"}, now)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "catalog.book.deleted",
		"timestamp": "2024-05-01T12:00:00Z",
		"payload": {"bookId": "b1"}
	}`, string(body))
}

func TestAsyncPublisher_DrainsOnClose(t *testing.T) {
	next := &recordingPublisher{}
	p := NewAsyncPublisher(next, 2, 10)

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Publish(context.Background(), domain.EventOrderPlaced, i))
	}
	p.Close()

	assert.Len(t, next.published(), 5)
	assert.ErrorIs(t, p.Publish(context.Background(), domain.EventOrderPlaced, 0), ErrClosed)

	// second close is a no-op
	p.Close()
}

func TestAsyncPublisher_QueueFull(t *testing.T) {
	next := &recordingPublisher{block: make(chan struct{})}
	p := NewAsyncPublisher(next, 1, 1)

	var full bool
	for i := 0; i < 3; i++ {
		if err := p.Publish(context.Background(), domain.EventBookCreated, i); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	assert.True(t, full)

	close(next.block)
	p.Close()
}

func TestAsyncPublisher_ErrorsAreLogged(t *testing.T) {
	next := &recordingPublisher{err: errors.New("broker down")}
	p := NewAsyncPublisher(next, 1, 1)

	require.NoError(t, p.Publish(context.Background(), domain.EventBookUpdated, nil))
	p.Close()

	assert.Equal(t, []string{domain.EventBookUpdated}, next.published())
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "x", nil))
}
