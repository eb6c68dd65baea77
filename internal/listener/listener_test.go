package listener

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBackoffCaps(t *testing.T) {
	t.Parallel()

	b := reconnectBackoff
	b = nextBackoff(b)
	assert.Equal(t, 10*time.Second, b)
	b = nextBackoff(b)
	assert.Equal(t, 20*time.Second, b)
	b = nextBackoff(b)
	assert.Equal(t, maxReconnect, b)
	assert.Equal(t, maxReconnect, nextBackoff(b))
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var got []string
	handle := func(_ context.Context, id string) { got = append(got, id) }

	dispatch(context.Background(), " 6f1c ", handle, logger)
	dispatch(context.Background(), "", handle, logger)
	assert.Equal(t, []string{"6f1c"}, got)
}

func TestStartReturnsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		Start(ctx, "postgres://invalid:1/none", func(context.Context, string) {}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
