package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	calls  atomic.Int32
	cutoff time.Time
	err    error
}

func (f *fakeDeleter) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls.Add(1)
	f.cutoff = cutoff
	return 3, f.err
}

func TestCleanupTokens(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := &fakeDeleter{}
	require.NoError(t, CleanupTokens(context.Background(), d, now))
	assert.Equal(t, now, d.cutoff)

	d.err = errors.New("db gone")
	assert.ErrorIs(t, CleanupTokens(context.Background(), d, now), d.err)
}

func TestRunStopsOnCancel(t *testing.T) {
	d := &fakeDeleter{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, d, 20*time.Millisecond) }()

	require.Eventually(t, func() bool { return d.calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
