package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 10)

	var done atomic.Int32
	for range 5 {
		err := p.Submit(Task{
			Ctx: context.Background(),
			Work: func(ctx context.Context) error {
				done.Add(1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	p.Shutdown()
	assert.Equal(t, int32(5), done.Load())
}

func TestPool_SingleWorkerKeepsOrder(t *testing.T) {
	p := NewPool(1, 10)

	var order []int
	for i := range 5 {
		require.NoError(t, p.Submit(Task{Work: func(ctx context.Context) error {
			order = append(order, i)
			return nil
		}}))
	}
	p.Shutdown()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	blocker := Task{Work: func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}}
	require.NoError(t, p.Submit(blocker))
	<-started

	require.NoError(t, p.Submit(Task{Work: func(ctx context.Context) error { return nil }}))
	err := p.Submit(Task{Work: func(ctx context.Context) error { return nil }})
	assert.True(t, errors.Is(err, ErrQueueFull))

	close(release)
	p.Shutdown()
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(1, 1)
	p.Shutdown()
	p.Shutdown()

	err := p.Submit(Task{Work: func(ctx context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPool_SkipsCanceledTasks(t *testing.T) {
	p := NewPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	require.NoError(t, p.Submit(Task{Ctx: ctx, Work: func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}}))
	p.Shutdown()

	assert.False(t, ran.Load())
}

func TestPool_Timeout(t *testing.T) {
	p := NewPool(1, 1, WithTimeout(20*time.Millisecond))

	errc := make(chan error, 1)
	require.NoError(t, p.Submit(Task{Work: func(ctx context.Context) error {
		<-ctx.Done()
		errc <- ctx.Err()
		return ctx.Err()
	}}))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not canceled by the pool timeout")
	}
	p.Shutdown()
}
