package tiles

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olablt/gio-openmaps/tiles/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls atomic.Int32
	err   error
}

func (p *fakeProvider) GetTile(_ context.Context, tile Tile) (image.Image, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, TileSize, TileSize)), nil
}

func newTestManager(t *testing.T, primary Provider) *Manager {
	t.Helper()
	cache, err := NewCache(16)
	require.NoError(t, err)
	pool := worker.NewPool(1, 8)
	m := NewManager(primary, NewLocalProvider(), cache, pool, nil)
	t.Cleanup(func() {
		m.Close()
		pool.Shutdown()
	})
	return m
}

func TestManager_LoadsPrimaryInBackground(t *testing.T) {
	primary := &fakeProvider{}
	m := newTestManager(t, primary)

	var loaded atomic.Int32
	m.SetOnLoadCallback(func() { loaded.Add(1) })

	var fetched atomic.Int32
	m.SetOnFetchCallback(func(tile Tile, err error) {
		assert.NoError(t, err)
		fetched.Add(1)
	})

	tile := Tile{X: 1, Y: 1, Zoom: 1}
	_, ok := m.Get(tile)
	assert.False(t, ok, "first call serves the placeholder")

	require.Eventually(t, func() bool {
		_, ok := m.Get(tile)
		return ok
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), loaded.Load())
	assert.Equal(t, int32(1), fetched.Load())
}

func TestManager_WrapsTilesBeforeLoading(t *testing.T) {
	primary := &fakeProvider{}
	m := newTestManager(t, primary)

	_, _ = m.Get(Tile{X: -1, Y: 0, Zoom: 1})
	require.Eventually(t, func() bool {
		_, ok := m.cache.Get("1/1/0")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestManager_BacksOffAfterFailure(t *testing.T) {
	primary := &fakeProvider{err: errors.New("boom")}
	m := newTestManager(t, primary)

	tile := Tile{X: 0, Y: 0, Zoom: 0}
	_, _ = m.Get(tile)
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.failed) == 1 && len(m.loading) == 0
	}, time.Second, 5*time.Millisecond)

	op, ok := m.Get(tile)
	assert.False(t, ok)
	assert.Equal(t, image.Pt(TileSize, TileSize), op.Size())
	assert.Equal(t, int32(1), primary.calls.Load())

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, _ = m.Get(tile)
	require.Eventually(t, func() bool {
		return primary.calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestManager_PausedSchedulesNothing(t *testing.T) {
	primary := &fakeProvider{}
	m := newTestManager(t, primary)

	m.Pause()
	_, ok := m.Get(Tile{X: 0, Y: 0, Zoom: 0})
	assert.False(t, ok)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), primary.calls.Load())

	m.Resume()
	_, _ = m.Get(Tile{X: 0, Y: 0, Zoom: 0})
	require.Eventually(t, func() bool {
		return primary.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

type slowProvider struct {
	calls atomic.Int32
}

func (p *slowProvider) GetTile(ctx context.Context, _ Tile) (image.Image, error) {
	p.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestManager_BacksOffAfterTimeout(t *testing.T) {
	primary := &slowProvider{}
	cache, err := NewCache(16)
	require.NoError(t, err)
	pool := worker.NewPool(1, 8, worker.WithTimeout(20*time.Millisecond))
	m := NewManager(primary, NewLocalProvider(), cache, pool, nil)
	t.Cleanup(func() {
		m.Close()
		pool.Shutdown()
	})

	tile := Tile{X: 0, Y: 0, Zoom: 0}
	_, _ = m.Get(tile)
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.failed) == 1 && len(m.loading) == 0
	}, time.Second, 5*time.Millisecond)

	for range 5 {
		_, _ = m.Get(tile)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestManager_CloseDoesNotRecordFailure(t *testing.T) {
	primary := &slowProvider{}
	m := newTestManager(t, primary)

	_, _ = m.Get(Tile{X: 0, Y: 0, Zoom: 0})
	require.Eventually(t, func() bool {
		return primary.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	m.Close()

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.loading) == 0
	}, time.Second, 5*time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.failed)
}
