package tiles

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"gioui.org/op/paint"
	"github.com/olablt/gio-openmaps/tiles/worker"
)

// Provider loads the image of a single tile.
type Provider interface {
	GetTile(ctx context.Context, tile Tile) (image.Image, error)
}

const defaultRetryAfter = 30 * time.Second

// Manager serves tiles to the map without ever blocking a frame. Tiles that
// are not cached yet are loaded from the primary provider on the worker
// pool while the fallback provider fills the gap.
type Manager struct {
	primary  Provider
	fallback Provider
	cache    *Cache
	stand    *Cache
	pool     *worker.Pool
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	loading    map[string]bool
	failed     map[string]time.Time
	paused     bool
	onLoad     func()
	onFetch    func(Tile, error)
	retryAfter time.Duration
	now        func() time.Time
}

func NewManager(primary, fallback Provider, cache *Cache, pool *worker.Pool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	// placeholders are cheap to redraw, a small cache is enough
	stand, _ := NewCache(64)
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		primary:    primary,
		fallback:   fallback,
		cache:      cache,
		stand:      stand,
		pool:       pool,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		loading:    make(map[string]bool),
		failed:     make(map[string]time.Time),
		retryAfter: defaultRetryAfter,
		now:        time.Now,
	}
}

// SetOnLoadCallback registers f to run, on a worker goroutine, after a
// primary tile lands in the cache.
func (m *Manager) SetOnLoadCallback(f func()) {
	m.mu.Lock()
	m.onLoad = f
	m.mu.Unlock()
}

// SetOnFetchCallback registers f to observe every primary fetch result.
func (m *Manager) SetOnFetchCallback(f func(Tile, error)) {
	m.mu.Lock()
	m.onFetch = f
	m.mu.Unlock()
}

// Get returns the best image available for tile right now. The boolean is
// false when the image is a placeholder, or when nothing could be drawn at
// all, in which case the op is zero.
func (m *Manager) Get(tile Tile) (paint.ImageOp, bool) {
	tile = tile.Wrap()
	key := tile.Key()

	if op, ok := m.cache.Get(key); ok {
		return op, true
	}
	m.schedule(tile, key)
	return m.placeholder(tile, key), false
}

func (m *Manager) placeholder(tile Tile, key string) paint.ImageOp {
	if m.fallback == nil {
		return paint.ImageOp{}
	}
	if op, ok := m.stand.Get(key); ok {
		return op
	}
	img, err := m.fallback.GetTile(m.ctx, tile)
	if err != nil {
		m.logger.Warn("fallback tile failed", "tile", key, "error", err)
		return paint.ImageOp{}
	}
	op := paint.NewImageOp(img)
	m.stand.Set(key, op)
	return op
}

func (m *Manager) schedule(tile Tile, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused || m.loading[key] {
		return
	}
	if until, ok := m.failed[key]; ok {
		if m.now().Before(until) {
			return
		}
		delete(m.failed, key)
	}

	m.loading[key] = true
	err := m.pool.Submit(worker.Task{
		Ctx:  m.ctx,
		Name: "tile " + key,
		Work: func(ctx context.Context) error {
			return m.load(ctx, tile, key)
		},
	})
	if err != nil {
		// try again on the next frame
		delete(m.loading, key)
	}
}

func (m *Manager) load(ctx context.Context, tile Tile, key string) error {
	img, err := m.primary.GetTile(ctx, tile)

	m.mu.Lock()
	delete(m.loading, key)
	if err != nil && m.ctx.Err() == nil {
		m.failed[key] = m.now().Add(m.retryAfter)
	}
	onLoad, onFetch := m.onLoad, m.onFetch
	m.mu.Unlock()

	if onFetch != nil {
		onFetch(tile, err)
	}
	if err != nil {
		m.logger.Warn("tile load failed", "tile", key, "error", err)
		return err
	}

	m.cache.Set(key, paint.NewImageOp(img))
	if onLoad != nil {
		onLoad()
	}
	return nil
}

// Pause stops scheduling new loads. Tiles already cached are still served.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

func (m *Manager) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
}

// Close cancels in-flight loads. The pool is owned by the caller.
func (m *Manager) Close() {
	m.cancel()
}
