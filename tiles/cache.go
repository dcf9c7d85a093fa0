package tiles

import (
	"gioui.org/op/paint"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize holds roughly four screens of tiles on a phone.
const DefaultCacheSize = 256

// Cache keeps decoded tiles as paint.ImageOp so a tile is uploaded to the
// GPU once and reused across frames. It is safe for concurrent use.
type Cache struct {
	ops *lru.Cache[string, paint.ImageOp]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	ops, err := lru.New[string, paint.ImageOp](size)
	if err != nil {
		return nil, err
	}
	return &Cache{ops: ops}, nil
}

func (c *Cache) Get(key string) (paint.ImageOp, bool) {
	return c.ops.Get(key)
}

func (c *Cache) Set(key string, op paint.ImageOp) {
	c.ops.Add(key, op)
}

func (c *Cache) Len() int {
	return c.ops.Len()
}

func (c *Cache) Clear() {
	c.ops.Purge()
}
