package tiles

import (
	"image"
	"testing"

	"gioui.org/op/paint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	op := paint.NewImageOp(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	c.Set("0/0/0", op)
	c.Set("1/0/0", op)
	_, _ = c.Get("0/0/0")
	c.Set("1/1/0", op)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("1/0/0")
	assert.False(t, ok)
	_, ok = c.Get("0/0/0")
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNewCache_DefaultSize(t *testing.T) {
	c, err := NewCache(0)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
