package menu

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/erpdesk/internal/storage"
)

func TestCache_OverRedis(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	r, err := storage.DialRedis(ctx, mr.Addr(), 0, "erpdesk:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewCache(r, WithClock(clock.Now), WithDuration(10*time.Minute))

	c.Set(ctx, sampleTree())
	assert.True(t, mr.Exists("erpdesk:"+DefaultCacheKey))
	assert.True(t, mr.Exists("erpdesk:"+DefaultCacheKey+"_expiry"))

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleTree(), got)

	// A corrupted payload is treated as a miss and removed.
	require.NoError(t, mr.Set("erpdesk:"+DefaultCacheKey, "{not json"))
	_, ok = c.Get(ctx)
	assert.False(t, ok)
	assert.False(t, mr.Exists("erpdesk:"+DefaultCacheKey))
	assert.False(t, mr.Exists("erpdesk:"+DefaultCacheKey+"_expiry"))

	// Expiry removes both keys as well.
	c.Set(ctx, sampleTree())
	clock.t = clock.t.Add(10*time.Minute + time.Millisecond)
	assert.False(t, c.IsValid(ctx))
	_, ok = c.Get(ctx)
	assert.False(t, ok)
	assert.False(t, mr.Exists("erpdesk:"+DefaultCacheKey))
}
