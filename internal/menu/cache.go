package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/five82/erpdesk/internal/storage"
)

const (
	// DefaultCacheDuration is how long a fetched menu tree stays usable.
	DefaultCacheDuration = 30 * time.Minute

	// DefaultCacheKey names the payload entry; the expiry marker lives under
	// the same key with an "_expiry" suffix.
	DefaultCacheKey = "erp_menu_cache"
)

type cacheEntry struct {
	Menus     json.RawMessage `json:"menus"`
	Timestamp int64           `json:"timestamp"`
}

// Cache persists the last fetched menu tree with a time-to-live. Every
// operation is best effort: storage failures are logged and reported as a
// miss, never returned.
type Cache struct {
	store     storage.Storage
	dataKey   string
	expiryKey string
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithDuration overrides the time-to-live.
func WithDuration(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) CacheOption {
	return func(c *Cache) {
		if k := strings.TrimSpace(key); k != "" {
			c.dataKey = k
			c.expiryKey = k + "_expiry"
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache builds a cache over store.
func NewCache(store storage.Storage, opts ...CacheOption) *Cache {
	c := &Cache{
		store:     store,
		dataKey:   DefaultCacheKey,
		expiryKey: DefaultCacheKey + "_expiry",
		ttl:       DefaultCacheDuration,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "menu_cache")
	return c
}

// Duration returns the configured time-to-live.
func (c *Cache) Duration() time.Duration {
	return c.ttl
}

// Set stores menus with the current time. A nil slice is rejected.
func (c *Cache) Set(ctx context.Context, menus []Item) {
	if menus == nil {
		c.logger.Warn("refusing to cache menus: not a list")
		return
	}
	raw, err := json.Marshal(menus)
	if err != nil {
		c.logger.Error("encode menus failed", "error", err)
		return
	}
	now := c.now()
	payload, err := json.Marshal(cacheEntry{Menus: raw, Timestamp: now.UnixMilli()})
	if err != nil {
		c.logger.Error("encode menu cache entry failed", "error", err)
		return
	}
	if err := c.store.SetItem(ctx, c.dataKey, string(payload)); err != nil {
		c.logger.Error("write menu cache failed", "error", err)
		return
	}
	expiry := now.Add(c.ttl).UnixMilli()
	if err := c.store.SetItem(ctx, c.expiryKey, strconv.FormatInt(expiry, 10)); err != nil {
		c.logger.Error("write menu cache expiry failed", "error", err)
	}
}

// Get returns the cached menus. Expired, malformed or partial entries are
// deleted and reported as a miss.
func (c *Cache) Get(ctx context.Context) ([]Item, bool) {
	expiryRaw, err := c.store.GetItem(ctx, c.expiryKey)
	if err != nil {
		c.logReadError(err)
		return nil, false
	}
	payload, err := c.store.GetItem(ctx, c.dataKey)
	if err != nil {
		c.logReadError(err)
		return nil, false
	}

	expiry, err := strconv.ParseInt(strings.TrimSpace(expiryRaw), 10, 64)
	if err != nil {
		c.logger.Warn("menu cache expiry unreadable, dropping entry", "value", expiryRaw)
		c.Clear(ctx)
		return nil, false
	}
	if c.now().UnixMilli() > expiry {
		c.logger.Debug("menu cache expired")
		c.Clear(ctx)
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		c.logger.Warn("menu cache payload corrupt, dropping entry", "error", err)
		c.Clear(ctx)
		return nil, false
	}
	trimmed := bytes.TrimSpace(entry.Menus)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.logger.Warn("menu cache payload has no menu list, dropping entry")
		c.Clear(ctx)
		return nil, false
	}
	var menus []Item
	if err := json.Unmarshal(trimmed, &menus); err != nil {
		c.logger.Warn("menu cache menus corrupt, dropping entry", "error", err)
		c.Clear(ctx)
		return nil, false
	}
	if menus == nil {
		menus = []Item{}
	}
	return menus, true
}

// Clear removes both the payload and the expiry marker.
func (c *Cache) Clear(ctx context.Context) {
	if err := c.store.RemoveItem(ctx, c.dataKey); err != nil {
		c.logger.Warn("remove menu cache failed", "error", err)
	}
	if err := c.store.RemoveItem(ctx, c.expiryKey); err != nil {
		c.logger.Warn("remove menu cache expiry failed", "error", err)
	}
}

// IsValid reports whether an unexpired expiry marker exists. It does not
// inspect the payload.
func (c *Cache) IsValid(ctx context.Context) bool {
	raw, err := c.store.GetItem(ctx, c.expiryKey)
	if err != nil {
		c.logReadError(err)
		return false
	}
	expiry, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return false
	}
	return c.now().UnixMilli() <= expiry
}

func (c *Cache) logReadError(err error) {
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	c.logger.Warn("read menu cache failed", "error", err)
}
