package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/menu"
	"github.com/five82/erpdesk/internal/state"
)

const (
	defaultCheckInterval = time.Minute
	retryBaseInterval    = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// MenuCache is the subset of *menu.Cache the refresher needs.
type MenuCache interface {
	Get(ctx context.Context) ([]menu.Item, bool)
	Set(ctx context.Context, menus []menu.Item)
}

// Refresher keeps the menu tree in the state store current. A valid cache
// entry is used as is; otherwise the tree is fetched and written back.
type Refresher struct {
	Store    *state.Store
	Cache    MenuCache
	Client   erpapi.MenuFetcher
	Interval time.Duration
	Logger   *slog.Logger
}

// Start launches a background goroutine that refreshes the store until ctx is
// done. Failed refreshes are retried with exponential backoff. It returns
// immediately.
func (r *Refresher) Start(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	go func() {
		failures := 0
		for {
			wait := interval
			if err := r.Refresh(ctx, false); err != nil {
				wait = calculateBackoff(failures, retryBaseInterval)
				failures++
			} else {
				failures = 0
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// Refresh loads the menu tree once. With force set the cache is bypassed.
func (r *Refresher) Refresh(ctx context.Context, force bool) error {
	if !force {
		if menus, ok := r.Cache.Get(ctx); ok {
			r.Store.Update(menus, true, nil)
			return nil
		}
	}
	menus, err := r.Client.FetchMenus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.Store.Update(nil, false, err)
			r.logger().Warn("menu refresh failed", "error", err)
		}
		return err
	}
	r.Cache.Set(ctx, menus)
	r.Store.Update(menus, false, nil)
	r.logger().Debug("menus refreshed", "roots", len(menus), "items", len(menu.Flatten(menus)))
	return nil
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
