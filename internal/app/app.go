package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/erpdesk/internal/config"
	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/logging"
	"github.com/five82/erpdesk/internal/menu"
	"github.com/five82/erpdesk/internal/notice"
	"github.com/five82/erpdesk/internal/permission"
	"github.com/five82/erpdesk/internal/prefs"
	"github.com/five82/erpdesk/internal/screens"
	"github.com/five82/erpdesk/internal/state"
	"github.com/five82/erpdesk/internal/storage"
	"github.com/five82/erpdesk/internal/ui"
)

// redisKeyPrefix namespaces every key erpdesk writes to a shared Redis.
const redisKeyPrefix = "erpdesk:"

// Options configure the erpdesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/erpdesk/prefs.toml
	Refresh    bool   // bypass the menu cache on startup
}

// Env is the configured logger and menu cache shared by the TUI and the
// command line tools.
type Env struct {
	Config config.Config
	Logger *slog.Logger
	Cache  *menu.Cache

	closers []io.Closer
}

// Setup loads the config, installs the logger as the slog default and opens
// the menu cache storage. Callers must Close the Env.
func Setup(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogDestination(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	slog.SetDefault(logger)
	env := &Env{Config: cfg, Logger: logger, closers: []io.Closer{logCloser}}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		env.closers = append(env.closers, c)
	}
	env.Cache = menu.NewCache(store,
		menu.WithDuration(cfg.CacheDuration),
		menu.WithLogger(logger),
	)
	return env, nil
}

// Close releases storage and the log file.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolver returns the menu resolver for the configured dev path prefix.
func (e *Env) Resolver() menu.Resolver {
	return menu.Resolver{DevPrefix: e.Config.DevPathPrefix}
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	if cfg.UsesRedis() {
		r, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, redisKeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return r, nil
	}
	f, err := storage.NewFile(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open file storage: %w", err)
	}
	return f, nil
}

// Run boots the erpdesk TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	cfg, logger := env.Config, env.Logger

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed", "error", err)
	}

	client, err := erpapi.NewClient(cfg.APIBase, erpapi.WithToken(cfg.APIToken))
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	store := &state.Store{}
	refresher := &Refresher{Store: store, Cache: env.Cache, Client: client, Logger: logger}

	// Populate the store before the UI starts; failures show in the header.
	_ = refresher.Refresh(ctx, opts.Refresh)
	refresher.Start(ctx)

	resolver := env.Resolver()
	perms := permission.New(client, env.Cache,
		permission.WithResolver(resolver),
		permission.WithLogger(logger),
	)

	logger.Info("erpdesk starting", "api_base", client.BaseURL(), "redis", cfg.UsesRedis())
	return ui.Run(ui.Options{
		Context:       ctx,
		Store:         store,
		Permissions:   perms,
		Searcher:      screens.Adapt(client),
		Registry:      screens.Default(),
		Resolver:      resolver,
		Notices:       notice.NewQueue(0, 0),
		Prefs:         userPrefs,
		PrefsPath:     opts.PrefsPath,
		TeardownDelay: cfg.TeardownDelay,
		MaxTabs:       cfg.MaxTabs,
		Logger:        logger,
	})
}

// ResolveProgram resolves path against the cached menu tree.
func ResolveProgram(ctx context.Context, env *Env, path string) (string, error) {
	tree, ok := env.Cache.Get(ctx)
	if !ok {
		return "", errors.New("no cached menus; start erpdesk once or run with --refresh")
	}
	programNo, ok := env.Resolver().ResolveProgramNo(path, tree)
	if !ok {
		return "", fmt.Errorf("no program owns %s", path)
	}
	return programNo, nil
}
