package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/nodedocs/pkg/bridge"
	"github.com/matzehuels/nodedocs/pkg/buildinfo"
	"github.com/matzehuels/nodedocs/pkg/cache"
	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/history"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/processor"
	"github.com/matzehuels/nodedocs/pkg/render"
)

// runtime is everything a command needs to process tasks: the bridge that
// owns the catalog, the worker, and the backends behind them.
type runtime struct {
	bridge   *bridge.Context
	proc     *processor.Processor
	board    *notify.Board
	renderer *render.GraphvizRenderer
	cache    cache.Cache
	history  history.Store
}

type runtimeOptions struct {
	// catalogPath overrides the config's catalog.
	catalogPath string
	noCache     bool
	noHistory   bool
	// sink receives progress next to the board.
	sink notify.Sink
}

// newRuntime loads the catalog and wires the processor. Nothing runs until
// start is called.
func (c *CLI) newRuntime(ctx context.Context, cfg *config.File, opts runtimeOptions) (*runtime, error) {
	path := opts.catalogPath
	if path == "" {
		path = cfg.Catalog
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no catalog manifest: pass --catalog or set catalog in %s", config.DefaultFileName)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded catalog", "path", path, "modules", len(cat.Modules()), "actions", cat.ActionCount())

	rt := &runtime{board: notify.NewBoard()}
	ok := false
	defer func() {
		if !ok {
			rt.close()
		}
	}()

	if rt.cache, err = c.openCache(ctx, cfg, opts.noCache); err != nil {
		return nil, err
	}
	if !opts.noHistory {
		if rt.history, err = c.openHistory(ctx, cfg); err != nil {
			return nil, err
		}
	}
	rt.renderer, err = render.NewGraphviz(ctx, render.GraphvizOptions{
		DOT:    render.DOTOptions{DPI: cfg.Render.DPI},
		Cache:  rt.cache,
		Keyer:  imageKeyer(),
		TTL:    cfg.Cache.TTL.Duration,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, err
	}

	var sink notify.Sink = rt.board
	if opts.sink != nil {
		sink = notify.Multi{rt.board, opts.sink}
	}

	// The idle hook runs on the bridge goroutine, which only starts once
	// proc is assigned.
	var proc *processor.Processor
	rt.bridge = bridge.New(
		bridge.WithLogger(c.Logger),
		bridge.WithIdle(cfg.Server.CollectInterval.Duration, func() {
			if n := proc.CollectIdle(); n > 0 {
				c.Logger.Debug("collected released nodes", "count", n)
			}
		}),
	)
	proc = processor.New(processor.Options{
		Bridge:   rt.bridge,
		Catalog:  cat,
		Renderer: rt.renderer,
		Sink:     sink,
		OnFinish: rt.record(c),
		Logger:   c.Logger,
	})
	rt.proc = proc

	ok = true
	return rt, nil
}

// record returns the processor's OnFinish hook that stores each run.
func (rt *runtime) record(c *CLI) func(context.Context, processor.Info) {
	return func(ctx context.Context, info processor.Info) {
		if rt.history == nil {
			return
		}
		if err := rt.history.Add(context.WithoutCancel(ctx), history.FromTask(info)); err != nil {
			c.Logger.Warn("failed to record run", "task", info.Title, "err", err)
		}
	}
}

func (rt *runtime) close() {
	if rt.renderer != nil {
		rt.renderer.Close()
	}
	if rt.cache != nil {
		rt.cache.Close()
	}
	if rt.history != nil {
		rt.history.Close()
	}
}

// imageKeyer scopes image keys to the running build.
func imageKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "build:"+buildinfo.Version+":")
}

// openCache builds the image cache named by the config.
func (c *CLI) openCache(ctx context.Context, cfg *config.File, disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.URL, cfg.Cache.Prefix)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect image cache")
		}
		return rc, nil
	default:
		dir, err := imageCacheDir(cfg)
		if err != nil {
			c.Logger.Warn("image cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open image cache: %w", err)
		}
		return fc, nil
	}
}

// openHistory builds the run history store named by the config. It returns
// nil when history is disabled.
func (c *CLI) openHistory(ctx context.Context, cfg *config.File) (history.Store, error) {
	switch cfg.History.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		s, err := history.NewMongoStore(ctx, cfg.History.URI, cfg.History.Database)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "connect run history")
		}
		return s, nil
	default:
		s, err := history.NewFileStore(cfg.History.Dir)
		if err != nil {
			return nil, fmt.Errorf("open run history: %w", err)
		}
		return s, nil
	}
}
