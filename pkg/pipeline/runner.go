package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/cache"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/observability"
	"github.com/matzehuels/moviegraph/pkg/render"
)

// Runner executes renders with caching and hooks. The CLI and the server
// share it so both see identical output for identical input.
//
// The Runner keeps no per-request state; one instance serves concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute renders the interaction map encoded in input. Malformed input
// fails with MALFORMED_INPUT before any layout work starts.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	m, err := bipartite.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	return r.run(ctx, m, cache.Hash(input), opts)
}

// ExecuteMap renders an interaction map built in memory, such as one read
// from the ratings store.
func (r *Runner) ExecuteMap(ctx context.Context, m *bipartite.InteractionMap, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	data, err := m.MarshalJSON()
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "encode interaction map")
	}
	return r.run(ctx, m, cache.Hash(data), opts)
}

func (r *Runner) run(ctx context.Context, m *bipartite.InteractionMap, inputHash string, opts Options) (*Result, error) {
	hooks := observability.Pipeline()
	res := &Result{
		Format:      opts.Format,
		ContentType: ContentTypes[opts.Format],
		CacheKey:    r.Keyer.RenderKey(inputHash, opts.RenderKeyOpts()),
	}

	if data, ok := r.lookup(ctx, res.CacheKey, opts); ok {
		res.Artifact = data
		res.CacheHit = true
		return res, nil
	}

	// Stage 1: Build
	buildStart := time.Now()
	g := Build(m, opts)
	res.Graph = g
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()
	res.Stats.BuildTime = time.Since(buildStart)
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), res.Stats.BuildTime, nil)

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, g.NodeCount(), opts.Steps)
	lctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	l, err := Simulate(lctx, g, opts)
	cancel()
	res.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, l.Steps, res.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	res.Layout = &l
	res.Stats.Steps = l.Steps

	opts.Logger.Debug("computed layout",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"steps", l.Steps,
		"duration", res.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Format)
	scene, err := render.NewScene(g, l, opts.Width, opts.Height)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "place nodes")
	}
	data, err := Render(ctx, scene, l.Steps, opts)
	res.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), res.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	res.Artifact = data

	r.store(ctx, res.CacheKey, data, opts)
	return res, nil
}

// lookup reads the cache. Backend errors count as a miss.
func (r *Runner) lookup(ctx context.Context, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		hooks.OnCacheError(ctx, "get", err)
		opts.Logger.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	if !hit {
		hooks.OnCacheMiss(ctx, opts.Format)
		return nil, false
	}
	hooks.OnCacheHit(ctx, opts.Format)
	return data, true
}

// store writes the cache. Failures are logged and never fail the render.
func (r *Runner) store(ctx context.Context, key string, data []byte, opts Options) {
	hooks := observability.Cache()
	if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
		hooks.OnCacheError(ctx, "set", err)
		opts.Logger.Warn("cache store failed", "error", err)
		return
	}
	hooks.OnCacheSet(ctx, opts.Format, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
