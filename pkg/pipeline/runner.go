package pipeline

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railfence/pkg/cache"
	"github.com/matzehuels/railfence/pkg/core/railfence"
	"github.com/matzehuels/railfence/pkg/imaging"
	"github.com/matzehuels/railfence/pkg/observability"
	"github.com/matzehuels/railfence/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ResultTTL overrides cache.TTLResult when positive.
	ResultTTL time.Duration
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

// cachedResult is the cache encoding of a Result.
type cachedResult struct {
	Text     string `json:"text,omitempty"`
	Length   int    `json:"length,omitempty"`
	Image    []byte `json:"image,omitempty"`
	Pixels   int    `json:"pixels,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Channels int    `json:"channels,omitempty"`
}

// Execute validates opts, then returns the cached result or runs the
// transformation and caches it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	key := r.Keyer.ResultKey(opts.ResultKeyOpts())

	var (
		result *Result
		hit    bool
	)
	if !opts.Refresh {
		result, hit = r.lookup(ctx, key)
	}
	if !hit {
		var err error
		result, err = r.Transform(ctx, opts)
		if err != nil {
			return nil, err
		}
		r.store(ctx, key, result)
	}

	result.Mode = opts.Mode
	result.Operation = opts.Operation
	result.Rails = opts.Rails
	result.CacheHit = hit

	if opts.Visualize && opts.IsText() {
		plain := opts.Text
		if !opts.IsEncode() {
			plain = result.Text
		}
		g, err := railfence.RenderString(plain, opts.Rails)
		if err != nil {
			return nil, err
		}
		result.Grid = &g
	}

	result.Duration = time.Since(start)
	r.Logger.Debug("transformed",
		"mode", opts.Mode,
		"op", opts.Operation,
		"rails", opts.Rails,
		"cached", hit,
		"duration", result.Duration)

	return result, nil
}

// Transform runs the transformation without consulting the cache.
func (r *Runner) Transform(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.IsText() {
		return transformText(ctx, opts)
	}
	return transformImage(ctx, opts)
}

func transformText(ctx context.Context, opts Options) (*Result, error) {
	n := utf8.RuneCountInString(opts.Text)
	hooks := observability.Pipeline()
	hooks.OnTransformStart(ctx, opts.Mode, opts.Operation, opts.Rails, n)
	start := time.Now()

	var (
		out string
		err error
	)
	if opts.IsEncode() {
		out, err = railfence.EncodeString(opts.Text, opts.Rails)
	} else {
		out, err = railfence.DecodeString(opts.Text, opts.Rails)
	}
	hooks.OnTransformComplete(ctx, opts.Mode, opts.Operation, opts.Rails, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Result{Text: out, Length: n}, nil
}

func transformImage(ctx context.Context, opts Options) (*Result, error) {
	raster, format, err := imaging.DecodeBytes(opts.Image)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("decoded image",
		"format", format,
		"width", raster.Width,
		"height", raster.Height,
		"channels", raster.Channels)

	hooks := observability.Pipeline()
	hooks.OnTransformStart(ctx, opts.Mode, opts.Operation, opts.Rails, raster.Len())
	start := time.Now()

	var pix []byte
	if opts.IsEncode() {
		pix, err = railfence.EncodeBytes(raster.Pix, opts.Rails)
	} else {
		pix, err = railfence.DecodeBytes(raster.Pix, opts.Rails)
	}
	hooks.OnTransformComplete(ctx, opts.Mode, opts.Operation, opts.Rails, raster.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out, err := raster.WithPix(pix)
	if err != nil {
		return nil, err
	}
	data, err := out.PNG()
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:    data,
		Pixels:   out.Len(),
		Width:    out.Width,
		Height:   out.Height,
		Channels: out.Channels,
	}, nil
}

// Visualize renders text on rails rails in format, caching the artifact.
// It reports whether the artifact came from the cache.
func (r *Runner) Visualize(ctx context.Context, text string, rails int, format string) ([]byte, bool, error) {
	if err := render.ValidateFormat(format); err != nil {
		return nil, false, err
	}
	g, err := railfence.RenderString(text, rails)
	if err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(cache.ArtifactKeyOpts{
		Format:    format,
		Rails:     rails,
		InputHash: cache.Hash([]byte(text)),
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	data, err := render.Render(ctx, g, format)
	if err != nil {
		return nil, false, err
	}
	r.set(ctx, "artifact", key, data, cache.TTLArtifact)
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}

	var c cachedResult
	if err := json.Unmarshal(data, &c); err != nil {
		// Undecodable entries are recomputed and overwritten.
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return &Result{
		Text:     c.Text,
		Length:   c.Length,
		Image:    c.Image,
		Pixels:   c.Pixels,
		Width:    c.Width,
		Height:   c.Height,
		Channels: c.Channels,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedResult{
		Text:     res.Text,
		Length:   res.Length,
		Image:    res.Image,
		Pixels:   res.Pixels,
		Width:    res.Width,
		Height:   res.Height,
		Channels: res.Channels,
	})
	if err != nil {
		return
	}
	ttl := cache.TTLResult
	if r.ResultTTL > 0 {
		ttl = r.ResultTTL
	}
	r.set(ctx, "result", key, data, ttl)
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
