// Package pipeline runs the decode → build → simulate → render pipeline.
//
// The CLI and the HTTP server both go through a [Runner], which adds the
// render timeout, the artifact cache and observability hooks around the
// pure stages. The stages are also exported for callers that already hold
// an intermediate value:
//
//	g := pipeline.Build(m, opts)
//	l, err := pipeline.Simulate(ctx, g, opts)
//	scene, _ := render.NewScene(g, l, opts.Width, opts.Height)
//	doc, err := pipeline.Render(ctx, scene, l.Steps, opts)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, body, pipeline.Options{Format: "svg"})
//	if err != nil {
//	    status := errors.HTTPStatus(errors.GetCode(err))
//	}
//	w.Header().Set("Content-Type", res.ContentType)
//	w.Write(res.Artifact)
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/cache"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/force"
	"github.com/matzehuels/moviegraph/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultFormat is the output format when none is requested.
	DefaultFormat = FormatSVG

	// DefaultTimeout bounds one render, simulation included.
	DefaultTimeout = 30 * time.Second

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 1.0

	// DefaultCacheTTL is how long a rendered artifact stays cached.
	DefaultCacheTTL = 24 * time.Hour
)

// Output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
	FormatJSON     = "json"
	FormatPDF      = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
	FormatJSON:     true,
	FormatPDF:      true,
}

// ContentTypes maps each format to its media type.
var ContentTypes = map[string]string{
	FormatSVG:      "image/svg+xml",
	FormatPNG:      "image/png",
	FormatDOT:      "text/vnd.graphviz",
	FormatGraphviz: "image/svg+xml",
	FormatJSON:     "application/json",
	FormatPDF:      "application/pdf",
}

// Extensions maps each format to the file extension the CLI writes.
var Extensions = map[string]string{
	FormatSVG:      ".svg",
	FormatPNG:      ".png",
	FormatDOT:      ".dot",
	FormatGraphviz: ".graphviz.svg",
	FormatJSON:     ".json",
	FormatPDF:      ".pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one render. Zero numeric fields take the defaults of
// package force, so a zero Options renders the stock 720×500 SVG.
type Options struct {
	// Output
	Format string  `json:"format,omitempty"`
	Edges  bool    `json:"edges,omitempty"`
	Scale  float64 `json:"scale,omitempty"` // png only

	// Canvas and simulation
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	SizeRatio    float64 `json:"size_ratio,omitempty"` // simulation area relative to canvas
	Steps        int     `json:"steps,omitempty"`
	Charge       float64 `json:"charge,omitempty"`
	LinkDistance float64 `json:"link_distance,omitempty"`
	Gravity      float64 `json:"gravity,omitempty"`
	Theta        float64 `json:"theta,omitempty"`
	Seed         uint64  `json:"seed,omitempty"`

	// Graph construction
	PrimaryPrefix string            `json:"primary_prefix,omitempty"`
	Labels        map[string]string `json:"-"`

	// Runtime options (not serialized)
	Timeout  time.Duration `json:"-"`
	Refresh  bool          `json:"-"` // skip the cache lookup
	CacheTTL time.Duration `json:"-"`
	Theme    *render.Theme `json:"-"`
	Logger   *log.Logger   `json:"-"`

	validated bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Graph and Layout are nil when the artifact came from the cache.
	Graph  *bipartite.Graph
	Layout *force.Layout

	Artifact    []byte
	Format      string
	ContentType string
	CacheKey    string
	CacheHit    bool
	Stats       Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Steps      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return mgerrors.ValidateFormat(format, ValidFormats)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// invalid values with INVALID_INPUT or INVALID_FORMAT. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if !positive(o.Width) || !positive(o.Height) {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "canvas must be positive, got %gx%g", o.Width, o.Height)
	}
	if !positive(o.SizeRatio) || o.SizeRatio > 1 {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "size ratio must be in (0, 1], got %g", o.SizeRatio)
	}
	if !positive(o.Scale) {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Steps < 0 || o.Steps > MaxSteps {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "steps must be in [0, %d], got %d", MaxSteps, o.Steps)
	}
	if err := o.ForceConfig().Validate(); err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeInvalidInput, err, "layout parameters")
	}
	o.validated = true
	return nil
}

// MaxSteps caps client-requested step counts.
const MaxSteps = 10000

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Width == 0 {
		o.Width = force.DefaultCanvasWidth
	}
	if o.Height == 0 {
		o.Height = force.DefaultCanvasHeight
	}
	if o.SizeRatio == 0 {
		o.SizeRatio = force.DefaultSizeRatio
	}
	if o.Steps == 0 {
		o.Steps = force.DefaultSteps
	}
	if o.Charge == 0 {
		o.Charge = force.DefaultCharge
	}
	if o.LinkDistance == 0 {
		o.LinkDistance = force.DefaultLinkDistance
	}
	if o.Gravity == 0 {
		o.Gravity = force.DefaultGravity
	}
	if o.Theta == 0 {
		o.Theta = force.DefaultTheta
	}
	if o.Seed == 0 {
		o.Seed = force.DefaultSeed
	}
	if o.PrimaryPrefix == "" {
		o.PrimaryPrefix = bipartite.DefaultPrimaryPrefix
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ForceConfig derives the simulation parameters: the simulation area is
// the canvas scaled by SizeRatio.
func (o *Options) ForceConfig() force.Config {
	cfg := force.DefaultConfig()
	cfg.Width = o.Width * o.SizeRatio
	cfg.Height = o.Height * o.SizeRatio
	cfg.Steps = o.Steps
	cfg.Charge = o.Charge
	cfg.LinkDistance = o.LinkDistance
	cfg.Gravity = o.Gravity
	cfg.Theta = o.Theta
	cfg.Seed = o.Seed
	return cfg
}

// RenderKeyOpts returns the cache key options for this render.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	k := cache.RenderKeyOpts{
		Format:        o.Format,
		Edges:         o.Edges,
		Steps:         o.Steps,
		Width:         o.Width,
		Height:        o.Height,
		SizeRatio:     o.SizeRatio,
		Charge:        o.Charge,
		LinkDistance:  o.LinkDistance,
		Gravity:       o.Gravity,
		Theta:         o.Theta,
		Seed:          o.Seed,
		PrimaryPrefix: o.PrimaryPrefix,
	}
	if o.Format == FormatPNG {
		k.Format = FormatPNG + "@" + formatFloat(o.Scale)
	}
	if len(o.Labels) > 0 {
		k.LabelsHash = hashLabels(o.Labels)
	}
	return k
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
