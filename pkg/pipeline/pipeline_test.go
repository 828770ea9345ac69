package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/cache"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/force"
)

const sample = `{"u1":["m1","m2"],"u2":["m2"]}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"dot", false},
		{"graphviz", false},
		{"json", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestFormatTablesComplete(t *testing.T) {
	for f := range ValidFormats {
		if ContentTypes[f] == "" {
			t.Errorf("format %q has no content type", f)
		}
		if Extensions[f] == "" {
			t.Errorf("format %q has no extension", f)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should validate: %v", err)
	}
	if o.Format != FormatSVG || o.Width != 720 || o.Height != 500 || o.Steps != 600 || o.Seed != 42 {
		t.Errorf("unexpected defaults: %+v", o)
	}
	cfg := o.ForceConfig()
	if cfg.Width != 360 || cfg.Height != 250 {
		t.Errorf("simulation area = %gx%g, want 360x250", cfg.Width, cfg.Height)
	}
	if o.PrimaryPrefix != "m" {
		t.Errorf("PrimaryPrefix = %q, want m", o.PrimaryPrefix)
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code mgerrors.Code
	}{
		{"bad format", Options{Format: "gif"}, mgerrors.ErrCodeInvalidFormat},
		{"negative width", Options{Width: -1}, mgerrors.ErrCodeInvalidInput},
		{"ratio above one", Options{SizeRatio: 1.5}, mgerrors.ErrCodeInvalidInput},
		{"negative steps", Options{Steps: -5}, mgerrors.ErrCodeInvalidInput},
		{"too many steps", Options{Steps: MaxSteps + 1}, mgerrors.ErrCodeInvalidInput},
		{"negative gravity", Options{Gravity: -1}, mgerrors.ErrCodeInvalidInput},
		{"negative scale", Options{Scale: -2}, mgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !mgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderKeyOpts(t *testing.T) {
	a := Options{}
	a.SetDefaults()
	b := a
	b.Edges = true
	c := a
	c.Labels = map[string]string{"m1": "Heat"}
	d := a
	d.Format = FormatPNG
	e := d
	e.Scale = 2

	k := cache.NewDefaultKeyer()
	keys := map[string]bool{}
	for _, o := range []Options{a, b, c, d, e} {
		keys[k.RenderKey("h", o.RenderKeyOpts())] = true
	}
	if len(keys) != 5 {
		t.Errorf("got %d distinct keys, want 5", len(keys))
	}
}

func TestExecuteSVG(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sample), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ContentType != "image/svg+xml" {
		t.Errorf("ContentType = %q", res.ContentType)
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 3 || res.Stats.Steps != 600 {
		t.Errorf("stats = %+v", res.Stats)
	}
	doc := string(res.Artifact)
	if n := strings.Count(doc, "<circle"); n != 4 {
		t.Errorf("circles = %d, want 4", n)
	}
	if strings.Count(doc, `class="node primary"`) != 2 {
		t.Errorf("want 2 primary markers:\n%s", doc)
	}
	if strings.Contains(doc, "<line") {
		t.Error("edges drawn by default")
	}
}

func TestExecuteDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	a, err := r.Execute(context.Background(), []byte(sample), Options{Edges: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), []byte(sample), Options{Edges: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Artifact, b.Artifact) {
		t.Error("same input and options produced different documents")
	}
}

func TestExecuteEmptyMap(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(`{}`), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 0 || strings.Contains(string(res.Artifact), "<circle") {
		t.Errorf("empty map rendered nodes:\n%s", res.Artifact)
	}
	if !strings.HasPrefix(string(res.Artifact), "<svg") {
		t.Errorf("not an SVG document:\n%s", res.Artifact)
	}
}

func TestExecuteMalformed(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	for _, in := range []string{"not json", `[]`, `{"u1":"m1"}`, `{"u1":[1]}`, ``} {
		_, err := r.Execute(context.Background(), []byte(in), Options{})
		if !mgerrors.Is(err, mgerrors.ErrCodeMalformedInput) {
			t.Errorf("Execute(%q) error = %v, want MALFORMED_INPUT", in, err)
		}
	}
}

func TestExecuteTimeout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Execute(ctx, []byte(sample), Options{})
	if !mgerrors.Is(err, mgerrors.ErrCodeTimeout) {
		t.Errorf("error = %v, want TIMEOUT", err)
	}
}

func TestExecuteTimeoutBoundsLargeInput(t *testing.T) {
	var b strings.Builder
	b.WriteString("{")
	for u := 0; u < 20000; u++ {
		if u > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"u%d":["m%d","m%d","m%d"]`, u, u, u*7%50000, u*13%50000)
	}
	b.WriteString("}")

	r := NewRunner(nil, nil, nil)
	start := time.Now()
	_, err := r.Execute(context.Background(), []byte(b.String()), Options{Timeout: 200 * time.Millisecond})
	elapsed := time.Since(start)

	if !mgerrors.Is(err, mgerrors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want TIMEOUT", err)
	}
	if elapsed > 10*time.Second {
		t.Errorf("Execute returned %v after a 200ms timeout", elapsed)
	}
}

func TestExecuteJSON(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sample), Options{Format: FormatJSON, Steps: 10})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var doc struct {
		Width float64 `json:"width"`
		Steps int     `json:"steps"`
		Nodes []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"nodes"`
		Links []struct{ Source, Target int } `json:"links"`
	}
	if err := json.Unmarshal(res.Artifact, &doc); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if doc.Width != 720 || doc.Steps != 10 || len(doc.Nodes) != 4 || len(doc.Links) != 3 {
		t.Errorf("layout document = %+v", doc)
	}
	if doc.Nodes[0].ID != "u1" || doc.Nodes[1].Kind != "primary" {
		t.Errorf("node order or kind wrong: %+v", doc.Nodes)
	}
}

func TestExecuteDOT(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sample), Options{Format: FormatDOT, Edges: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.Count(string(res.Artifact), " -- "); got != 3 {
		t.Errorf("DOT edges = %d, want 3", got)
	}
}

func TestExecuteMapUsesLabels(t *testing.T) {
	m := bipartite.NewInteractionMap()
	m.Set("u7", []string{"m1"})

	r := NewRunner(nil, nil, nil)
	res, err := r.ExecuteMap(context.Background(), m, Options{
		Labels: map[string]string{"m1": "Toy Story (1995)"},
	})
	if err != nil {
		t.Fatalf("ExecuteMap: %v", err)
	}
	if !strings.Contains(string(res.Artifact), "<title>Toy Story (1995)</title>") {
		t.Errorf("label missing:\n%s", res.Artifact)
	}
}

type countingCache struct {
	cache.Cache
	gets, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	return c.Cache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestExecuteCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{Cache: fc}
	r := NewRunner(cc, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, []byte(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || cc.sets != 1 {
		t.Errorf("first run: hit=%v sets=%d", first.CacheHit, cc.sets)
	}

	second, err := r.Execute(ctx, []byte(sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || second.Graph != nil {
		t.Error("second run should be served from cache")
	}
	if !bytes.Equal(first.Artifact, second.Artifact) {
		t.Error("cached artifact differs")
	}

	refreshed, err := r.Execute(ctx, []byte(sample), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestSimulateUsesOptions(t *testing.T) {
	m := bipartite.NewInteractionMap()
	m.Set("u1", []string{"m1"})
	opts := Options{Steps: 25}
	opts.SetDefaults()

	l, err := Simulate(context.Background(), Build(m, opts), opts)
	if err != nil {
		t.Fatal(err)
	}
	if l.Steps != 25 || len(l.Positions) != 2 {
		t.Errorf("layout = %+v", l)
	}
	if l.Width != force.DefaultCanvasWidth*force.DefaultSizeRatio {
		t.Errorf("layout width = %g", l.Width)
	}
}

func TestSimulateRejectedParameters(t *testing.T) {
	m := bipartite.NewInteractionMap()
	m.Set("u1", []string{"m1"})
	opts := Options{}
	opts.SetDefaults()
	g := Build(m, opts)

	// a zero-sized area is refused by the simulation itself
	_, err := Simulate(context.Background(), g, Options{Steps: 10})
	if !mgerrors.Is(err, mgerrors.ErrCodeLayoutUnavailable) {
		t.Errorf("error = %v, want LAYOUT_UNAVAILABLE", err)
	}
}
