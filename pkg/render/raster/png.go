// Package raster draws a render.Scene into a PNG image.
package raster

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/matzehuels/moviegraph/pkg/render"
)

// ContentType is the media type of the rendered image.
const ContentType = "image/png"

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	theme     render.Theme
	showEdges bool
	scale     float64
}

// WithEdges draws one line per link.
func WithEdges() Option { return func(r *renderer) { r.showEdges = true } }

// WithTheme overrides the default marker encodings.
func WithTheme(t render.Theme) Option { return func(r *renderer) { r.theme = t } }

// WithScale renders at a multiple of the canvas size; 2.0 suits high-DPI displays.
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// Render rasterizes s and encodes it as PNG.
func Render(s render.Scene, opts ...Option) ([]byte, error) {
	r := renderer{theme: render.DefaultTheme(), scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) {
		return nil, fmt.Errorf("invalid scale %g", r.scale)
	}

	w := int(math.Ceil(s.Width * r.scale))
	h := int(math.Ceil(s.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)

	if r.theme.Background != "" {
		dc.SetColor(parseHex(r.theme.Background))
		dc.DrawRectangle(0, 0, s.Width, s.Height)
		dc.Fill()
	}

	if r.showEdges {
		lc := parseHex(r.theme.LinkStroke)
		lc.A = uint8(math.Round(255 * r.theme.LinkOpacity))
		dc.SetColor(lc)
		dc.SetLineWidth(1)
		for _, l := range s.Links {
			a, b := s.Nodes[l.Source], s.Nodes[l.Target]
			dc.DrawLine(a.X, a.Y, b.X, b.Y)
			dc.Stroke()
		}
	}

	stroke := parseHex(r.theme.Stroke)
	for _, n := range s.Nodes {
		m := r.theme.Marker(n.Kind)
		dc.DrawCircle(n.X, n.Y, m.Radius)
		dc.SetColor(parseHex(m.Fill))
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// parseHex parses "#rgb" or "#rrggbb". Anything else yields opaque black.
func parseHex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{A: 255}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
