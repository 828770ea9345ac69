// Package svg serializes a render.Scene as a standalone SVG document.
//
// Each node becomes exactly one <circle class="node ..."> with a <title>
// holding its display label. Link lines are optional ([WithEdges]) and
// drawn below the nodes.
package svg

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/moviegraph/pkg/render"
)

// ContentType is the media type of the rendered document.
const ContentType = "image/svg+xml"

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	theme     render.Theme
	showEdges bool
}

// WithEdges draws one line per link.
func WithEdges() Option { return func(r *renderer) { r.showEdges = true } }

// WithTheme overrides the default marker encodings.
func WithTheme(t render.Theme) Option { return func(r *renderer) { r.theme = t } }

// Render writes s as SVG markup.
func Render(s render.Scene, opts ...Option) []byte {
	r := renderer{theme: render.DefaultTheme()}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.1f %.1f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)

	if r.theme.Background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", render.EscapeXML(r.theme.Background))
	}
	if r.showEdges {
		renderLinks(&buf, s, r.theme)
	}
	renderNodes(&buf, s, r.theme)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLinks(buf *bytes.Buffer, s render.Scene, t render.Theme) {
	fmt.Fprintf(buf, `  <g class="links" stroke="%s" stroke-opacity="%.2f">`+"\n", render.EscapeXML(t.LinkStroke), t.LinkOpacity)
	for _, l := range s.Links {
		a, b := s.Nodes[l.Source], s.Nodes[l.Target]
		fmt.Fprintf(buf, `    <line class="link" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"/>`+"\n",
			a.X, a.Y, b.X, b.Y)
	}
	buf.WriteString("  </g>\n")
}

func renderNodes(buf *bytes.Buffer, s render.Scene, t render.Theme) {
	fmt.Fprintf(buf, `  <g class="nodes" stroke="%s" stroke-width="1">`+"\n", render.EscapeXML(t.Stroke))
	for _, n := range s.Nodes {
		m := t.Marker(n.Kind)
		fmt.Fprintf(buf, `    <circle class="node %s" data-id="%s" cx="%.2f" cy="%.2f" r="%.1f" fill="%s"><title>%s</title></circle>`+"\n",
			n.Kind, render.EscapeXML(n.ID), n.X, n.Y, m.Radius, render.EscapeXML(m.Fill), render.EscapeXML(n.Label))
	}
	buf.WriteString("  </g>\n")
}
