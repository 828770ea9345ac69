package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/render"
)

// Options configures DOT generation.
type Options struct {
	// Edges emits one undirected edge per link. Off, only nodes are drawn.
	Edges bool
	// Theme supplies marker sizes and colors. Zero value means render.DefaultTheme.
	Theme *render.Theme
}

// pointsPerInch converts canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a scene to Graphviz DOT source. Node positions are pinned
// ("x,y!") in points with the y axis flipped to Graphviz's bottom-up origin.
func ToDOT(s render.Scene, opts Options) string {
	theme := render.DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.2f,%.2f\";\n", s.Width, s.Height)
	if theme.Background != "" {
		fmt.Fprintf(&buf, "  bgcolor=%s;\n", dotQuote(theme.Background))
	} else {
		buf.WriteString("  bgcolor=\"transparent\";\n")
	}
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, label=\"\", color=%s, penwidth=1];\n",
		dotQuote(theme.Stroke))
	fmt.Fprintf(&buf, "  edge [color=%s, penwidth=1];\n", dotQuote(linkColor(theme)))
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		m := theme.Marker(n.Kind)
		fmt.Fprintf(&buf, "  %s [pos=\"%.2f,%.2f!\", width=%.4f, fillcolor=%s, tooltip=%s, class=%s];\n",
			dotQuote(n.ID), n.X, s.Height-n.Y, 2*m.Radius/pointsPerInch, dotQuote(m.Fill), dotQuote(n.Label),
			dotQuote("node "+string(n.Kind)))
	}

	if opts.Edges {
		buf.WriteString("\n")
		for _, l := range s.Links {
			fmt.Fprintf(&buf, "  %s -- %s;\n", dotQuote(s.Nodes[l.Source].ID), dotQuote(s.Nodes[l.Target].ID))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote returns v as a DOT double-quoted string. Only the quote and
// backslash are escaped; every other byte is kept as is.
func dotQuote(v string) string {
	return `"` + dotEscaper.Replace(v) + `"`
}

// linkColor folds the link opacity into an RGBA hex color.
func linkColor(t render.Theme) string {
	if len(t.LinkStroke) != 7 {
		return t.LinkStroke
	}
	a := int(t.LinkOpacity*255 + 0.5)
	a = max(0, min(255, a))
	return fmt.Sprintf("%s%02x", t.LinkStroke, a)
}

// RenderSVG renders DOT source to SVG with Graphviz's neato engine.
// Failure to start Graphviz is reported as [mgerrors.ErrCodeLayoutUnavailable].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeLayoutUnavailable, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeLayoutUnavailable, err, "graphviz render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the output embeds like the native SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
