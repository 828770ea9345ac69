package render

import "github.com/matzehuels/moviegraph/pkg/bipartite"

// Marker is the visual encoding of one node kind.
type Marker struct {
	Radius float64
	Fill   string
}

// Theme holds the fixed visual encodings.
type Theme struct {
	Primary     Marker
	Secondary   Marker
	Stroke      string // node outline
	LinkStroke  string
	LinkOpacity float64
	Background  string // empty means transparent
}

// DefaultTheme draws movies as larger green dots and users as small blue dots.
func DefaultTheme() Theme {
	return Theme{
		Primary:     Marker{Radius: 5, Fill: "#26963c"},
		Secondary:   Marker{Radius: 3, Fill: "#1f77b4"},
		Stroke:      "#ffffff",
		LinkStroke:  "#999999",
		LinkOpacity: 0.6,
	}
}

// Marker returns the encoding for kind k.
func (t Theme) Marker(k bipartite.Kind) Marker {
	if k == bipartite.KindPrimary {
		return t.Primary
	}
	return t.Secondary
}
