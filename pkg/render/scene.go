package render

import (
	"fmt"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/force"
)

// Scene is everything a serializer needs to draw one graph.
type Scene struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Nodes  []SceneNode `json:"nodes"`
	Links  []SceneLink `json:"links"`
}

// SceneNode is a node placed on the canvas.
type SceneNode struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Kind  bipartite.Kind `json:"kind"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
}

// SceneLink is an edge between two placed nodes, by index.
type SceneLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// NewScene places the nodes of g at the positions of l on a width×height canvas.
// It fails if the layout does not have one position per node.
func NewScene(g *bipartite.Graph, l force.Layout, width, height float64) (Scene, error) {
	if len(l.Positions) != g.NodeCount() {
		return Scene{}, fmt.Errorf("layout has %d positions for %d nodes", len(l.Positions), g.NodeCount())
	}

	s := Scene{
		Width:  width,
		Height: height,
		Nodes:  make([]SceneNode, len(g.Nodes)),
		Links:  make([]SceneLink, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		p := l.Positions[i]
		s.Nodes[i] = SceneNode{ID: n.ID, Label: n.Label, Kind: n.Kind, X: p.X, Y: p.Y}
	}
	for i, e := range g.Edges {
		s.Links[i] = SceneLink{Source: e.Source, Target: e.Target}
	}
	return s, nil
}
