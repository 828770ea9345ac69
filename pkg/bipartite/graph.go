package bipartite

import "strings"

// DefaultPrimaryPrefix marks movie identifiers ("m1", "m302").
const DefaultPrimaryPrefix = "m"

// Kind classifies a node for visual encoding.
type Kind string

// Node kinds.
const (
	KindPrimary   Kind = "primary"   // identifiers with the reserved prefix (movies)
	KindSecondary Kind = "secondary" // everything else (users)
)

// Node is a deduplicated identifier.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// Edge links two node indices. Weight is always 1.
type Edge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

// Graph owns the nodes and edges built from one interaction map.
// Indices are only meaningful for the Graph that produced them.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index map[string]int
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	prefix string
	labels map[string]string
}

// WithPrimaryPrefix overrides the prefix that marks primary identifiers.
func WithPrimaryPrefix(p string) Option { return func(b *builder) { b.prefix = p } }

// WithLabels sets display names for some identifiers. Missing ids fall back to the id.
func WithLabels(labels map[string]string) Option { return func(b *builder) { b.labels = labels } }

// Classify returns the kind of id for the given prefix.
func Classify(id, prefix string) Kind {
	if prefix != "" && strings.HasPrefix(id, prefix) {
		return KindPrimary
	}
	return KindSecondary
}

// Build deduplicates m into a Graph.
//
// All identifiers are indexed before any edge is created: keys and their
// values are registered in document order, each new identifier taking the
// next index. A second pass then emits one edge per (key, value) pair.
// Self loops and repeated pairs are kept.
func Build(m *InteractionMap, opts ...Option) *Graph {
	b := builder{prefix: DefaultPrimaryPrefix}
	for _, opt := range opts {
		opt(&b)
	}

	g := &Graph{
		Nodes: []Node{},
		Edges: make([]Edge, 0, m.PairCount()),
		index: make(map[string]int),
	}

	keys := m.Keys()
	for _, k := range keys {
		g.add(k, &b)
		for _, t := range m.Targets(k) {
			g.add(t, &b)
		}
	}

	for _, k := range keys {
		src := g.index[k]
		for _, t := range m.Targets(k) {
			g.Edges = append(g.Edges, Edge{Source: src, Target: g.index[t], Weight: 1})
		}
	}
	return g
}

func (g *Graph) add(id string, b *builder) {
	if _, ok := g.index[id]; ok {
		return
	}
	label := id
	if l, ok := b.labels[id]; ok && l != "" {
		label = l
	}
	g.index[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Kind: Classify(id, b.prefix)})
}

// NodeCount returns the number of distinct identifiers.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Index returns the node index of id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// CountKind returns how many nodes have kind k.
func (g *Graph) CountKind(k Kind) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}
