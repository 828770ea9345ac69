// Package nodelink renders a placed scene as a Graphviz node-link diagram.
//
// [ToDOT] emits DOT source with every node pinned at its force-layout
// position, so external Graphviz tools reproduce the same picture:
//
//	neato -n2 -Tsvg graph.dot > graph.svg
//
// [RenderSVG] runs Graphviz in-process via [github.com/goccy/go-graphviz]
// using the neato engine, which honors pinned positions instead of
// computing its own layout.
package nodelink
