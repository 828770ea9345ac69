// Package render turns a laid-out bipartite graph into image documents.
//
// # Overview
//
// A [Scene] joins a [bipartite.Graph] with its [force.Layout]: one
// [SceneNode] per graph node at its simulated position, plus one
// [SceneLink] per edge. Serializers live in subpackages:
//
//   - [svg]: native SVG markup, the default HTTP response
//   - [raster]: PNG via fogleman/gg
//   - [nodelink]: Graphviz DOT with pinned positions, and Graphviz SVG
//
// # Canvas
//
// The simulation area is half the canvas (see [force.DefaultSizeRatio]),
// so a scene is drawn on a canvas twice the size of the layout box and
// layout coordinates are used unchanged.
//
// # Format Conversion
//
// [ToPDF] converts any SVG to PDF using the external rsvg-convert tool
// (from librsvg). A missing tool surfaces as LAYOUT_UNAVAILABLE.
package render
