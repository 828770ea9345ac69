// Package bipartite turns a user–movie interaction map into a graph.
//
// # Overview
//
// An [InteractionMap] maps a source identifier (typically a user, "u42") to
// the ordered list of identifiers it interacted with (typically movies,
// "m302"). [Build] collapses every distinct identifier into one [Node],
// assigning indices in first-seen order, and emits one [Edge] per
// (key, value) occurrence.
//
// # Node Kinds
//
// Identifiers starting with the reserved prefix ([DefaultPrimaryPrefix],
// "m") are [KindPrimary]; every other identifier is [KindSecondary]. The
// kind only drives visual encoding; it does not constrain topology, so
// user–user or movie–movie edges are accepted as given.
//
// # Ordering
//
// [Decode] keeps keys in document order, so the node order (and therefore
// the seeded layout) is reproducible for identical request bodies.
//
//	m, err := bipartite.Decode(r.Body)
//	if err != nil {
//	    // errors.Is(err, errors.ErrCodeMalformedInput)
//	}
//	g := bipartite.Build(m)
//	fmt.Println(g.NodeCount(), g.EdgeCount())
package bipartite
