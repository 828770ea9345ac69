package pipeline

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	"github.com/matzehuels/moviegraph/pkg/cache"
)

// Build turns an interaction map into a graph under opts.
func Build(m *bipartite.InteractionMap, opts Options) *bipartite.Graph {
	return bipartite.Build(m,
		bipartite.WithPrimaryPrefix(opts.PrimaryPrefix),
		bipartite.WithLabels(opts.Labels),
	)
}

// hashLabels hashes the label map in key order.
func hashLabels(labels map[string]string) string {
	pairs := make([][2]string, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, [2]string{k, labels[k]})
	}
	data, _ := json.Marshal(pairs)
	return cache.Hash(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
