package reorder

import "math"

// cluster is a dendrogram node. Leaves have index >= 0 and no children.
type cluster struct {
	leaf        int
	left, right *cluster
	leaves      []int
}

func (c *cluster) isLeaf() bool { return c.left == nil }

// completeLinkage builds a dendrogram over n items by repeatedly merging
// the two closest clusters, where cluster distance is the largest pairwise
// item distance. Ties merge the pair with the smallest indices first,
// including ties at +Inf.
func completeLinkage(d [][]float64) *cluster {
	n := len(d)
	if n == 0 {
		return nil
	}

	active := make([]*cluster, n)
	dist := make([][]float64, n)
	for i := range active {
		active[i] = &cluster{leaf: i, leaves: []int{i}}
		dist[i] = append([]float64(nil), d[i]...)
	}
	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}

	for merges := 0; merges < n-1; merges++ {
		a, b, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if alive[j] && (a < 0 || dist[i][j] < best) {
					a, b, best = i, j, dist[i][j]
				}
			}
		}

		merged := &cluster{
			leaf:   -1,
			left:   active[a],
			right:  active[b],
			leaves: append(append([]int(nil), active[a].leaves...), active[b].leaves...),
		}
		active[a] = merged
		alive[b] = false
		for k := 0; k < n; k++ {
			if k != a && alive[k] {
				dist[a][k] = math.Max(dist[a][k], dist[b][k])
				dist[k][a] = dist[a][k]
			}
		}
	}

	for i, ok := range alive {
		if ok {
			return active[i]
		}
	}
	return nil
}
