package reorder

import (
	"math"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// OptimalLeafOrder returns a permutation of the rows of m that minimizes
// the summed distance between neighbors among all orderings consistent
// with the complete-linkage dendrogram. An empty matrix yields an empty
// permutation.
func OptimalLeafOrder(m Matrix) ([]int, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := len(m)
	if n == 0 {
		return []int{}, nil
	}

	d := rowDistances(m)
	root := completeLinkage(d)
	o := newOrderer(n, d)
	o.solve(root)

	if root.isLeaf() {
		return []int{root.leaf}, nil
	}
	bi, bj, best := -1, -1, math.Inf(1)
	for _, i := range root.left.leaves {
		for _, j := range root.right.leaves {
			if bi < 0 || o.cost[i][j] < best {
				bi, bj, best = i, j, o.cost[i][j]
			}
		}
	}
	return o.path(bi, bj), nil
}

// orderer holds, for every leaf pair (i, j), the cheapest ordering of the
// subtree rooted at their lowest common ancestor that starts at i and ends
// at j. Each pair has exactly one such ancestor, so one n×n table suffices.
type orderer struct {
	d    [][]float64
	cost [][]float64
	via  [][][2]int // inner endpoints (k, l): path is i..k then l..j
}

func newOrderer(n int, d [][]float64) *orderer {
	o := &orderer{d: d, cost: make([][]float64, n), via: make([][][2]int, n)}
	for i := 0; i < n; i++ {
		o.cost[i] = make([]float64, n)
		o.via[i] = make([][2]int, n)
	}
	return o
}

func (o *orderer) solve(c *cluster) {
	if c.isLeaf() {
		return
	}
	o.solve(c.left)
	o.solve(c.right)

	for _, i := range c.left.leaves {
		for _, j := range c.right.leaves {
			best, bk, bl := math.Inf(1), -1, -1
			for _, k := range far(c.left, i) {
				for _, l := range far(c.right, j) {
					v := o.cost[i][k] + o.d[k][l] + o.cost[l][j]
					if bk < 0 || v < best {
						best, bk, bl = v, k, l
					}
				}
			}
			o.cost[i][j], o.cost[j][i] = best, best
			o.via[i][j] = [2]int{bk, bl}
			o.via[j][i] = [2]int{bl, bk}
		}
	}
}

// far returns the leaves an ordering of c starting at i may end at: the
// leaves of the child not containing i, or i itself for a leaf.
func far(c *cluster, i int) []int {
	if c.isLeaf() {
		return c.leaves
	}
	for _, x := range c.left.leaves {
		if x == i {
			return c.right.leaves
		}
	}
	return c.left.leaves
}

func (o *orderer) path(i, j int) []int {
	if i == j {
		return []int{i}
	}
	v := o.via[i][j]
	return append(o.path(i, v[0]), o.path(v[1], j)...)
}

// StablePermute returns m with rows and columns reordered by perm:
// out[i][j] = m[perm[i]][perm[j]].
func StablePermute(m Matrix, perm []int) (Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := len(m)
	if len(perm) != n {
		return nil, mgerrors.New(mgerrors.ErrCodeInvalidInput, "permutation has %d entries for %d rows", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, mgerrors.New(mgerrors.ErrCodeInvalidInput, "not a permutation of 0..%d", n-1)
		}
		seen[p] = true
	}

	out := make(Matrix, n)
	for i, pi := range perm {
		out[i] = make([]float64, n)
		for j, pj := range perm {
			out[i][j] = m[pi][pj]
		}
	}
	return out, nil
}

// Reorder computes the optimal leaf order of m and applies it.
func Reorder(m Matrix) (Matrix, []int, error) {
	perm, err := OptimalLeafOrder(m)
	if err != nil {
		return nil, nil, err
	}
	out, err := StablePermute(m, perm)
	return out, perm, err
}
