// Package reorder sorts the rows and columns of a similarity matrix so
// that similar items end up next to each other.
//
// [OptimalLeafOrder] clusters the rows (complete linkage on Euclidean
// distance) and then flips the dendrogram's subtrees to minimize the sum of
// distances between adjacent leaves, after Bar-Joseph, Gifford and Jaakkola,
// "Fast optimal leaf ordering for hierarchical clustering" (2001).
// [StablePermute] applies the resulting permutation to rows and columns.
package reorder
