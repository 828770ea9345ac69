package reorder

import (
	"encoding/json"
	"io"
	"math"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// Matrix is a square matrix stored row-major.
type Matrix [][]float64

// DecodeMatrix reads a JSON array of equal-length numeric arrays.
func DecodeMatrix(r io.Reader) (Matrix, error) {
	var m Matrix
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeMalformedInput, err, "matrix must be a JSON array of number arrays")
	}
	if dec.More() {
		return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "unexpected data after matrix")
	}
	return m, m.Validate()
}

// Validate checks that m is square and holds only finite values.
func (m Matrix) Validate() error {
	for i, row := range m {
		if len(row) != len(m) {
			return mgerrors.New(mgerrors.ErrCodeMalformedInput,
				"matrix must be square: row %d has %d columns, want %d", i, len(row), len(m))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return mgerrors.New(mgerrors.ErrCodeMalformedInput, "matrix[%d][%d] is not finite", i, j)
			}
		}
	}
	return nil
}

// maxUnscaled bounds the magnitudes whose squared differences are summed
// directly. Larger matrices are scaled down first so distances stay finite;
// scaling preserves their order.
const maxUnscaled = 1e100

// rowDistances returns the Euclidean distance between every pair of rows.
func rowDistances(m Matrix) [][]float64 {
	n := len(m)
	scale := 1.0
	for _, row := range m {
		for _, v := range row {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	if scale <= maxUnscaled {
		scale = 1
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var s float64
			for k := range m[i] {
				diff := m[i][k]/scale - m[j][k]/scale
				s += diff * diff
			}
			d[i][j] = math.Sqrt(s)
			d[j][i] = d[i][j]
		}
	}
	return d
}
