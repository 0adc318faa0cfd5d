// Package series provides labeled numeric containers returned by
// prediction evaluations: a Series pairs an ordered id list with values,
// a Matrix pairs row and column ids with a dense matrix.
package series

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Series is an ordered list of ids with one value per id.
type Series struct {
	ids    []string
	values []float64
}

// New builds a Series. ids and values must have equal length.
func New(ids []string, values []float64) Series {
	if len(ids) != len(values) {
		panic(fmt.Sprintf("series: %d ids for %d values", len(ids), len(values)))
	}
	return Series{ids: append([]string(nil), ids...), values: append([]float64(nil), values...)}
}

// Constant builds a Series holding the same value for every id.
func Constant(ids []string, v float64) Series {
	values := make([]float64, len(ids))
	for i := range values {
		values[i] = v
	}
	return New(ids, values)
}

func (s Series) Len() int          { return len(s.values) }
func (s Series) IDs() []string     { return append([]string(nil), s.ids...) }
func (s Series) Values() []float64 { return append([]float64(nil), s.values...) }

// At returns the i-th value.
func (s Series) At(i int) float64 { return s.values[i] }

// ID returns the i-th id.
func (s Series) ID(i int) string { return s.ids[i] }

// Get looks a value up by id.
func (s Series) Get(id string) (float64, bool) {
	for i, sid := range s.ids {
		if sid == id {
			return s.values[i], true
		}
	}
	return 0, false
}

// Scale returns the series with every value multiplied by c.
func (s Series) Scale(c float64) Series {
	out := New(s.ids, s.values)
	for i := range out.values {
		out.values[i] *= c
	}
	return out
}

// Max returns the elementwise max of two series over s's ids.
func (s Series) Max(other Series) Series {
	if len(other.values) != len(s.values) {
		panic("series: length mismatch in Max")
	}
	out := New(s.ids, s.values)
	for i := range out.values {
		out.values[i] = math.Max(out.values[i], other.values[i])
	}
	return out
}

func (s Series) String() string {
	var sb strings.Builder
	for i, id := range s.ids {
		fmt.Fprintf(&sb, "%-20s %12.6g\n", id, s.values[i])
	}
	return sb.String()
}

// Matrix is a dense matrix with row and column ids, typically a Jacobian
// with output ids on rows and parameter ids on columns.
type Matrix struct {
	rowIDs []string
	colIDs []string
	data   *mat.Dense
}

// NewMatrix wraps a gonum Dense with id labels. Dimensions must agree.
func NewMatrix(rowIDs, colIDs []string, data *mat.Dense) Matrix {
	r, c := data.Dims()
	if r != len(rowIDs) || c != len(colIDs) {
		panic(fmt.Sprintf("series: %dx%d matrix with %d row ids, %d col ids", r, c, len(rowIDs), len(colIDs)))
	}
	return Matrix{
		rowIDs: append([]string(nil), rowIDs...),
		colIDs: append([]string(nil), colIDs...),
		data:   data,
	}
}

func (m Matrix) RowIDs() []string { return append([]string(nil), m.rowIDs...) }
func (m Matrix) ColIDs() []string { return append([]string(nil), m.colIDs...) }

// Dense exposes the underlying matrix for numeric routines.
func (m Matrix) Dense() *mat.Dense { return m.data }

// At returns the (i, j) entry.
func (m Matrix) At(i, j int) float64 { return m.data.At(i, j) }

func (m Matrix) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s", ""))
	for _, cid := range m.colIDs {
		fmt.Fprintf(&sb, " %12s", cid)
	}
	sb.WriteByte('\n')
	for i, rid := range m.rowIDs {
		fmt.Fprintf(&sb, "%-20s", rid)
		for j := range m.colIDs {
			fmt.Fprintf(&sb, " %12.6g", m.data.At(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
