package series

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSeriesAccess(t *testing.T) {
	s := New([]string{"y1", "y2"}, []float64{0.5, 2})

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if v, ok := s.Get("y2"); !ok || v != 2 {
		t.Errorf("Get(y2) = %v, %v", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}
}

func TestSeriesCopiesInput(t *testing.T) {
	ids := []string{"a"}
	vals := []float64{1}
	s := New(ids, vals)
	vals[0] = 99
	if s.At(0) != 1 {
		t.Errorf("series aliased caller slice: got %v", s.At(0))
	}
}

func TestSeriesMax(t *testing.T) {
	a := New([]string{"a", "b"}, []float64{1, 5})
	b := New([]string{"a", "b"}, []float64{3, 2})
	m := a.Max(b)
	if m.At(0) != 3 || m.At(1) != 5 {
		t.Errorf("max = [%v %v], want [3 5]", m.At(0), m.At(1))
	}
}

func TestMatrixLabels(t *testing.T) {
	d := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	m := NewMatrix([]string{"y1", "y2"}, []string{"p1", "p2", "p3"}, d)
	if m.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", m.At(1, 2))
	}
	if ids := m.ColIDs(); len(ids) != 3 || ids[0] != "p1" {
		t.Errorf("col ids = %v", ids)
	}
}

func TestMatrixDimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched labels")
		}
	}()
	NewMatrix([]string{"y1"}, []string{"p1"}, mat.NewDense(2, 2, nil))
}
