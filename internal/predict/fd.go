package predict

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultRelStep is the relative perturbation used by the
// finite-difference Jacobian.
const DefaultRelStep = 1e-3

// FiniteDifference builds a central-difference Jacobian estimator for f
// over pdim parameters. Each parameter i is perturbed by
// max(p_i*rdelta, rdelta), so the step never collapses near zero.
//
// The estimate degrades silently for ill-conditioned or non-smooth
// functions; there is no error signal and no retry.
func FiniteDifference(f Func, pdim int, rdelta float64) JacFunc {
	if rdelta <= 0 {
		rdelta = DefaultRelStep
	}
	return func(p []float64) *mat.Dense {
		cols := make([][]float64, pdim)
		ydim := 0
		for i := 0; i < pdim; i++ {
			step := math.Max(p[i]*rdelta, rdelta)

			plus := append([]float64(nil), p...)
			minus := append([]float64(nil), p...)
			plus[i] += step
			minus[i] -= step

			yPlus := f(plus)
			yMinus := f(minus)
			ydim = len(yPlus)

			col := make([]float64, ydim)
			for k := range col {
				col[k] = (yPlus[k] - yMinus[k]) / (2 * step)
			}
			cols[i] = col
		}

		jac := mat.NewDense(ydim, pdim, nil)
		for j, col := range cols {
			for i, v := range col {
				jac.Set(i, j, v)
			}
		}
		return jac
	}
}
