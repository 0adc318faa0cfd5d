package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Spectrum returns the singular values of a sensitivity matrix in
// descending order. The spread of the spectrum diagnoses parameter
// identifiability: a sharp drop marks the numerical rank.
func Spectrum(jac mat.Matrix) ([]float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDNone); !ok {
		r, c := jac.Dims()
		return nil, fmt.Errorf("analysis: SVD of %dx%d matrix did not converge", r, c)
	}
	return svd.Values(nil), nil
}

// Tolerance is the numerical-zero threshold for singular values of an
// m x n matrix: smax * max(m, n) * eps, the same cutoff used for
// numerical rank determination.
func Tolerance(sigmas []float64, m, n int) float64 {
	if len(sigmas) == 0 {
		return 0
	}
	dim := m
	if n > dim {
		dim = n
	}
	return sigmas[0] * float64(dim) * eps
}

// NumericalRank counts singular values above Tolerance.
func NumericalRank(sigmas []float64, m, n int) int {
	tol := Tolerance(sigmas, m, n)
	rank := 0
	for _, s := range sigmas {
		if s > tol {
			rank++
		}
	}
	return rank
}

// ConditionNumber is the ratio of the largest to the smallest singular
// value; +Inf when the smallest is zero.
func ConditionNumber(sigmas []float64) float64 {
	if len(sigmas) == 0 {
		return 0
	}
	smin := sigmas[len(sigmas)-1]
	if smin == 0 {
		return math.Inf(1)
	}
	return sigmas[0] / smin
}

// eps is the float64 machine epsilon.
var eps = math.Nextafter(1, 2) - 1
