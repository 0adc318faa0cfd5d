package predict

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// michaelis is V*x/(K+x) evaluated at x = 1, 2, 3.
func michaelis(p []float64) []float64 {
	v, k := p[0], p[1]
	xs := []float64{1, 2, 3}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = v * x / (k + x)
	}
	return out
}

func newMichaelis(t *testing.T, opts ...Option) *Prediction {
	t.Helper()
	opts = append([]Option{WithPIDs("V", "K"), WithYDim(3)}, opts...)
	pr, err := New(michaelis, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return pr
}

func TestNewRequiresDims(t *testing.T) {
	if _, err := New(michaelis, WithYDim(3)); !errors.Is(err, ErrNoParamIDs) {
		t.Errorf("err = %v, want ErrNoParamIDs", err)
	}
	if _, err := New(michaelis, WithPIDs("V", "K")); !errors.Is(err, ErrNoOutputIDs) {
		t.Errorf("err = %v, want ErrNoOutputIDs", err)
	}
	if _, err := New(michaelis, WithPIDs("V", "V"), WithYDim(3)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if _, err := New(michaelis, WithPIDs("V", "K"), WithYDim(3), WithP0(1)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestDefaultIDs(t *testing.T) {
	pr, err := New(michaelis, WithPDim(2), WithYDim(3))
	if err != nil {
		t.Fatal(err)
	}
	if pids := pr.PIDs(); pids[0] != "p_1" || pids[1] != "p_2" {
		t.Errorf("pids = %v", pids)
	}
	if yids := pr.YIDs(); yids[2] != "y_3" {
		t.Errorf("yids = %v", yids)
	}
}

func TestEvalDefaultEqualsExplicit(t *testing.T) {
	pr := newMichaelis(t)

	implicit, err := pr.Eval(nil)
	if err != nil {
		t.Fatal(err)
	}
	explicit, err := pr.Eval([]float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < implicit.Len(); i++ {
		if implicit.At(i) != explicit.At(i) {
			t.Errorf("output %d: %v != %v", i, implicit.At(i), explicit.At(i))
		}
	}
	want := []float64{1.0 / 2, 2.0 / 3, 3.0 / 4}
	for i, w := range want {
		if math.Abs(implicit.At(i)-w) > 1e-12 {
			t.Errorf("y[%d] = %v, want %v", i, implicit.At(i), w)
		}
	}
}

func TestEvalDimensionMismatch(t *testing.T) {
	pr := newMichaelis(t)
	if _, err := pr.Eval([]float64{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestFiniteDifferenceAffine(t *testing.T) {
	// f(p) = M p with known M; FD must recover M to step-dependent
	// tolerance (exactly, up to roundoff, since f is affine).
	m := [][]float64{
		{2, -1, 0.5},
		{0, 3, 1},
	}
	f := func(p []float64) []float64 {
		out := make([]float64, len(m))
		for i, row := range m {
			for j, v := range row {
				out[i] += v * p[j]
			}
		}
		return out
	}
	jac := FiniteDifference(f, 3, DefaultRelStep)([]float64{1, 2, 3})
	for i, row := range m {
		for j, want := range row {
			if got := jac.At(i, j); math.Abs(got-want) > 1e-8 {
				t.Errorf("J[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestFiniteDifferenceMatchesGonum(t *testing.T) {
	f := func(p []float64) []float64 {
		return []float64{
			p[0] * math.Exp(-p[1]),
			p[0] * p[0] * p[1],
		}
	}
	p := []float64{1.3, 0.7}

	got := FiniteDifference(f, 2, 1e-6)(p)

	want := mat.NewDense(2, 2, nil)
	fd.Jacobian(want, func(dst, x []float64) {
		copy(dst, f(x))
	}, p, &fd.JacobianSettings{Formula: fd.Central})

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(got.At(i, j)-want.At(i, j)) > 1e-6 {
				t.Errorf("J[%d][%d] = %v, reference %v", i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestJacobianBackfillAgainstAnalytic(t *testing.T) {
	pr := newMichaelis(t)
	p := []float64{2, 3}

	jac, err := pr.Jacobian(p)
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{1, 2, 3}
	for i, x := range xs {
		dV := x / (p[1] + x)
		dK := -p[0] * x / ((p[1] + x) * (p[1] + x))
		if math.Abs(jac.At(i, 0)-dV) > 1e-5 {
			t.Errorf("J[%d][V] = %v, want %v", i, jac.At(i, 0), dV)
		}
		if math.Abs(jac.At(i, 1)-dK) > 1e-5 {
			t.Errorf("J[%d][K] = %v, want %v", i, jac.At(i, 1), dK)
		}
	}
	if ids := jac.ColIDs(); ids[0] != "V" || ids[1] != "K" {
		t.Errorf("col ids = %v", ids)
	}
}

func TestConcat(t *testing.T) {
	a := newMichaelis(t)
	b, err := New(func(p []float64) []float64 {
		return []float64{p[0] + p[1]}
	}, WithPIDs("V", "K"), WithYIDs("sum"))
	if err != nil {
		t.Fatal(err)
	}

	c, err := a.Concat(b)
	if err != nil {
		t.Fatal(err)
	}

	yids := c.YIDs()
	want := []string{"y_1", "y_2", "y_3", "sum"}
	for i := range want {
		if yids[i] != want[i] {
			t.Fatalf("yids = %v, want %v", yids, want)
		}
	}

	p := []float64{2, 5}
	yc, err := c.Eval(p)
	if err != nil {
		t.Fatal(err)
	}
	ya, _ := a.Eval(p)
	yb, _ := b.Eval(p)
	for i := 0; i < ya.Len(); i++ {
		if yc.At(i) != ya.At(i) {
			t.Errorf("yc[%d] = %v, want %v", i, yc.At(i), ya.At(i))
		}
	}
	if yc.At(3) != yb.At(0) {
		t.Errorf("yc[3] = %v, want %v", yc.At(3), yb.At(0))
	}

	jac, err := c.Jacobian(p)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := jac.Dense().Dims(); r != 4 {
		t.Errorf("stacked jacobian has %d rows, want 4", r)
	}
}

func TestConcatOverlappingYIDs(t *testing.T) {
	a := newMichaelis(t)
	b := newMichaelis(t)
	c, err := a.Concat(b)
	if err != nil {
		t.Fatalf("overlapping yids should warn, not fail: %v", err)
	}
	if c.YDim() != 6 {
		t.Errorf("ydim = %d, want 6", c.YDim())
	}
}

func TestConcatParamMismatch(t *testing.T) {
	a := newMichaelis(t)
	b, err := New(func(p []float64) []float64 { return []float64{p[0]} },
		WithPIDs("other"), WithYIDs("z"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Concat(b); !errors.Is(err, ErrParamMismatch) {
		t.Errorf("err = %v, want ErrParamMismatch", err)
	}

	c, err := New(michaelis, WithPIDs("V", "K"), WithYDim(3), WithP0(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Concat(c); !errors.Is(err, ErrParamMismatch) {
		t.Errorf("different p0: err = %v, want ErrParamMismatch", err)
	}
}

func TestInLogParamsRoundTrip(t *testing.T) {
	pr := newMichaelis(t, WithP0(2, 3))

	lp, err := pr.InLogParams()
	if err != nil {
		t.Fatal(err)
	}
	if pids := lp.PIDs(); pids[0] != "log_V" || pids[1] != "log_K" {
		t.Errorf("pids = %v", pids)
	}
	if lp.Kind() != LogParams {
		t.Errorf("kind = %v, want logp", lp.Kind())
	}

	p := []float64{1.5, 4}
	logp := []float64{math.Log(p[0]), math.Log(p[1])}

	yBare, err := pr.Eval(p)
	if err != nil {
		t.Fatal(err)
	}
	yLog, err := lp.Eval(logp)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < yBare.Len(); i++ {
		if math.Abs(yBare.At(i)-yLog.At(i)) > 1e-12 {
			t.Errorf("y[%d]: bare %v vs log %v", i, yBare.At(i), yLog.At(i))
		}
	}

	// Chain-rule Jacobian must agree with finite differences of the
	// log-space function itself.
	jacChain, err := lp.Jacobian(logp)
	if err != nil {
		t.Fatal(err)
	}
	jacFD := FiniteDifference(lp.RawFunc(), 2, 1e-6)(logp)
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(jacChain.At(i, j)-jacFD.At(i, j)) > 1e-5 {
				t.Errorf("J_log[%d][%d] = %v, FD %v", i, j, jacChain.At(i, j), jacFD.At(i, j))
			}
		}
	}
}

func TestInLogParamsRejected(t *testing.T) {
	pr := newMichaelis(t)
	lp, err := pr.InLogParams()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lp.InLogParams(); !errors.Is(err, ErrNotBare) {
		t.Errorf("err = %v, want ErrNotBare", err)
	}

	neg := newMichaelis(t, WithP0(1, -1))
	if _, err := neg.InLogParams(); !errors.Is(err, ErrLogOfNonPositive) {
		t.Errorf("err = %v, want ErrLogOfNonPositive", err)
	}
}

func TestSigmaModels(t *testing.T) {
	pr := newMichaelis(t, WithP0(10, 1))

	constant, err := pr.Sigma(nil, ErrorModel{Kind: ConstantSigma, Sigma0: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < constant.Len(); i++ {
		if constant.At(i) != 2 {
			t.Errorf("constant sigma[%d] = %v, want 2", i, constant.At(i))
		}
	}

	cv, err := pr.Sigma(nil, ErrorModel{Kind: CVSigma, CV: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	y, _ := pr.Eval(nil)
	for i := 0; i < cv.Len(); i++ {
		if math.Abs(cv.At(i)-0.1*y.At(i)) > 1e-12 {
			t.Errorf("cv sigma[%d] = %v, want %v", i, cv.At(i), 0.1*y.At(i))
		}
	}

	mixed, err := pr.Sigma(nil, ErrorModel{Kind: MixedSigma, Sigma0: 0.6, CV: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < mixed.Len(); i++ {
		want := math.Max(0.6, 0.1*y.At(i))
		if math.Abs(mixed.At(i)-want) > 1e-12 {
			t.Errorf("mixed sigma[%d] = %v, want %v", i, mixed.At(i), want)
		}
	}
}

func TestTable(t *testing.T) {
	pr := newMichaelis(t)
	rows, err := pr.Table(nil, DefaultErrorModel())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].YID != "y_1" || rows[0].Sigma != 1 {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestSpectrumRank(t *testing.T) {
	// Output depends only on p[0]+p[1], so the sensitivity matrix has
	// rank 1 regardless of output count.
	f := func(p []float64) []float64 {
		s := p[0] + p[1]
		return []float64{s, 2 * s, 3 * s}
	}
	pr, err := New(f, WithPDim(2), WithYDim(3))
	if err != nil {
		t.Fatal(err)
	}
	sigmas, err := pr.Spectrum(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sigmas) != 2 {
		t.Fatalf("got %d singular values, want 2", len(sigmas))
	}
	if sigmas[1] > sigmas[0]*1e-6 {
		t.Errorf("spectrum %v should be numerically rank 1", sigmas)
	}
}

func TestParseErrorModelKind(t *testing.T) {
	if k, err := ParseErrorModelKind("mixed"); err != nil || k != MixedSigma {
		t.Errorf("mixed: %v, %v", k, err)
	}
	if _, err := ParseErrorModelKind("bogus"); !errors.Is(err, ErrUnknownErrorModel) {
		t.Errorf("err = %v, want ErrUnknownErrorModel", err)
	}
}
