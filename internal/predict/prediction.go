package predict

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/predlab/internal/analysis"
	"github.com/san-kum/predlab/internal/series"
)

// Func maps a parameter vector to an observable vector.
type Func func(p []float64) []float64

// JacFunc maps a parameter vector to the Jacobian of the observables with
// respect to the parameters (outputs on rows, parameters on columns).
type JacFunc func(p []float64) *mat.Dense

// PriorFunc scores a parameter vector under a prior.
type PriorFunc func(p []float64) float64

// ParamKind tags the parametrization of a prediction.
type ParamKind int

const (
	// Bare means parameters enter the function as given.
	Bare ParamKind = iota
	// LogParams means the function consumes log-transformed parameters.
	LogParams
)

func (k ParamKind) String() string {
	if k == LogParams {
		return "logp"
	}
	return "bare"
}

// Prediction wraps a parametric function and its sensitivity matrix with
// id-aware call signatures. Parameter ids match the argument order of the
// underlying function; output ids match the order of the returned vector.
// Predictions are immutable after construction; derived predictions close
// over their sources without mutating them.
type Prediction struct {
	f     Func
	df    JacFunc
	pids  []string
	yids  []string
	p0    []float64
	kind  ParamKind
	rank  int
	prior PriorFunc
}

type options struct {
	df      JacFunc
	pids    []string
	yids    []string
	pdim    int
	ydim    int
	p0      []float64
	kind    ParamKind
	rank    int
	prior   PriorFunc
	relStep float64
}

// Option configures New.
type Option func(*options)

// WithJacobian supplies an analytic Jacobian. Without it the Jacobian is
// backfilled by finite differences.
func WithJacobian(df JacFunc) Option { return func(o *options) { o.df = df } }

// WithPIDs names the parameters, in the argument order of the function.
func WithPIDs(pids ...string) Option { return func(o *options) { o.pids = pids } }

// WithYIDs names the outputs, in the order the function returns them.
func WithYIDs(yids ...string) Option { return func(o *options) { o.yids = yids } }

// WithPDim gives the parameter count when ids are not named; ids default
// to p_1..p_n.
func WithPDim(n int) Option { return func(o *options) { o.pdim = n } }

// WithYDim gives the output count when ids are not named; ids default to
// y_1..y_n.
func WithYDim(n int) Option { return func(o *options) { o.ydim = n } }

// WithP0 sets the default parameter vector. Defaults to all ones.
func WithP0(p0 ...float64) Option { return func(o *options) { o.p0 = p0 } }

// WithKind tags the parametrization.
func WithKind(k ParamKind) Option { return func(o *options) { o.kind = k } }

// WithRank records an expected-rank hint for the sensitivity matrix.
func WithRank(r int) Option { return func(o *options) { o.rank = r } }

// WithPrior attaches a prior over parameters.
func WithPrior(prior PriorFunc) Option { return func(o *options) { o.prior = prior } }

// WithRelStep overrides the relative step of the finite-difference
// backfill. Defaults to DefaultRelStep.
func WithRelStep(rdelta float64) Option { return func(o *options) { o.relStep = rdelta } }

// New wraps f in a Prediction. Either ids or dimensions must be provided
// for both parameters and outputs.
func New(f Func, opts ...Option) (*Prediction, error) {
	o := options{relStep: DefaultRelStep}
	for _, opt := range opts {
		opt(&o)
	}

	if o.pids == nil && o.pdim == 0 {
		return nil, ErrNoParamIDs
	}
	if o.yids == nil && o.ydim == 0 {
		return nil, ErrNoOutputIDs
	}
	if o.pids == nil {
		o.pids = defaultIDs("p", o.pdim)
	}
	if o.yids == nil {
		o.yids = defaultIDs("y", o.ydim)
	}
	if err := checkUnique("parameter", o.pids); err != nil {
		return nil, err
	}
	if err := checkUnique("output", o.yids); err != nil {
		return nil, err
	}

	if o.p0 == nil {
		o.p0 = make([]float64, len(o.pids))
		for i := range o.p0 {
			o.p0[i] = 1
		}
	}
	if len(o.p0) != len(o.pids) {
		return nil, fmt.Errorf("%w: p0 has %d entries for %d parameters", ErrDimensionMismatch, len(o.p0), len(o.pids))
	}

	if o.df == nil {
		logger.Warn("jacobian not given; using finite difference",
			zap.Strings("pids", o.pids), zap.Float64("rdelta", o.relStep))
		o.df = FiniteDifference(f, len(o.pids), o.relStep)
	}

	return &Prediction{
		f:     f,
		df:    o.df,
		pids:  append([]string(nil), o.pids...),
		yids:  append([]string(nil), o.yids...),
		p0:    append([]float64(nil), o.p0...),
		kind:  o.kind,
		rank:  o.rank,
		prior: o.prior,
	}, nil
}

func defaultIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	return ids
}

func checkUnique(what string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s id %q", ErrDuplicateID, what, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// PIDs returns the ordered parameter ids.
func (pr *Prediction) PIDs() []string { return append([]string(nil), pr.pids...) }

// YIDs returns the ordered output ids.
func (pr *Prediction) YIDs() []string { return append([]string(nil), pr.yids...) }

// PDim is the number of parameters.
func (pr *Prediction) PDim() int { return len(pr.pids) }

// YDim is the number of outputs.
func (pr *Prediction) YDim() int { return len(pr.yids) }

// P0 returns the default parameter vector as a labeled series.
func (pr *Prediction) P0() series.Series { return series.New(pr.pids, pr.p0) }

// Kind reports the parametrization tag.
func (pr *Prediction) Kind() ParamKind { return pr.kind }

// Rank reports the rank hint; 0 means unknown.
func (pr *Prediction) Rank() int { return pr.rank }

// Prior returns the attached prior, or nil.
func (pr *Prediction) Prior() PriorFunc { return pr.prior }

// params resolves nil to the default parameter vector.
func (pr *Prediction) params(p []float64) ([]float64, error) {
	if p == nil {
		return pr.p0, nil
	}
	if len(p) != len(pr.pids) {
		return nil, fmt.Errorf("%w: %d parameters for %d ids", ErrDimensionMismatch, len(p), len(pr.pids))
	}
	return p, nil
}

// Eval evaluates the prediction. A nil p evaluates at the default
// parameter vector.
func (pr *Prediction) Eval(p []float64) (series.Series, error) {
	p, err := pr.params(p)
	if err != nil {
		return series.Series{}, err
	}
	y := pr.f(p)
	if len(y) != len(pr.yids) {
		return series.Series{}, fmt.Errorf("%w: function returned %d outputs for %d ids", ErrDimensionMismatch, len(y), len(pr.yids))
	}
	return series.New(pr.yids, y), nil
}

// Jacobian evaluates the sensitivity matrix, labeled with output ids on
// rows and parameter ids on columns. A nil p uses the default vector.
func (pr *Prediction) Jacobian(p []float64) (series.Matrix, error) {
	p, err := pr.params(p)
	if err != nil {
		return series.Matrix{}, err
	}
	jac := pr.df(p)
	r, c := jac.Dims()
	if r != len(pr.yids) || c != len(pr.pids) {
		return series.Matrix{}, fmt.Errorf("%w: jacobian is %dx%d for %d outputs, %d parameters", ErrDimensionMismatch, r, c, len(pr.yids), len(pr.pids))
	}
	return series.NewMatrix(pr.yids, pr.pids, jac), nil
}

// RawFunc exposes the wrapped function for composition.
func (pr *Prediction) RawFunc() Func { return pr.f }

// RawJacobian exposes the wrapped Jacobian function for composition.
func (pr *Prediction) RawJacobian() JacFunc { return pr.df }

// Concat combines two predictions over the same parameter space into one
// whose outputs are the concatenation of both. Output ids may overlap,
// with a warning.
func (pr *Prediction) Concat(other *Prediction) (*Prediction, error) {
	if !equalStrings(pr.pids, other.pids) || !equalFloats(pr.p0, other.p0) {
		return nil, ErrParamMismatch
	}
	if pr.kind != other.kind {
		return nil, fmt.Errorf("%w: %s vs %s parametrization", ErrParamMismatch, pr.kind, other.kind)
	}
	if dups := intersect(pr.yids, other.yids); len(dups) > 0 {
		logger.Warn("concatenated predictions have overlapping output ids", zap.Strings("yids", dups))
	}

	a, b := pr, other
	f := func(p []float64) []float64 {
		ya := a.f(p)
		yb := b.f(p)
		out := make([]float64, 0, len(ya)+len(yb))
		out = append(out, ya...)
		return append(out, yb...)
	}
	df := func(p []float64) *mat.Dense {
		ja := a.df(p)
		jb := b.df(p)
		var stacked mat.Dense
		stacked.Stack(ja, jb)
		return &stacked
	}

	yids := make([]string, 0, len(pr.yids)+len(other.yids))
	yids = append(yids, pr.yids...)
	yids = append(yids, other.yids...)

	// Built directly instead of through New: overlapping output ids are
	// allowed here (with the warning above), and New would reject them.
	return &Prediction{
		f:    f,
		df:   df,
		pids: append([]string(nil), pr.pids...),
		yids: yids,
		p0:   append([]float64(nil), pr.p0...),
		kind: pr.kind,
	}, nil
}

// InLogParams reparametrizes to log-parameter space. The chain rule gives
// d y/d log p = (d y/d p) * p. Only bare predictions can be
// reparametrized, and all defaults must be positive.
func (pr *Prediction) InLogParams() (*Prediction, error) {
	if pr.kind != Bare {
		return nil, ErrNotBare
	}
	for i, v := range pr.p0 {
		if v <= 0 {
			return nil, fmt.Errorf("%w: %s = %v", ErrLogOfNonPositive, pr.pids[i], v)
		}
	}

	src := pr
	fLog := func(logp []float64) []float64 {
		return src.f(expSlice(logp))
	}
	dfLog := func(logp []float64) *mat.Dense {
		p := expSlice(logp)
		jac := src.df(p)
		r, c := jac.Dims()
		scaled := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				scaled.Set(i, j, jac.At(i, j)*p[j])
			}
		}
		return scaled
	}

	logPIDs := make([]string, len(pr.pids))
	logP0 := make([]float64, len(pr.p0))
	for i, pid := range pr.pids {
		logPIDs[i] = "log_" + pid
		logP0[i] = math.Log(pr.p0[i])
	}

	return New(fLog,
		WithJacobian(dfLog),
		WithPIDs(logPIDs...),
		WithYIDs(pr.yids...),
		WithP0(logP0...),
		WithKind(LogParams),
	)
}

// Spectrum returns the singular values of the sensitivity matrix at p in
// descending order. A nil p uses the default vector.
func (pr *Prediction) Spectrum(p []float64) ([]float64, error) {
	p, err := pr.params(p)
	if err != nil {
		return nil, err
	}
	return analysis.Spectrum(pr.df(p))
}

func expSlice(logp []float64) []float64 {
	p := make([]float64, len(logp))
	for i, v := range logp {
		p[i] = math.Exp(v)
	}
	return p
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
