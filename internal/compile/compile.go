// Package compile turns arithmetic expression strings into Predictions:
// a vectorized function over named parameters plus a Jacobian obtained by
// symbolic differentiation.
package compile

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/predlab/internal/predict"
	"github.com/san-kum/predlab/internal/symbol"
)

// Options configures compilation.
type Options struct {
	// PIDs are the parameter names, in call order. Required.
	PIDs []string
	// UIDs name the input variables substituted from Us rows.
	UIDs []string
	// Us is the list of input rows; each row has one value per UID.
	Us [][]float64
	// Consts maps constant names to values, substituted before anything
	// else.
	Consts map[string]float64
	// P0 is the default parameter vector; all ones when empty.
	P0 []float64
	// YIDs override the generated output ids.
	YIDs []string
}

// FromString compiles a single expression over parameters and input
// variables, evaluated at every input row: one observable per row.
//
//	pred, err := compile.FromString("V*x/(K+x)", compile.Options{
//		PIDs: []string{"V", "K"},
//		UIDs: []string{"x"},
//		Us:   [][]float64{{1}, {2}, {3}},
//	})
func FromString(funcstr string, opts Options) (*predict.Prediction, error) {
	root, err := parseWithConsts(funcstr, opts.Consts)
	if err != nil {
		return nil, err
	}

	if len(opts.Us) == 0 {
		return nil, fmt.Errorf("compile: %q: at least one input row required", funcstr)
	}
	yexprs := make([]symbol.Expr, 0, len(opts.Us))
	yids := make([]string, 0, len(opts.Us))
	for _, u := range opts.Us {
		e, err := subRow(root, opts.UIDs, u)
		if err != nil {
			return nil, fmt.Errorf("compile: %q: %w", funcstr, err)
		}
		yexprs = append(yexprs, e)
		yids = append(yids, fmt.Sprintf("u=%v", u))
	}
	if opts.YIDs != nil {
		yids = opts.YIDs
	}
	return build(yexprs, yids, opts)
}

// FromList compiles one expression per observable. When input rows are
// given, every expression is expanded over every row (expression-major
// order).
func FromList(funcstrs []string, opts Options) (*predict.Prediction, error) {
	var yexprs []symbol.Expr
	var yids []string
	for i, fs := range funcstrs {
		root, err := parseWithConsts(fs, opts.Consts)
		if err != nil {
			return nil, err
		}
		if len(opts.Us) == 0 {
			yexprs = append(yexprs, root)
			yids = append(yids, fmt.Sprintf("y%d", i+1))
			continue
		}
		for _, u := range opts.Us {
			e, err := subRow(root, opts.UIDs, u)
			if err != nil {
				return nil, fmt.Errorf("compile: %q: %w", fs, err)
			}
			yexprs = append(yexprs, e)
			yids = append(yids, fmt.Sprintf("y%d, u=%v", i+1, u))
		}
	}
	if opts.YIDs != nil {
		yids = opts.YIDs
	}
	return build(yexprs, yids, opts)
}

func parseWithConsts(funcstr string, consts map[string]float64) (symbol.Expr, error) {
	e, err := symbol.Parse(funcstr)
	if err != nil {
		return nil, err
	}
	for name, v := range consts {
		e = e.Sub(name, symbol.Number(v))
	}
	return e, nil
}

func subRow(e symbol.Expr, uids []string, u []float64) (symbol.Expr, error) {
	if len(u) != len(uids) {
		return nil, fmt.Errorf("input row %v has %d values for %d input variables", u, len(u), len(uids))
	}
	for i, uid := range uids {
		e = e.Sub(uid, symbol.Number(u[i]))
	}
	return e, nil
}

// build validates free symbols, differentiates, and wraps everything in a
// Prediction.
func build(yexprs []symbol.Expr, yids []string, opts Options) (*predict.Prediction, error) {
	if len(opts.PIDs) == 0 {
		return nil, predict.ErrNoParamIDs
	}
	allowed := make(map[string]struct{}, len(opts.PIDs))
	for _, pid := range opts.PIDs {
		allowed[pid] = struct{}{}
	}
	for _, e := range yexprs {
		for _, v := range symbol.Vars(e) {
			if _, ok := allowed[v]; !ok {
				return nil, fmt.Errorf("compile: %s: unbound symbol %q (not a parameter, input variable, or constant)", e, v)
			}
		}
	}

	jexprs := make([][]symbol.Expr, len(yexprs))
	for i, e := range yexprs {
		row := make([]symbol.Expr, len(opts.PIDs))
		for j, pid := range opts.PIDs {
			row[j] = e.Diff(pid).Simplify()
		}
		jexprs[i] = row
	}

	pg := &program{pids: opts.PIDs, yexprs: yexprs, jexprs: jexprs}

	newOpts := []predict.Option{
		predict.WithJacobian(pg.jacobian),
		predict.WithPIDs(opts.PIDs...),
		predict.WithYIDs(yids...),
	}
	if opts.P0 != nil {
		newOpts = append(newOpts, predict.WithP0(opts.P0...))
	}
	return predict.New(pg.eval, newOpts...)
}

// program is a compiled expression list; eval and jacobian close over it.
type program struct {
	pids   []string
	yexprs []symbol.Expr
	jexprs [][]symbol.Expr
}

func (pg *program) env(p []float64) map[string]float64 {
	env := make(map[string]float64, len(pg.pids))
	for i, pid := range pg.pids {
		env[pid] = p[i]
	}
	return env
}

func (pg *program) eval(p []float64) []float64 {
	env := pg.env(p)
	out := make([]float64, len(pg.yexprs))
	for i, e := range pg.yexprs {
		v, err := e.Eval(env)
		if err != nil {
			// Free symbols were validated at compile time.
			panic(fmt.Sprintf("compile: eval %s: %v", e, err))
		}
		out[i] = v
	}
	return out
}

func (pg *program) jacobian(p []float64) *mat.Dense {
	env := pg.env(p)
	jac := mat.NewDense(len(pg.jexprs), len(pg.pids), nil)
	for i, row := range pg.jexprs {
		for j, e := range row {
			v, err := e.Eval(env)
			if err != nil {
				panic(fmt.Sprintf("compile: eval %s: %v", e, err))
			}
			jac.Set(i, j, v)
		}
	}
	return jac
}
