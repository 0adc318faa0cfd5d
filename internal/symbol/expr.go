package symbol

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Expr is a symbolic arithmetic expression. Implementations are immutable;
// every operation returns a new expression.
type Expr interface {
	// Simplify returns an equivalent expression with constants folded and
	// identities removed. Output ordering is deterministic.
	Simplify() Expr
	// Sub replaces every occurrence of the named symbol with val.
	Sub(name string, val Expr) Expr
	// Diff returns the partial derivative with respect to the named symbol.
	Diff(name string) Expr
	// Eval evaluates the expression with symbol values taken from env.
	Eval(env map[string]float64) (float64, error)
	String() string

	collectVars(out map[string]struct{})
}

// Vars returns the free symbols of e in sorted order.
func Vars(e Expr) []string {
	set := map[string]struct{}{}
	e.collectVars(set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Num is a floating-point constant.
type Num struct{ v float64 }

// Number wraps a float64 constant.
func Number(v float64) Num { return Num{v: v} }

func (n Num) Simplify() Expr          { return n }
func (n Num) Sub(string, Expr) Expr   { return n }
func (n Num) Diff(string) Expr        { return Num{} }
func (n Num) Value() float64          { return n.v }
func (n Num) collectVars(map[string]struct{}) {}

func (n Num) Eval(map[string]float64) (float64, error) { return n.v, nil }

func (n Num) String() string {
	return strconv.FormatFloat(n.v, 'g', -1, 64)
}

// Sym is a named symbol (a parameter or input variable).
type Sym struct{ name string }

// Symbol creates a named symbol.
func Symbol(name string) Sym { return Sym{name: name} }

func (s Sym) Simplify() Expr { return s }
func (s Sym) Name() string   { return s.name }
func (s Sym) String() string { return s.name }

func (s Sym) Sub(name string, val Expr) Expr {
	if s.name == name {
		return val
	}
	return s
}

func (s Sym) Diff(name string) Expr {
	if s.name == name {
		return Number(1)
	}
	return Number(0)
}

func (s Sym) Eval(env map[string]float64) (float64, error) {
	if v, ok := env[s.name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("symbol: unbound symbol %q", s.name)
}

func (s Sym) collectVars(out map[string]struct{}) { out[s.name] = struct{}{} }

// Add is a sum of terms.
type Add struct{ terms []Expr }

// Sum builds the simplified sum of terms.
func Sum(terms ...Expr) Expr { return Add{terms: terms}.Simplify() }

func (a Add) Terms() []Expr { return a.terms }

func (a Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		switch s := t.Simplify().(type) {
		case Add:
			flat = append(flat, s.terms...)
		default:
			flat = append(flat, s)
		}
	}
	constant := 0.0
	symCoeff := map[string]float64{}
	var symOrder []string
	var rest []Expr
	for _, t := range flat {
		switch v := t.(type) {
		case Num:
			constant += v.v
		case Sym:
			if _, seen := symCoeff[v.name]; !seen {
				symOrder = append(symOrder, v.name)
			}
			symCoeff[v.name]++
		default:
			rest = append(rest, t)
		}
	}
	sort.Strings(symOrder)
	out := make([]Expr, 0, len(symOrder)+len(rest)+1)
	for _, name := range symOrder {
		c := symCoeff[name]
		switch c {
		case 0:
		case 1:
			out = append(out, Symbol(name))
		default:
			out = append(out, Product(Number(c), Symbol(name)))
		}
	}
	out = append(out, rest...)
	if constant != 0 {
		out = append(out, Number(constant))
	}
	switch len(out) {
	case 0:
		return Number(0)
	case 1:
		return out[0]
	}
	return Add{terms: out}
}

func (a Add) Sub(name string, val Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, val)
	}
	return Sum(terms...)
}

func (a Add) Diff(name string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(name)
	}
	return Sum(terms...)
}

func (a Add) Eval(env map[string]float64) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return acc, nil
}

func (a Add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a Add) collectVars(out map[string]struct{}) {
	for _, t := range a.terms {
		t.collectVars(out)
	}
}

// Mul is a product of factors.
type Mul struct{ factors []Expr }

// Product builds the simplified product of factors.
func Product(factors ...Expr) Expr { return Mul{factors: factors}.Simplify() }

func (m Mul) Factors() []Expr { return m.factors }

func (m Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		switch s := f.Simplify().(type) {
		case Mul:
			flat = append(flat, s.factors...)
		default:
			flat = append(flat, s)
		}
	}
	coeff := 1.0
	var rest []Expr
	for _, f := range flat {
		if n, ok := f.(Num); ok {
			coeff *= n.v
		} else {
			rest = append(rest, f)
		}
	}
	if coeff == 0 {
		return Number(0)
	}
	if len(rest) == 0 {
		return Number(coeff)
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })
	if coeff == 1 {
		if len(rest) == 1 {
			return rest[0]
		}
		return Mul{factors: rest}
	}
	return Mul{factors: append([]Expr{Number(coeff)}, rest...)}
}

func (m Mul) Sub(name string, val Expr) Expr {
	factors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		factors[i] = f.Sub(name, val)
	}
	return Product(factors...)
}

// Diff applies the product rule: sum over i of f_i' * prod_{j!=i} f_j.
func (m Mul) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		part := make([]Expr, 0, len(m.factors))
		part = append(part, fi.Diff(name))
		for j, fj := range m.factors {
			if j != i {
				part = append(part, fj)
			}
		}
		terms[i] = Product(part...)
	}
	return Sum(terms...)
}

func (m Mul) Eval(env map[string]float64) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return acc, nil
}

func (m Mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, ok := f.(Add); ok {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m Mul) collectVars(out map[string]struct{}) {
	for _, f := range m.factors {
		f.collectVars(out)
	}
}

// Pow is base raised to an exponent.
type Pow struct{ base, exp Expr }

// Power builds the simplified power base^exp.
func Power(base, exp Expr) Expr { return Pow{base: base, exp: exp}.Simplify() }

func (p Pow) Base() Expr     { return p.base }
func (p Pow) Exponent() Expr { return p.exp }

func (p Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	if e, ok := exp.(Num); ok {
		if e.v == 0 {
			return Number(1)
		}
		if e.v == 1 {
			return base
		}
		if b, ok2 := base.(Num); ok2 {
			return Number(math.Pow(b.v, e.v))
		}
	}
	if b, ok := base.(Num); ok && b.v == 1 {
		return Number(1)
	}
	if inner, ok := base.(Pow); ok {
		return Power(inner.base, Product(inner.exp, exp))
	}
	return Pow{base: base, exp: exp}
}

func (p Pow) Sub(name string, val Expr) Expr {
	return Power(p.base.Sub(name, val), p.exp.Sub(name, val))
}

// Diff handles the three power cases: constant exponent, constant base,
// and the general b^e with both sides variable.
func (p Pow) Diff(name string) Expr {
	db := p.base.Diff(name)
	de := p.exp.Diff(name)
	if _, ok := p.exp.(Num); ok {
		return Product(p.exp, Power(p.base, Sum(p.exp, Number(-1))), db)
	}
	if _, ok := p.base.(Num); ok {
		return Product(Power(p.base, p.exp), Fn("log", p.base), de)
	}
	logPart := Product(de, Fn("log", p.base))
	ratioPart := Product(p.exp, db, Power(p.base, Number(-1)))
	return Product(Power(p.base, p.exp), Sum(logPart, ratioPart))
}

func (p Pow) Eval(env map[string]float64) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, e), nil
}

func (p Pow) String() string {
	bs := p.base.String()
	switch p.base.(type) {
	case Add, Mul, Pow:
		bs = "(" + bs + ")"
	}
	es := p.exp.String()
	switch p.exp.(type) {
	case Add, Mul, Pow:
		es = "(" + es + ")"
	}
	return bs + "^" + es
}

func (p Pow) collectVars(out map[string]struct{}) {
	p.base.collectVars(out)
	p.exp.collectVars(out)
}

// Call applies a named math function to an argument.
type Call struct {
	name string
	arg  Expr
}

// funcs maps recognized function names to their numeric implementations.
// "arctan" and "ln" are aliases kept for expression sources that use them.
var funcs = map[string]func(float64) float64{
	"sqrt":   math.Sqrt,
	"exp":    math.Exp,
	"log":    math.Log,
	"ln":     math.Log,
	"sin":    math.Sin,
	"cos":    math.Cos,
	"tan":    math.Tan,
	"atan":   math.Atan,
	"arctan": math.Atan,
	"abs":    math.Abs,
	"sinh":   math.Sinh,
	"cosh":   math.Cosh,
	"tanh":   math.Tanh,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
}

// KnownFunc reports whether name is a recognized function name.
func KnownFunc(name string) bool {
	_, ok := funcs[name]
	return ok
}

// Fn builds the simplified application of a recognized function.
// Unrecognized names panic; the parser screens them out first.
func Fn(name string, arg Expr) Expr {
	if !KnownFunc(name) {
		panic("symbol: unknown function " + name)
	}
	return Call{name: name, arg: arg}.Simplify()
}

func (c Call) FuncName() string { return c.name }
func (c Call) Arg() Expr        { return c.arg }

func (c Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(Num); ok {
		return Number(funcs[c.name](n.v))
	}
	switch c.name {
	case "log", "ln":
		if inner, ok := arg.(Call); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if inner, ok := arg.(Call); ok && (inner.name == "log" || inner.name == "ln") {
			return inner.arg
		}
	}
	return Call{name: c.name, arg: arg}
}

func (c Call) Sub(name string, val Expr) Expr {
	return Call{name: c.name, arg: c.arg.Sub(name, val)}.Simplify()
}

func (c Call) Diff(name string) Expr {
	du := c.arg.Diff(name)
	var outer Expr
	switch c.name {
	case "sqrt":
		outer = Product(Number(0.5), Power(c.arg, Number(-0.5)))
	case "exp":
		outer = Fn("exp", c.arg)
	case "log", "ln":
		outer = Power(c.arg, Number(-1))
	case "sin":
		outer = Fn("cos", c.arg)
	case "cos":
		outer = Product(Number(-1), Fn("sin", c.arg))
	case "tan":
		outer = Sum(Number(1), Power(Fn("tan", c.arg), Number(2)))
	case "atan", "arctan":
		outer = Power(Sum(Number(1), Power(c.arg, Number(2))), Number(-1))
	case "sinh":
		outer = Fn("cosh", c.arg)
	case "cosh":
		outer = Fn("sinh", c.arg)
	case "tanh":
		outer = Sum(Number(1), Product(Number(-1), Power(Fn("tanh", c.arg), Number(2))))
	case "abs":
		outer = Fn("sign", c.arg)
	case "sign":
		outer = Number(0)
	default:
		panic("symbol: no derivative rule for " + c.name)
	}
	return Product(outer, du)
}

func (c Call) Eval(env map[string]float64) (float64, error) {
	v, err := c.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	return funcs[c.name](v), nil
}

func (c Call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c Call) collectVars(out map[string]struct{}) { c.arg.collectVars(out) }
