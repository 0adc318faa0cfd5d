package symbol

import (
	"math"
	"testing"
)

func evalAt(t *testing.T, e Expr, env map[string]float64) float64 {
	t.Helper()
	v, err := e.Eval(env)
	if err != nil {
		t.Fatalf("eval %s: %v", e, err)
	}
	return v
}

func TestParseEval(t *testing.T) {
	cases := []struct {
		src  string
		env  map[string]float64
		want float64
	}{
		{"1 + 2*3", nil, 7},
		{"2^3", nil, 8},
		{"2**3", nil, 8},
		{"-x", map[string]float64{"x": 4}, -4},
		{"V*x/(K+x)", map[string]float64{"V": 1, "K": 1, "x": 2}, 2.0 / 3.0},
		{"exp(0) + log(1)", nil, 1},
		{"sqrt(x)", map[string]float64{"x": 9}, 3},
		{"sin(pi)", nil, math.Sin(math.Pi)},
		{"2*pi", nil, 2 * math.Pi},
		{"1e-3 * x", map[string]float64{"x": 2000}, 2},
		{"atan(1)", nil, math.Pi / 4},
		{"tanh(0.5)", nil, math.Tanh(0.5)},
	}
	for _, c := range cases {
		e, err := Parse(c.src)
		if err != nil {
			t.Fatalf("parse %q: %v", c.src, err)
		}
		got := evalAt(t, e, c.env)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%q = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"1 +",
		"(x",
		"foo(x)",
		"x $ y",
		"2..5",
		"* x",
	}
	for _, src := range bad {
		if _, err := Parse(src); err == nil {
			t.Errorf("parse %q: expected error", src)
		}
	}
}

func TestDiffBasics(t *testing.T) {
	env := map[string]float64{"x": 1.7}
	cases := []struct {
		src  string
		want float64
	}{
		{"x^2", 2 * 1.7},
		{"3*x + 5", 3},
		{"exp(x)", math.Exp(1.7)},
		{"log(x)", 1 / 1.7},
		{"sin(x)", math.Cos(1.7)},
		{"cos(x)", -math.Sin(1.7)},
		{"sqrt(x)", 0.5 / math.Sqrt(1.7)},
		{"1/x", -1 / (1.7 * 1.7)},
		{"x^x", math.Pow(1.7, 1.7) * (math.Log(1.7) + 1)},
		{"2^x", math.Pow(2, 1.7) * math.Log(2)},
	}
	for _, c := range cases {
		e := MustParse(c.src)
		got := evalAt(t, e.Diff("x"), env)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("d/dx %q = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestDiffMichaelisMenten(t *testing.T) {
	e := MustParse("V*x/(K+x)")
	env := map[string]float64{"V": 2, "K": 3, "x": 1}

	dV := evalAt(t, e.Diff("V"), env)
	if want := 1.0 / 4.0; math.Abs(dV-want) > 1e-12 {
		t.Errorf("d/dV = %v, want %v", dV, want)
	}
	dK := evalAt(t, e.Diff("K"), env)
	if want := -2.0 / 16.0; math.Abs(dK-want) > 1e-12 {
		t.Errorf("d/dK = %v, want %v", dK, want)
	}
}

func TestDiffUnrelatedSymbol(t *testing.T) {
	e := MustParse("a*b + exp(c)")
	d := e.Diff("z").Simplify()
	if n, ok := d.(Num); !ok || n.Value() != 0 {
		t.Errorf("d/dz = %s, want 0", d)
	}
}

func TestSub(t *testing.T) {
	e := MustParse("V*x/(K+x)")
	at := e.Sub("x", Number(2))
	got := evalAt(t, at, map[string]float64{"V": 1, "K": 1})
	if math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("sub x=2: got %v, want %v", got, 2.0/3.0)
	}
	if vars := Vars(at); len(vars) != 2 || vars[0] != "K" || vars[1] != "V" {
		t.Errorf("vars after sub = %v, want [K V]", vars)
	}
}

func TestSimplifyIdentities(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"x + 0", "x"},
		{"x * 1", "x"},
		{"x * 0", "0"},
		{"x ^ 1", "x"},
		{"x ^ 0", "1"},
		{"x + x", "2*x"},
		{"log(exp(x))", "x"},
		{"exp(log(x))", "x"},
		{"2 + 3 + x", "x + 5"},
	}
	for _, c := range cases {
		got := MustParse(c.src).String()
		if got != c.want {
			t.Errorf("simplify %q = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestVars(t *testing.T) {
	e := MustParse("k1*exp(-k2*t) + k1")
	got := Vars(e)
	want := []string{"k1", "k2", "t"}
	if len(got) != len(want) {
		t.Fatalf("vars = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vars = %v, want %v", got, want)
		}
	}
}

func TestEvalUnbound(t *testing.T) {
	e := MustParse("a + b")
	if _, err := e.Eval(map[string]float64{"a": 1}); err == nil {
		t.Error("expected unbound symbol error")
	}
}
