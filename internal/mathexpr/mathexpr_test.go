package mathexpr

import (
	"math"
	"testing"
)

func approx(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func evalReal(t *testing.T, e *Evaluator, input string) float64 {
	t.Helper()
	v, _, err := e.Eval(input)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", input, err)
	}
	if imag(v) != 0 {
		t.Fatalf("Eval(%q) = %v, expected a real result", input, v)
	}
	return real(v)
}

func TestArithmetic(t *testing.T) {
	e := New()
	for _, c := range []struct {
		input string
		want  float64
	}{
		{"2+3", 5},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10/4", 2.5},
		{"2^10", 1024},
		{"2^3^2", 512}, // right associative
		{"-2^2", -4},   // unary minus binds looser than ^
		{"2^-2", 0.25},
		{"5!", 120},
		{"0!", 1},
		{"3!!", 720},
		{"50/100", 0.5},
		{"1.5e3", 1500},
		{"2e-2", 0.02},
	} {
		if got := evalReal(t, e, c.input); !approx(got, c.want, 1e-12) {
			t.Errorf("Eval(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestConstants(t *testing.T) {
	e := New()
	if got := evalReal(t, e, "pi"); !approx(got, math.Pi, 0) {
		t.Errorf("pi = %v", got)
	}
	if got := evalReal(t, e, "2*e"); !approx(got, 2*math.E, 1e-12) {
		t.Errorf("2*e = %v", got)
	}
	v, _, err := e.Eval("i*i")
	if err != nil {
		t.Fatalf("i*i failed: %v", err)
	}
	if real(v) != -1 || imag(v) != 0 {
		t.Errorf("i*i = %v, want -1", v)
	}
}

func TestComplexResults(t *testing.T) {
	e := New()
	v, _, err := e.Eval("sqrt(-4)")
	if err != nil {
		t.Fatalf("sqrt(-4) failed: %v", err)
	}
	if !approx(real(v), 0, 1e-12) || !approx(imag(v), 2, 1e-12) {
		t.Errorf("sqrt(-4) = %v, want 2i", v)
	}
	if math.Signbit(imag(v)) {
		t.Errorf("sqrt(-4) = %v, imaginary part on the wrong branch", v)
	}
}

func TestUnaryNegationKeepsPositiveZeroImag(t *testing.T) {
	e := New()
	for _, input := range []string{"-4", "-(4)", "--4", "sqrt(-(2+2))"} {
		v, _, err := e.Eval(input)
		if err != nil {
			t.Fatalf("Eval(%q) failed: %v", input, err)
		}
		if imag(v) == 0 && math.Signbit(imag(v)) {
			t.Errorf("Eval(%q) = %v with a negative-zero imaginary part", input, v)
		}
	}
}

func TestFunctions(t *testing.T) {
	e := New()
	if got := evalReal(t, e, "sqrt(16)"); !approx(got, 4, 1e-12) {
		t.Errorf("sqrt(16) = %v", got)
	}
	if got := evalReal(t, e, "ln(e)"); !approx(got, 1, 1e-12) {
		t.Errorf("ln(e) = %v", got)
	}
	if got := evalReal(t, e, "log(1000)"); !approx(got, 3, 1e-9) {
		t.Errorf("log(1000) = %v", got)
	}
	if got := evalReal(t, e, "abs(-7)"); !approx(got, 7, 0) {
		t.Errorf("abs(-7) = %v", got)
	}
	if got := evalReal(t, e, "exp(0)"); !approx(got, 1, 0) {
		t.Errorf("exp(0) = %v", got)
	}
}

func TestDegreesDefault(t *testing.T) {
	e := New()
	if e.AngleUnit() != Degrees {
		t.Fatalf("default unit = %v, want deg", e.AngleUnit())
	}
	if got := evalReal(t, e, "sin(90)"); !approx(got, 1, 1e-12) {
		t.Errorf("sin(90 deg) = %v, want 1", got)
	}
	if got := evalReal(t, e, "asin(1)"); !approx(got, 90, 1e-9) {
		t.Errorf("asin(1) in deg = %v, want 90", got)
	}
}

func TestRadians(t *testing.T) {
	e := New()
	e.SetAngleUnit(Radians)
	if got := evalReal(t, e, "sin(pi/2)"); !approx(got, 1, 1e-12) {
		t.Errorf("sin(pi/2 rad) = %v, want 1", got)
	}
	if got := evalReal(t, e, "atan(1)"); !approx(got, math.Pi/4, 1e-12) {
		t.Errorf("atan(1) in rad = %v", got)
	}
}

func TestGradians(t *testing.T) {
	e := New()
	e.SetAngleUnit(Gradians)
	if got := evalReal(t, e, "sin(100)"); !approx(got, 1, 1e-12) {
		t.Errorf("sin(100 grad) = %v, want 1", got)
	}
}

// Re-applying a unit must always derive from the base functions, never wrap
// an already wrapped table.
func TestReconfigureIdempotent(t *testing.T) {
	e := New()
	e.SetAngleUnit(Radians)
	e.SetAngleUnit(Degrees)
	e.SetAngleUnit(Degrees)
	once := New()

	for _, input := range []string{"sin(30)", "cos(60)", "atan(1)"} {
		a := evalReal(t, e, input)
		b := evalReal(t, once, input)
		if a != b {
			t.Errorf("Eval(%q) after repeated reconfig = %v, single config = %v", input, a, b)
		}
	}
}

func TestParseErrors(t *testing.T) {
	e := New()
	for _, input := range []string{"", "2+", "((2)", "2)", "foo(2)", "bar", "2..5", "@"} {
		if _, _, err := e.Eval(input); err == nil {
			t.Errorf("Eval(%q) succeeded, expected error", input)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	e := New()
	for _, input := range []string{"2.5!", "(-1)!", "i!", "ln(0)"} {
		if _, _, err := e.Eval(input); err == nil {
			t.Errorf("Eval(%q) succeeded, expected error", input)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	e := New()
	v, _, err := e.Eval("1/0")
	if err != nil {
		t.Fatalf("1/0 failed: %v", err)
	}
	if !math.IsInf(real(v), 1) {
		t.Errorf("1/0 = %v, want +Inf", v)
	}
	v, _, err = e.Eval("-1/0")
	if err != nil {
		t.Fatalf("-1/0 failed: %v", err)
	}
	if !math.IsInf(real(v), -1) {
		t.Errorf("-1/0 = %v, want -Inf", v)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	for _, input := range []string{"2+3", "(2+3)*4", "sqrt(16)", "-2^2", "5!"} {
		n, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if got := n.String(); got != input {
			t.Errorf("Parse(%q).String() = %q", input, got)
		}
	}
}

func TestLaTeX(t *testing.T) {
	for _, c := range []struct {
		input string
		want  string
	}{
		{"1/2", `\frac{1}{2}`},
		{"2*3", `2\cdot 3`},
		{"2^10", `{2}^{10}`},
		{"sin(90)", `\sin\left(90\right)`},
		{"sqrt(2)", `\sqrt{2}`},
		{"abs(-3)", `\left|-3\right|`},
		{"(2+3)*4", `\left(2+3\right)\cdot 4`},
		{"pi", `\pi`},
		{"asin(1)", `\arcsin\left(1\right)`},
		{"log(100)", `\log_{10}\left(100\right)`},
	} {
		n, err := Parse(c.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", c.input, err)
		}
		if got := LaTeX(n); got != c.want {
			t.Errorf("LaTeX(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}
