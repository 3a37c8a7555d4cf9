// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package mathexpr evaluates calculator expressions over complex numbers.
package mathexpr

import (
	"fmt"
	"math"
	"math/cmplx"
)

// AngleUnit selects the interpretation of trigonometric arguments and
// inverse-trigonometric results.
type AngleUnit int

const (
	Degrees AngleUnit = iota
	Radians
	Gradians
)

// String returns the wire name of the unit.
func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "deg"
	case Radians:
		return "rad"
	case Gradians:
		return "grad"
	}
	return "unknown"
}

// ParseAngleUnit parses a wire name into an AngleUnit.
func ParseAngleUnit(s string) (AngleUnit, bool) {
	switch s {
	case "deg":
		return Degrees, true
	case "rad":
		return Radians, true
	case "grad":
		return Gradians, true
	}
	return Degrees, false
}

// radiansPer returns how many radians one unit of u spans.
func radiansPer(u AngleUnit) float64 {
	switch u {
	case Degrees:
		return math.Pi / 180
	case Gradians:
		return math.Pi / 200
	default:
		return 1
	}
}

type mathFunc func(complex128) (complex128, error)

// baseFuncs is the unwrapped, radian-native function table. Angle
// reconfiguration always derives from this table, never from a previously
// wrapped one, so re-applying a unit is idempotent.
var baseFuncs = map[string]mathFunc{
	"sin":  func(z complex128) (complex128, error) { return cmplx.Sin(z), nil },
	"cos":  func(z complex128) (complex128, error) { return cmplx.Cos(z), nil },
	"tan":  func(z complex128) (complex128, error) { return cmplx.Tan(z), nil },
	"asin": func(z complex128) (complex128, error) { return cmplx.Asin(z), nil },
	"acos": func(z complex128) (complex128, error) { return cmplx.Acos(z), nil },
	"atan": func(z complex128) (complex128, error) { return cmplx.Atan(z), nil },
	"sqrt": func(z complex128) (complex128, error) { return cmplx.Sqrt(z), nil },
	"exp":  func(z complex128) (complex128, error) { return cmplx.Exp(z), nil },
	"abs":  func(z complex128) (complex128, error) { return complex(cmplx.Abs(z), 0), nil },
	"ln": func(z complex128) (complex128, error) {
		if z == 0 {
			return 0, fmt.Errorf("ln of zero")
		}
		return cmplx.Log(z), nil
	},
	"log": func(z complex128) (complex128, error) {
		if z == 0 {
			return 0, fmt.Errorf("log of zero")
		}
		return cmplx.Log(z) / complex(math.Log(10), 0), nil
	},
}

// trigNames and inverseTrigNames are the functions affected by the angle
// unit: direct trig converts its argument into radians, inverse trig
// converts its radian result back out.
var (
	trigNames        = []string{"sin", "cos", "tan"}
	inverseTrigNames = []string{"asin", "acos", "atan"}
)

// Evaluator evaluates parsed expressions against an angle-unit-wrapped
// function table.
type Evaluator struct {
	unit  AngleUnit
	funcs map[string]mathFunc
}

// New creates an evaluator configured for degrees.
func New() *Evaluator {
	e := &Evaluator{}
	e.SetAngleUnit(Degrees)
	return e
}

// AngleUnit returns the currently configured unit.
func (e *Evaluator) AngleUnit() AngleUnit {
	return e.unit
}

// SetAngleUnit rebuilds the function table for the given unit. The table is
// always rebuilt from the unwrapped base functions.
func (e *Evaluator) SetAngleUnit(u AngleUnit) {
	funcs := make(map[string]mathFunc, len(baseFuncs))
	for name, f := range baseFuncs {
		funcs[name] = f
	}

	if factor := radiansPer(u); factor != 1 {
		for _, name := range trigNames {
			base := baseFuncs[name]
			funcs[name] = func(z complex128) (complex128, error) {
				return base(z * complex(factor, 0))
			}
		}
		for _, name := range inverseTrigNames {
			base := baseFuncs[name]
			funcs[name] = func(z complex128) (complex128, error) {
				r, err := base(z)
				if err != nil {
					return 0, err
				}
				return r / complex(factor, 0), nil
			}
		}
	}

	e.unit = u
	e.funcs = funcs
}

// Eval parses and evaluates an expression, returning the value and the
// parsed tree (for LaTeX rendering and misfire comparison).
func (e *Evaluator) Eval(input string) (complex128, Node, error) {
	n, err := Parse(input)
	if err != nil {
		return 0, nil, err
	}
	v, err := e.evalNode(n)
	if err != nil {
		return 0, nil, err
	}
	return Chop(v), n, nil
}

func (e *Evaluator) evalNode(n Node) (complex128, error) {
	switch t := n.(type) {
	case NumberLit:
		return complex(t.Value, 0), nil

	case Constant:
		switch t.Name {
		case "pi":
			return complex(math.Pi, 0), nil
		case "e":
			return complex(math.E, 0), nil
		case "i":
			return complex(0, 1), nil
		}
		return 0, fmt.Errorf("unknown constant %q", t.Name)

	case Paren:
		return e.evalNode(t.Inner)

	case Unary:
		v, err := e.evalNode(t.Operand)
		if err != nil {
			return 0, err
		}
		v = -v
		// Negating a real value turns its +0 imaginary part into -0,
		// which lands sqrt and log on the wrong side of their branch
		// cuts. Restore the positive zero.
		if imag(v) == 0 {
			v = complex(real(v), 0)
		}
		return v, nil

	case Binary:
		l, err := e.evalNode(t.Left)
		if err != nil {
			return 0, err
		}
		r, err := e.evalNode(t.Right)
		if err != nil {
			return 0, err
		}
		switch t.Op {
		case '+':
			return l + r, nil
		case '-':
			return l - r, nil
		case '*':
			return l * r, nil
		case '/':
			if r == 0 {
				// Real division by zero is Infinity, matching the
				// display convention for overflowing results.
				if imag(l) == 0 {
					return complex(math.Inf(sign(real(l))), 0), nil
				}
				return 0, fmt.Errorf("division by zero")
			}
			return l / r, nil
		case '^':
			return pow(l, r), nil
		}
		return 0, fmt.Errorf("unknown operator %q", string(t.Op))

	case Factorial:
		v, err := e.evalNode(t.Operand)
		if err != nil {
			return 0, err
		}
		return factorial(v)

	case Call:
		f, ok := e.funcs[t.Name]
		if !ok {
			return 0, fmt.Errorf("unknown function %q", t.Name)
		}
		arg, err := e.evalNode(t.Arg)
		if err != nil {
			return 0, err
		}
		return f(arg)
	}

	return 0, fmt.Errorf("unknown node %T", n)
}

// pow avoids cmplx.Pow's branch-cut noise for the common real-base,
// integer-exponent case so 2^2 stays exactly 4.
func pow(base, exp complex128) complex128 {
	if imag(base) == 0 && imag(exp) == 0 {
		re, ee := real(base), real(exp)
		if ee == math.Trunc(ee) || re >= 0 {
			return complex(math.Pow(re, ee), 0)
		}
	}
	return cmplx.Pow(base, exp)
}

// factorial computes n! for non-negative integer n up to 170 (the largest
// factorial representable in a float64).
func factorial(v complex128) (complex128, error) {
	if imag(v) != 0 {
		return 0, fmt.Errorf("factorial of a complex number")
	}
	n := real(v)
	if n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("factorial of a non-integer")
	}
	if n > 170 {
		return complex(math.Inf(1), 0), nil
	}
	acc := 1.0
	for k := 2.0; k <= n; k++ {
		acc *= k
	}
	return complex(acc, 0), nil
}

// chopEps is the relative tolerance below which a tiny imaginary (or real)
// component is treated as floating-point residue and zeroed.
const chopEps = 1e-10

// Chop zeroes a near-zero component of a complex result so values like
// sqrt(4) (computed through the complex plane) come back purely real.
// Purely real values are left alone; a tiny real number typed by the user
// is not residue.
func Chop(z complex128) complex128 {
	re, im := real(z), imag(z)
	mag := math.Max(math.Abs(re), math.Abs(im))
	if mag == 0 {
		return z
	}
	if math.Abs(im) < chopEps*math.Max(1, mag) {
		im = 0
	}
	if math.Abs(re) < chopEps*math.Max(1, mag) && im != 0 {
		re = 0
	}
	return complex(re, im)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
