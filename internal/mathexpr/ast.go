// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package mathexpr

// Node is the interface all parsed expression nodes implement.
type Node interface {
	// String returns the canonical serialized form of the node.
	String() string
}

// NumberLit is a numeric literal. Literal preserves the source spelling so
// results can be compared verbatim against the submitted expression.
type NumberLit struct {
	Literal string
	Value   float64
}

func (n NumberLit) String() string { return n.Literal }

// Constant is a named constant: pi, e, or the imaginary unit i.
type Constant struct {
	Name string
}

func (c Constant) String() string { return c.Name }

// Binary is an infix operation: + - * / ^.
type Binary struct {
	Op    byte
	Left  Node
	Right Node
}

func (b Binary) String() string {
	return b.Left.String() + string(b.Op) + b.Right.String()
}

// Unary is a prefix negation.
type Unary struct {
	Operand Node
}

func (u Unary) String() string { return "-" + u.Operand.String() }

// Factorial is the postfix ! operator.
type Factorial struct {
	Operand Node
}

func (f Factorial) String() string { return f.Operand.String() + "!" }

// Call is a one-argument function application.
type Call struct {
	Name string
	Arg  Node
}

func (c Call) String() string { return c.Name + "(" + c.Arg.String() + ")" }

// Paren is an explicitly parenthesized subexpression, kept so serialization
// round-trips the input.
type Paren struct {
	Inner Node
}

func (p Paren) String() string { return "(" + p.Inner.String() + ")" }
