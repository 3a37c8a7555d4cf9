// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the tapcalc input token model and keypad tables.
package token

// Kind classifies an input token.
type Kind int

const (
	Number   Kind = iota // digit runs, constants, injected answers
	Operator             // + - * / ^
	Function             // sin( cos( sqrt( ... (payload includes the open paren)
	Modifier             // postfix suffixes: ! ^2 ^(-1) /100
	Symbol               // ( ) . and other structural glyphs
)

// String returns the string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Number:
		return "NUMBER"
	case Operator:
		return "OPERATOR"
	case Function:
		return "FUNCTION"
	case Modifier:
		return "MODIFIER"
	case Symbol:
		return "SYMBOL"
	}
	return "UNKNOWN"
}

// Token is one discrete unit of the input expression. Display is the
// user-facing glyph, Payload the evaluator-facing fragment. Tokens are
// immutable once created.
type Token struct {
	Display string
	Payload string
	Kind    Kind
}

// New creates a token whose display and payload are the same string.
func New(s string, k Kind) Token {
	return Token{Display: s, Payload: s, Kind: k}
}

// NewDisplay creates a token with distinct display and payload forms.
func NewDisplay(display, payload string, k Kind) Token {
	return Token{Display: display, Payload: payload, Kind: k}
}

// Standard keypad tokens.
var (
	Plus     = New("+", Operator)
	Minus    = New("-", Operator)
	Times    = NewDisplay("×", "*", Operator)
	Divide   = NewDisplay("÷", "/", Operator)
	Power    = New("^", Operator)
	Percent  = NewDisplay("%", "/100", Modifier)
	OpenPar  = New("(", Symbol)
	ClosePar = New(")", Symbol)
	Decimal  = New(".", Symbol)
	Pi       = NewDisplay("π", "pi", Number)
	Euler    = New("e", Number)
	Imag     = New("i", Number)
	Fact     = New("!", Modifier)
	Square   = NewDisplay("²", "^2", Modifier)
	Inverse  = NewDisplay("⁻¹", "^(-1)", Modifier)
)

// Func builds a function token; payload carries the opening parenthesis so
// the unclosed-paren count includes it.
func Func(name string) Token {
	return NewDisplay(name+"(", name+"(", Function)
}

// TrigPair is a trig key with its inverse form, selected by the
// invert-trig display flag.
type TrigPair struct {
	Direct  Token
	Inverse Token
}

// Trig function key pairs.
var (
	Sin = TrigPair{Direct: Func("sin"), Inverse: Func("asin")}
	Cos = TrigPair{Direct: Func("cos"), Inverse: Func("acos")}
	Tan = TrigPair{Direct: Func("tan"), Inverse: Func("atan")}
)

// Pick returns the pair member selected by the invert flag.
func (p TrigPair) Pick(invert bool) Token {
	if invert {
		return p.Inverse
	}
	return p.Direct
}

// functionNames maps spelled-out names to function tokens for line-oriented
// input replay.
var functionNames = map[string]Token{
	"sin":  Sin.Direct,
	"cos":  Cos.Direct,
	"tan":  Tan.Direct,
	"asin": Sin.Inverse,
	"acos": Cos.Inverse,
	"atan": Tan.Inverse,
	"sqrt": Func("sqrt"),
	"ln":   Func("ln"),
	"log":  Func("log"),
	"exp":  Func("exp"),
	"abs":  Func("abs"),
}

// FuncByName returns the function token for a spelled-out name.
func FuncByName(name string) (Token, bool) {
	t, ok := functionNames[name]
	return t, ok
}

// FromRune maps a typed character to its keypad token. Function keys have no
// single-rune form; see FuncByName.
func FromRune(r rune) (Token, bool) {
	switch r {
	case '+':
		return Plus, true
	case '-', '−':
		return Minus, true
	case '*', '×':
		return Times, true
	case '/', '÷':
		return Divide, true
	case '^':
		return Power, true
	case '(':
		return OpenPar, true
	case ')':
		return ClosePar, true
	case '.':
		return Decimal, true
	case '!':
		return Fact, true
	case 'π':
		return Pi, true
	}
	if r >= '0' && r <= '9' {
		return New(string(r), Number), true
	}
	return Token{}, false
}

// IsDigit reports whether the token is a single digit or decimal-separator
// character, the shapes that juxtapose implicitly with a following number.
func (t Token) IsDigit() bool {
	if t.Kind != Number && t.Kind != Symbol {
		return false
	}
	if len(t.Payload) != 1 {
		return false
	}
	c := t.Payload[0]
	return (c >= '0' && c <= '9') || c == '.'
}
