// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package mathexpr

import (
	"fmt"
	"unicode"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokBang
	tokLParen
	tokRParen
)

type tok struct {
	kind tokKind
	text string
	pos  int
}

// lexer tokenizes an expression string rune-by-rune.
type lexer struct {
	input  []rune
	pos    int
	peeked *tok
}

func newLexer(input string) *lexer {
	return &lexer{input: []rune(input)}
}

func (l *lexer) peek() (tok, error) {
	if l.peeked == nil {
		t, err := l.scan()
		if err != nil {
			return tok{}, err
		}
		l.peeked = &t
	}
	return *l.peeked, nil
}

func (l *lexer) next() (tok, error) {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t, nil
	}
	return l.scan()
}

func (l *lexer) scan() (tok, error) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return tok{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	r := l.input[l.pos]

	switch r {
	case '+':
		l.pos++
		return tok{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		l.pos++
		return tok{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		l.pos++
		return tok{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		l.pos++
		return tok{kind: tokSlash, text: "/", pos: start}, nil
	case '^':
		l.pos++
		return tok{kind: tokCaret, text: "^", pos: start}, nil
	case '!':
		l.pos++
		return tok{kind: tokBang, text: "!", pos: start}, nil
	case '(':
		l.pos++
		return tok{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		l.pos++
		return tok{kind: tokRParen, text: ")", pos: start}, nil
	}

	if unicode.IsDigit(r) || r == '.' {
		return l.scanNumber()
	}
	if unicode.IsLetter(r) {
		for l.pos < len(l.input) && unicode.IsLetter(l.input[l.pos]) {
			l.pos++
		}
		return tok{kind: tokIdent, text: string(l.input[start:l.pos]), pos: start}, nil
	}

	return tok{}, fmt.Errorf("unexpected character %q at position %d", string(r), start)
}

// scanNumber reads a numeric literal: digits, at most one decimal point, and
// an optional e-notation exponent when it is unambiguously one (digit or
// sign follows the 'e').
func (l *lexer) scanNumber() (tok, error) {
	start := l.pos
	sawDot := false
	for l.pos < len(l.input) {
		r := l.input[l.pos]
		if unicode.IsDigit(r) {
			l.pos++
			continue
		}
		if r == '.' {
			if sawDot {
				return tok{}, fmt.Errorf("malformed number at position %d", start)
			}
			sawDot = true
			l.pos++
			continue
		}
		break
	}
	if l.pos == start || (l.pos == start+1 && sawDot) {
		return tok{}, fmt.Errorf("malformed number at position %d", start)
	}

	// Optional exponent: only when followed by a digit or a signed digit,
	// otherwise the 'e' is the Euler constant juxtaposed (a parse error
	// downstream, matching the keypad's lack of implicit multiplication).
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		p := l.pos + 1
		if p < len(l.input) && (l.input[p] == '+' || l.input[p] == '-') {
			p++
		}
		if p < len(l.input) && unicode.IsDigit(l.input[p]) {
			l.pos = p
			for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}

	return tok{kind: tokNumber, text: string(l.input[start:l.pos]), pos: start}, nil
}
