// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package mathexpr

import (
	"fmt"
	"strconv"
)

// parser is a recursive-descent parser over the lexer's token stream.
//
// Grammar, loosest to tightest binding:
//
//	expr    = mul { ("+"|"-") mul }
//	mul     = unary { ("*"|"/") unary }
//	unary   = "-" unary | power
//	power   = postfix [ "^" unary ]          (right associative)
//	postfix = primary { "!" }
//	primary = NUMBER | IDENT | IDENT "(" expr ")" | "(" expr ")"
type parser struct {
	lex *lexer
}

// Parse parses an expression string into an AST.
func Parse(input string) (Node, error) {
	p := &parser{lex: newLexer(input)}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	t, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
	return n, nil
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		var op byte
		switch t.kind {
		case tokPlus:
			op = '+'
		case tokMinus:
			op = '-'
		default:
			return left, nil
		}
		p.lex.next()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMul() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		var op byte
		switch t.kind {
		case tokStar:
			op = '*'
		case tokSlash:
			op = '/'
		default:
			return left, nil
		}
		p.lex.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	t, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if t.kind == tokMinus {
		p.lex.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Unary{Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	t, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if t.kind != tokCaret {
		return base, nil
	}
	p.lex.next()
	// Right associative, and the exponent may carry its own unary minus:
	// 2^-3 and 2^3^2 both parse.
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return Binary{Op: '^', Left: base, Right: exp}, nil
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if t.kind != tokBang {
			return n, nil
		}
		p.lex.next()
		n = Factorial{Operand: n}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	t, err := p.lex.next()
	if err != nil {
		return nil, err
	}

	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q", t.text)
		}
		return NumberLit{Literal: t.text, Value: v}, nil

	case tokIdent:
		nxt, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if nxt.kind == tokLParen {
			p.lex.next()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			return Call{Name: t.text, Arg: arg}, nil
		}
		switch t.text {
		case "pi", "e", "i":
			return Constant{Name: t.text}, nil
		}
		return nil, fmt.Errorf("unknown symbol %q", t.text)

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return Paren{Inner: inner}, nil

	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	}

	return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
}

func (p *parser) expect(k tokKind) error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	if t.kind != k {
		if t.kind == tokEOF {
			return fmt.Errorf("missing closing parenthesis")
		}
		return fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
	return nil
}
