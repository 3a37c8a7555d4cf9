// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package input

import (
	"strings"

	"nickandperla.net/tapcalc/internal/format"
	"nickandperla.net/tapcalc/internal/mathexpr"
	"nickandperla.net/tapcalc/internal/token"
)

// Config is the presentation/evaluation configuration.
type Config struct {
	AngleUnit   mathexpr.AngleUnit
	DecimalSep  string
	ThousandSep string
}

// formatOptions derives the numeric formatting options.
func (c Config) formatOptions() format.Options {
	opts := format.Options{DecimalSep: c.DecimalSep, ThousandSep: c.ThousandSep}
	if opts.DecimalSep == "" {
		opts.DecimalSep = "."
	}
	return opts
}

// Answer is the result of the most recent evaluation.
type Answer struct {
	Real    float64
	Imag    *float64 // nil when purely real
	Display string
	LaTeX   string
}

// State is an immutable snapshot of the controller, with every derived
// field recomputed from the same token sequence so they can never disagree.
type State struct {
	Tokens         []token.Token
	ScreenText     string
	UnclosedParens int
	AutoComplete   string
	Answer         *Answer
	ErrText        string
	InvertTrig     bool
	AngleUnit      mathexpr.AngleUnit
	HistoryText    string
}

// state builds a snapshot from the current controller fields. Caller holds
// the lock.
func (c *Controller) state() State {
	screen := screenText(c.tokens)
	unclosed := unclosedParens(screen)

	var ans *Answer
	if c.answer != nil {
		a := *c.answer
		ans = &a
	}

	return State{
		Tokens:         append([]token.Token(nil), c.tokens...),
		ScreenText:     screen,
		UnclosedParens: unclosed,
		AutoComplete:   strings.Repeat(")", unclosed),
		Answer:         ans,
		ErrText:        c.errText,
		InvertTrig:     c.invertTrig,
		AngleUnit:      c.cfg.AngleUnit,
		HistoryText:    c.historyText,
	}
}

// screenText renders the display form of a token sequence.
func screenText(toks []token.Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.Display)
	}
	return sb.String()
}

// payloadText renders the evaluator form of a token sequence.
func payloadText(toks []token.Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.Payload)
	}
	return sb.String()
}

// unclosedParens counts open minus close parentheses in the display text.
// Never negative: a close paren is rejected before it could overdraw.
func unclosedParens(screen string) int {
	n := 0
	for _, r := range screen {
		switch r {
		case '(':
			n++
		case ')':
			n--
		}
	}
	if n < 0 {
		n = 0
	}
	return n
}

// modifiersActive reports whether a postfix modifier may be appended: a
// purely real live answer with empty input, or an input ending in a number
// or a non-open-paren symbol. Caller holds the lock.
func (c *Controller) modifiersActive() bool {
	if c.answer != nil && c.answer.Imag == nil && len(c.tokens) == 0 {
		return true
	}
	if len(c.tokens) == 0 {
		return false
	}
	last := c.tokens[len(c.tokens)-1]
	if last.Kind == token.Number {
		return true
	}
	return last.Kind == token.Symbol && last.Payload != "("
}

// operatorsActive reports whether a binary operator may be appended: there
// is a live answer to chain onto, or the input ends in something an
// operator can follow. A leading unary minus bypasses this check. Caller
// holds the lock.
func (c *Controller) operatorsActive() bool {
	if c.answer != nil {
		return true
	}
	if len(c.tokens) == 0 {
		return false
	}
	last := c.tokens[len(c.tokens)-1]
	switch last.Kind {
	case token.Function, token.Modifier, token.Operator:
		return false
	}
	return last.Payload != "("
}
