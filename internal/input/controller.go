// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package input implements the expression-input state machine: which keys
// are legal given the current input, how unclosed parentheses autocomplete,
// and how a computed answer folds back into subsequent input.
package input

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"nickandperla.net/tapcalc/internal/engine"
	"nickandperla.net/tapcalc/internal/format"
	"nickandperla.net/tapcalc/internal/history"
	"nickandperla.net/tapcalc/internal/mathexpr"
	"nickandperla.net/tapcalc/internal/token"
)

// Evaluator is the gateway-facing dependency; stubbed in tests.
type Evaluator interface {
	Evaluate(ctx context.Context, req engine.Request) engine.Response
	Configure(conf engine.Config) error
}

// ResultEvent is the controller's sole output event, emitted once per
// completed (non-misfire) evaluation.
type ResultEvent struct {
	Expression string
	Result     *engine.Result // nil on error
	Err        string         // empty on success
	Detail     string
	LaTeX      string
	Rounded    bool
}

// Controller owns the expression, the live answer, and the history log.
// All operations are serialized through an internal mutex; Evaluate is the
// only one that suspends.
type Controller struct {
	mu          sync.Mutex
	gw          Evaluator
	store       history.Store
	cfg         Config
	tokens      []token.Token
	answer      *Answer
	errText     string
	invertTrig  bool
	historyText string
	onResult    func(ResultEvent)
	rng         *rand.Rand
}

// NewController creates a controller bound to a gateway and a history
// store. A nil store gets an in-memory one. If the configured angle unit is
// not the gateway default it is pushed immediately.
func NewController(gw Evaluator, store history.Store, cfg Config) *Controller {
	if store == nil {
		store = history.NewMemory()
	}
	c := &Controller{
		gw:    gw,
		store: store,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.AngleUnit != mathexpr.Degrees {
		c.gw.Configure(engine.Config{AngleUnit: cfg.AngleUnit.String()})
	}
	if last, ok, err := store.Last(); err == nil && ok {
		c.historyText = renderHistory(last)
	}
	return c
}

// SetResultCallback registers the observer for result events.
func (c *Controller) SetResultCallback(fn func(ResultEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResult = fn
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// History returns the log oldest-first.
func (c *Controller) History() ([]history.Entry, error) {
	return c.store.All()
}

// Append validates a candidate token against the current state and appends
// it. Rejected tokens change nothing; the returned bool reports acceptance.
func (c *Controller) Append(t token.Token) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The decimal key displays with the locale separator.
	if t.Kind == token.Symbol && t.Payload == "." {
		if sep := c.cfg.DecimalSep; sep != "" {
			t.Display = sep
		}
	}

	switch {
	case t.Kind == token.Modifier && !c.modifiersActive():
		return c.state(), false
	case t.Kind == token.Operator && t.Payload != "-" && !c.operatorsActive():
		return c.state(), false
	case t.Payload == ")" && unclosedParens(screenText(c.tokens)) < 1:
		return c.state(), false
	}

	if c.answer != nil {
		// Operators and (real-answer) modifiers chain onto the previous
		// result: re-inject it as a synthetic number token. Anything else
		// starts fresh and the answer is dropped.
		if t.Kind == token.Operator || (t.Kind == token.Modifier && c.answer.Imag == nil) {
			c.tokens = append(c.tokens, c.answerToken(*c.answer))
		}
		c.answer = nil
	}

	c.errText = ""
	c.tokens = append(c.tokens, t)
	return c.state(), true
}

// DeleteLast clears the error if one is set; otherwise consuming the live
// answer counts as the delete; otherwise it removes the last token, or the
// token at index when given and in range.
func (c *Controller) DeleteLast(index ...int) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errText = ""
	if c.answer != nil {
		c.answer = nil
		return c.state()
	}
	if len(c.tokens) == 0 {
		return c.state()
	}
	if len(index) > 0 && index[0] >= 0 && index[0] < len(c.tokens) {
		i := index[0]
		c.tokens = append(c.tokens[:i], c.tokens[i+1:]...)
		return c.state()
	}
	c.tokens = c.tokens[:len(c.tokens)-1]
	return c.state()
}

// ClearAll performs a soft reset while anything is on screen, and a hard
// reset (history, invert-trig flag included) when pressed on an already
// empty calculator.
func (c *Controller) ClearAll() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tokens) > 0 || c.answer != nil {
		c.errText = ""
		c.answer = nil
		c.tokens = nil
		return c.state()
	}

	c.errText = ""
	c.invertTrig = false
	c.historyText = ""
	c.store.Reset()
	return c.state()
}

// ToggleInvertTrig flips which trig payload subsequent function keys
// append. Existing tokens are untouched.
func (c *Controller) ToggleInvertTrig() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invertTrig = !c.invertTrig
	return c.state()
}

// ToggleAngleUnit cycles degrees and radians, or switches to the explicit
// unit when one is given. Setting the current unit again is a no-op and
// sends nothing. The reconfigure message is fire-and-forget but shares the
// evaluation channel, so later evaluations see it first.
func (c *Controller) ToggleAngleUnit(explicit ...mathexpr.AngleUnit) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := mathexpr.Degrees
	if len(explicit) > 0 {
		if explicit[0] == c.cfg.AngleUnit {
			return c.state()
		}
		next = explicit[0]
	} else if c.cfg.AngleUnit == mathexpr.Degrees {
		next = mathexpr.Radians
	}

	c.cfg.AngleUnit = next
	c.gw.Configure(engine.Config{AngleUnit: next.String()})
	return c.state()
}

// InsertPreviousAnswer appends the last history entry's answer as a number
// token displayed "Ans". No-op when history is empty or the last entry
// errored.
func (c *Controller) InsertPreviousAnswer() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok, err := c.store.Last()
	if err != nil || !ok || !last.HasAnswer() {
		return c.state()
	}

	payload := answerPayload(last.Real, last.Imag)
	c.errText = ""
	c.answer = nil
	c.tokens = append(c.tokens, token.Token{Display: "Ans", Payload: payload, Kind: token.Number})
	return c.state()
}

// InsertRandomNumber appends a uniform random value in [0,1) at 8 decimal
// places, inserting an explicit multiplication first when the input ends
// in a digit or a closing parenthesis.
func (c *Controller) InsertRandomNumber() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.answer = nil
	if len(c.tokens) > 0 {
		last := c.tokens[len(c.tokens)-1]
		if last.IsDigit() || last.Payload == ")" {
			c.tokens = append(c.tokens, token.Times)
		}
	}

	payload := strconv.FormatFloat(c.rng.Float64(), 'f', 8, 64)
	display := payload
	if sep := c.cfg.DecimalSep; sep != "" && sep != "." {
		display = payload[:1] + sep + payload[2:]
	}
	c.errText = ""
	c.tokens = append(c.tokens, token.Token{Display: display, Payload: payload, Kind: token.Number})
	return c.state()
}

// Evaluate submits the current expression (with unclosed parentheses
// auto-closed) to the gateway and folds the response back in. This is the
// controller's sole suspension point. No-op on an empty expression.
func (c *Controller) Evaluate(ctx context.Context, round bool) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.tokens) == 0 {
		return c.state()
	}

	submitted := append([]token.Token(nil), c.tokens...)
	for i := unclosedParens(screenText(submitted)); i > 0; i-- {
		submitted = append(submitted, token.ClosePar)
	}
	payload := payloadText(submitted)

	resp := c.gw.Evaluate(ctx, engine.Request{Expression: payload, Round: round})
	c.handleResponse(resp, submitted, payload, round)
	return c.state()
}

// handleResponse applies an evaluation response. Caller holds the lock.
func (c *Controller) handleResponse(resp engine.Response, submitted []token.Token, payload string, round bool) {
	if resp.IsError() {
		// Expression stays on screen so the user can fix it.
		c.errText = resp.Error
		c.answer = nil
		c.emit(ResultEvent{Expression: payload, Err: resp.Error, Detail: resp.Detail, Rounded: round})
		return
	}

	// Misfire heuristic inherited from the original design: a result that
	// stringifies to exactly the submitted expression (a bare number
	// evaluated to itself) is treated as an accidental submission and
	// silently discarded. Can false-positive on legitimate identity
	// evaluations.
	if resp.Result != nil && resp.Result.String() == payload {
		return
	}

	// A response with neither an error nor a result carries nothing to
	// apply. The gateway never produces this shape; a custom evaluator
	// might.
	if resp.Result == nil {
		return
	}

	opts := c.cfg.formatOptions()
	var display string
	if resp.Result.Imag != nil {
		display = format.Complex(resp.Result.Real, *resp.Result.Imag, format.ComplexDigits, opts)
	} else {
		display = format.Number(resp.Result.Real, format.RealDigits, opts)
	}

	joiner := " = "
	if round {
		joiner = ` \approx `
	}
	latex := resp.LaTeX + joiner + display

	c.answer = &Answer{
		Real:    resp.Result.Real,
		Imag:    resp.Result.Imag,
		Display: display,
		LaTeX:   latex,
	}
	c.errText = ""

	entry := history.Entry{
		Tokens:  submitted,
		Display: screenText(submitted),
		Payload: payload,
		Real:    resp.Result.Real,
		Imag:    resp.Result.Imag,
		Answer:  display,
		LaTeX:   latex,
		Rounded: round,
		When:    time.Now(),
	}
	c.store.Append(entry)
	c.historyText = renderHistory(entry)
	c.tokens = nil

	c.emit(ResultEvent{
		Expression: payload,
		Result:     resp.Result,
		LaTeX:      latex,
		Rounded:    round,
	})
}

func (c *Controller) emit(ev ResultEvent) {
	if c.onResult != nil {
		c.onResult(ev)
	}
}

// answerToken turns the live answer into a synthetic number token,
// parenthesized unless its text is a plain unsigned decimal, so chained
// operators keep their precedence.
func (c *Controller) answerToken(a Answer) token.Token {
	display := a.Display
	payload := answerPayload(a.Real, a.Imag)
	if !format.IsPlain(display, c.cfg.formatOptions()) {
		display = "(" + display + ")"
	}
	return token.Token{Display: display, Payload: payload, Kind: token.Number}
}

// answerPayload builds an evaluator-parseable literal from the stored
// components, parenthesized whenever it is more than a plain decimal.
func answerPayload(re float64, im *float64) string {
	res := strconv.FormatFloat(re, 'g', -1, 64)
	if im == nil {
		if format.IsPlain(res, format.DefaultOptions()) {
			return res
		}
		return "(" + res + ")"
	}
	v := *im
	sign := "+"
	if v < 0 {
		sign = "-"
		v = -v
	}
	return "(" + res + sign + strconv.FormatFloat(v, 'g', -1, 64) + "*i)"
}

// renderHistory renders a history entry for the one-line history display.
func renderHistory(e history.Entry) string {
	joiner := " = "
	if e.Rounded {
		joiner = " ≈ "
	}
	if e.IsError {
		return e.Display + joiner + e.ErrText
	}
	return e.Display + joiner + e.Answer
}
