package tapcalc

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"nickandperla.net/tapcalc/internal/engine"
	"nickandperla.net/tapcalc/internal/history"
	"nickandperla.net/tapcalc/internal/input"
	"nickandperla.net/tapcalc/internal/mathexpr"
	"nickandperla.net/tapcalc/internal/token"
)

// Calculator is the public calculator runtime: input controller, evaluation
// gateway, and history store wired together.
type Calculator struct {
	gw       input.Evaluator
	ownGw    *engine.Gateway
	ctrl     *input.Controller
	store    history.Store
	cfg      input.Config
	timeout  time.Duration
	onResult func(input.ResultEvent)
}

// New creates a calculator with the given options.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		cfg:     input.Config{AngleUnit: mathexpr.Degrees, DecimalSep: "."},
		timeout: engine.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.gw == nil {
		c.ownGw = engine.New(engine.WithTimeout(c.timeout))
		c.gw = c.ownGw
	}
	if c.store == nil {
		c.store = history.NewMemory()
	}

	c.ctrl = input.NewController(c.gw, c.store, c.cfg)
	if c.onResult != nil {
		c.ctrl.SetResultCallback(c.onResult)
	}
	return c
}

// Press appends one keypad token. Rejected presses leave state unchanged.
func (c *Calculator) Press(t token.Token) (input.State, bool) {
	return c.ctrl.Append(t)
}

// PressTrig appends the trig key for the pair, honoring the invert flag.
func (c *Calculator) PressTrig(p token.TrigPair) (input.State, bool) {
	return c.ctrl.Append(p.Pick(c.ctrl.State().InvertTrig))
}

// DeleteLast removes the last token (or the one at index), the live answer,
// or a pending error, whichever comes first.
func (c *Calculator) DeleteLast(index ...int) input.State {
	return c.ctrl.DeleteLast(index...)
}

// ClearAll soft-resets the input, or hard-resets everything including
// history when already empty.
func (c *Calculator) ClearAll() input.State {
	return c.ctrl.ClearAll()
}

// ToggleInvertTrig flips the inverse-trig key mode.
func (c *Calculator) ToggleInvertTrig() input.State {
	return c.ctrl.ToggleInvertTrig()
}

// ToggleAngleUnit cycles deg/rad or sets the explicit unit.
func (c *Calculator) ToggleAngleUnit(explicit ...mathexpr.AngleUnit) input.State {
	return c.ctrl.ToggleAngleUnit(explicit...)
}

// InsertPreviousAnswer appends the last history answer as an "Ans" token.
func (c *Calculator) InsertPreviousAnswer() input.State {
	return c.ctrl.InsertPreviousAnswer()
}

// InsertRandomNumber appends a random value in [0,1).
func (c *Calculator) InsertRandomNumber() input.State {
	return c.ctrl.InsertRandomNumber()
}

// Evaluate submits the current expression. Rounded results display with ≈.
func (c *Calculator) Evaluate(ctx context.Context, round bool) input.State {
	return c.ctrl.Evaluate(ctx, round)
}

// State returns the current snapshot.
func (c *Calculator) State() input.State {
	return c.ctrl.State()
}

// History returns the evaluation log oldest-first.
func (c *Calculator) History() ([]history.Entry, error) {
	return c.ctrl.History()
}

// Type replays a spelled-out expression line as key presses: digits,
// operators and parens map directly; letter runs name functions ("sin"),
// constants ("pi", "e", "i"), or the special keys "ans" and "rand".
// Presses the state machine rejects are dropped, as they would be on the
// keypad.
func (c *Calculator) Type(line string) error {
	runes := []rune(line)
	for i := 0; i < len(runes); {
		r := runes[i]

		if unicode.IsSpace(r) {
			i++
			continue
		}

		if unicode.IsLetter(r) && r != 'π' {
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			name := strings.ToLower(string(runes[i:j]))
			i = j
			switch {
			case name == "ans":
				c.ctrl.InsertPreviousAnswer()
			case name == "rand":
				c.ctrl.InsertRandomNumber()
			case name == "pi":
				c.ctrl.Append(token.Pi)
			case name == "e":
				c.ctrl.Append(token.Euler)
			case name == "i":
				c.ctrl.Append(token.Imag)
			default:
				t, ok := token.FuncByName(name)
				if !ok {
					return fmt.Errorf("unknown name %q", name)
				}
				// Function payloads carry the open paren; swallow an
				// explicitly typed one.
				if i < len(runes) && runes[i] == '(' {
					i++
				}
				c.ctrl.Append(t)
			}
			continue
		}

		t, ok := token.FromRune(r)
		if !ok {
			return fmt.Errorf("unmapped character %q", string(r))
		}
		c.ctrl.Append(t)
		i++
	}
	return nil
}

// Close shuts down the gateway (when owned) and the history store.
func (c *Calculator) Close() error {
	if c.ownGw != nil {
		c.ownGw.Close()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
