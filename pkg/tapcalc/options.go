// Package tapcalc provides the public API for the tapcalc calculator.
package tapcalc

import (
	"fmt"
	"os"
	"time"

	"nickandperla.net/tapcalc/internal/history"
	"nickandperla.net/tapcalc/internal/input"
	"nickandperla.net/tapcalc/internal/mathexpr"
)

// Option configures a Calculator.
type Option func(*Calculator)

// WithSQLiteHistory persists history at the given path.
func WithSQLiteHistory(path string) Option {
	return func(c *Calculator) {
		s, err := history.NewSQLite(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tapcalc: falling back to memory history: %v\n", err)
			return
		}
		c.store = s
	}
}

// WithMemoryHistory keeps history in memory only.
func WithMemoryHistory() Option {
	return func(c *Calculator) {
		c.store = history.NewMemory()
	}
}

// WithHistoryStore installs a custom history store.
func WithHistoryStore(s history.Store) Option {
	return func(c *Calculator) {
		c.store = s
	}
}

// WithAngleUnit sets the starting angle unit.
func WithAngleUnit(u mathexpr.AngleUnit) Option {
	return func(c *Calculator) {
		c.cfg.AngleUnit = u
	}
}

// WithSeparators sets the locale decimal separator and the thousands
// separator; an empty thousands separator disables grouping.
func WithSeparators(decimal, thousand string) Option {
	return func(c *Calculator) {
		if decimal != "" {
			c.cfg.DecimalSep = decimal
		}
		c.cfg.ThousandSep = thousand
	}
}

// WithTimeout bounds a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(c *Calculator) {
		c.timeout = d
	}
}

// WithEvaluator installs a custom evaluation gateway (for testing).
func WithEvaluator(gw input.Evaluator) Option {
	return func(c *Calculator) {
		c.gw = gw
	}
}

// WithResultCallback registers the observer for result events.
func WithResultCallback(fn func(input.ResultEvent)) Option {
	return func(c *Calculator) {
		c.onResult = fn
	}
}

// AngleUnit aliases for callers configuring through this package.
const (
	Degrees  = mathexpr.Degrees
	Radians  = mathexpr.Radians
	Gradians = mathexpr.Gradians
)

// ParseAngleUnit parses "deg", "rad" or "grad".
func ParseAngleUnit(s string) (mathexpr.AngleUnit, bool) {
	return mathexpr.ParseAngleUnit(s)
}
