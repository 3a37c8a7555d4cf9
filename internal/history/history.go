// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package history provides the append-only evaluation log and its
// persistence backends.
package history

import (
	"time"

	"nickandperla.net/tapcalc/internal/token"
)

// Entry is one completed evaluation. Entries are never mutated after being
// appended; the log only grows until an explicit reset.
type Entry struct {
	Tokens  []token.Token // submitted tokens, including auto-closed parens
	Display string        // rendered expression text
	Payload string        // evaluator-facing expression string
	Real    float64
	Imag    *float64 // nil for purely real answers
	Answer  string   // formatted answer text, empty when errored
	IsError bool
	ErrText string
	LaTeX   string
	Rounded bool
	When    time.Time
}

// HasAnswer reports whether the entry carries a usable numeric answer.
func (e Entry) HasAnswer() bool {
	return !e.IsError && e.Answer != ""
}

// Store is the interface for history persistence.
type Store interface {
	// Append adds an entry at the end of the log.
	Append(e Entry) error
	// All returns the log oldest-first.
	All() ([]Entry, error)
	// Last returns the most recent entry, or ok=false when the log is empty.
	Last() (Entry, bool, error)
	// Len returns the number of entries.
	Len() (int, error)
	// Reset discards every entry.
	Reset() error
	// Close releases resources.
	Close() error
}
