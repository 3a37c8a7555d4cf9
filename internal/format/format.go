// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package format renders numeric results for display: significant-digit
// rounding, locale decimal separator, optional thousands grouping.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Significant-digit precision: real results carry more digits than
// each component of a complex result.
const (
	RealDigits    = 12
	ComplexDigits = 6
)

// Options holds the locale separators. ThousandSep may be empty to disable
// grouping.
type Options struct {
	DecimalSep  string
	ThousandSep string
}

// DefaultOptions uses "." and no grouping.
func DefaultOptions() Options {
	return Options{DecimalSep: "."}
}

// Number formats v at the given number of significant digits with trailing
// zeros stripped, then applies the locale separators.
func Number(v float64, sigDigits int, opts Options) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	if math.IsNaN(v) {
		return "NaN"
	}
	// 'g' strips trailing zeros and switches to exponent form when shorter.
	s := strconv.FormatFloat(v, 'g', sigDigits, 64)
	return localize(s, opts)
}

// Complex formats a complex value as "re+imi" / "re-imi" at sigDigits per
// component. A zero real part still prints ("0+2i") to match the stored
// answer shape.
func Complex(re, im float64, sigDigits int, opts Options) string {
	res := Number(re, sigDigits, opts)
	ims := Number(math.Abs(im), sigDigits, opts)
	sign := "+"
	if im < 0 {
		sign = "-"
	}
	return res + sign + ims + "i"
}

// IsPlain reports whether s consists only of digits and the decimal
// separator. Anything else (sign, exponent, imaginary unit, grouping) means
// the value needs parentheses when re-injected into an expression.
func IsPlain(s string, opts Options) bool {
	if s == "" {
		return false
	}
	sep := opts.DecimalSep
	if sep == "" {
		sep = "."
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if string(r) == sep || r == '.' {
			continue
		}
		return false
	}
	return true
}

// localize swaps the canonical "." for the locale decimal separator and
// groups the integer part. Exponent forms are never grouped.
func localize(s string, opts Options) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	mantissa, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exp = s[:i], s[i:]
	}

	intPart, fracPart := mantissa, ""
	if i := strings.Index(mantissa, "."); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	}

	if opts.ThousandSep != "" && exp == "" {
		intPart = group(intPart, opts.ThousandSep)
	}

	sep := opts.DecimalSep
	if sep == "" {
		sep = "."
	}

	var sb strings.Builder
	if neg {
		sb.WriteString("-")
	}
	sb.WriteString(intPart)
	if fracPart != "" {
		sb.WriteString(sep)
		sb.WriteString(fracPart)
	}
	sb.WriteString(exp)
	return sb.String()
}

// group inserts the thousands separator every three digits from the right.
func group(digits string, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
