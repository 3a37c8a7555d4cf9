// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package engine runs expression evaluation in an isolated worker goroutine
// reachable only through message passing, so a hung or panicking evaluation
// cannot take the input controller down with it.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nickandperla.net/tapcalc/internal/mathexpr"
)

// Wire-level error names.
const (
	ErrSyntax        = "Syntax Error"
	ErrConfiguration = "Configuration Error"
	ErrNoExpression  = "No Expression"
	ErrTimeout       = "Timeout"
)

// Request is the evaluate message shape.
type Request struct {
	Expression string `json:"expression"`
	Round      bool   `json:"round"`
}

// Config is the out-of-band reconfigure message shape.
type Config struct {
	AngleUnit string `json:"angleUnit"`
}

// Result is a numeric or complex evaluation result.
type Result struct {
	Real float64  `json:"re"`
	Imag *float64 `json:"im,omitempty"`
}

// String renders the result the way the original engine stringifies it:
// shortest round-trip form, "re+imi" when an imaginary part is present.
func (r *Result) String() string {
	re := strconv.FormatFloat(r.Real, 'g', -1, 64)
	if r.Imag == nil {
		return re
	}
	im := *r.Imag
	sign := "+"
	if im < 0 {
		sign = "-"
		im = -im
	}
	return re + sign + strconv.FormatFloat(im, 'g', -1, 64) + "i"
}

// Response is the reply shape for both success and failure.
type Response struct {
	Expression string  `json:"expression"`
	Result     *Result `json:"result"`
	LaTeX      string  `json:"latex,omitempty"`
	Round      bool    `json:"round,omitempty"`
	Error      string  `json:"error,omitempty"`
	Detail     string  `json:"detail,omitempty"`

	id string // correlation id, internal to the gateway
}

// IsError reports whether the response carries an error.
func (r Response) IsError() bool {
	return r.Error != ""
}

// message travels the gateway's single outbound channel; send order is
// delivery order, so a reconfigure issued before an evaluate is applied
// before it.
type message struct {
	id   string
	conf *Config
	req  *Request
	resp chan Response // nil for fire-and-forget reconfiguration
}

// Gateway owns the worker goroutine and the channel into it. Requests are
// run to completion one at a time; each evaluate gets its own response
// channel keyed by a uuid correlation id.
type Gateway struct {
	requests chan message
	timeout  time.Duration
	done     chan struct{}
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets how long Evaluate waits before surfacing a Timeout error.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// New starts a gateway worker configured for degrees.
func New(opts ...Option) *Gateway {
	g := &Gateway{
		requests: make(chan message, 16),
		timeout:  DefaultTimeout,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	go g.work()
	return g
}

// Configure pushes an angle-unit change to the worker. The send is
// fire-and-forget; no acknowledgement is awaited. An unit name the engine
// does not know is rejected here, before anything is sent.
func (g *Gateway) Configure(conf Config) error {
	if _, ok := mathexpr.ParseAngleUnit(conf.AngleUnit); !ok {
		return fmt.Errorf("%s: unknown angle unit %q", ErrConfiguration, conf.AngleUnit)
	}
	// Checked before the send: a buffered channel would otherwise accept
	// the message even after Close.
	select {
	case <-g.done:
		return fmt.Errorf("%s: gateway closed", ErrConfiguration)
	default:
	}
	select {
	case g.requests <- message{id: uuid.NewString(), conf: &conf}:
		return nil
	case <-g.done:
		return fmt.Errorf("%s: gateway closed", ErrConfiguration)
	}
}

// Evaluate submits an expression and blocks until the worker replies, the
// context is cancelled, or the timeout elapses. A timed-out evaluation
// surfaces a Timeout error; the worker is left to finish (or hang) on its
// own without blocking the caller.
func (g *Gateway) Evaluate(ctx context.Context, req Request) Response {
	id := uuid.NewString()
	m := message{id: id, req: &req, resp: make(chan Response, 1)}

	// Closed gateways refuse new work even while the buffered channel
	// still has room.
	select {
	case <-g.done:
		return errorResponse(id, req.Expression, ErrSyntax, "gateway closed")
	default:
	}
	select {
	case g.requests <- m:
	case <-g.done:
		return errorResponse(id, req.Expression, ErrSyntax, "gateway closed")
	case <-ctx.Done():
		return errorResponse(id, req.Expression, ErrTimeout, ctx.Err().Error())
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	for {
		select {
		case resp := <-m.resp:
			if resp.id != id {
				// A stale reply from a previous occupant of this channel
				// slot; with per-request channels this cannot normally
				// happen, but correlation ids make it checkable.
				continue
			}
			return resp
		case <-timer.C:
			return errorResponse(id, req.Expression, ErrTimeout, "evaluation did not complete")
		case <-ctx.Done():
			return errorResponse(id, req.Expression, ErrTimeout, ctx.Err().Error())
		}
	}
}

// Close shuts the gateway down. Pending sends after Close fail fast.
func (g *Gateway) Close() {
	close(g.done)
}

func errorResponse(id, expression, name, detail string) Response {
	return Response{Expression: expression, Error: name, Detail: detail, id: id}
}
