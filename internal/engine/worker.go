// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package engine

import (
	"fmt"
	"strings"

	"nickandperla.net/tapcalc/internal/mathexpr"
)

// work is the worker loop. The evaluator lives entirely inside this
// goroutine; nothing else touches it. Messages are handled strictly in
// arrival order.
func (g *Gateway) work() {
	ev := mathexpr.New()
	for {
		// Shutdown takes priority over draining the request buffer.
		select {
		case <-g.done:
			return
		default:
		}
		select {
		case <-g.done:
			return
		case m := <-g.requests:
			switch {
			case m.conf != nil:
				if u, ok := mathexpr.ParseAngleUnit(m.conf.AngleUnit); ok {
					ev.SetAngleUnit(u)
				}
			case m.req != nil:
				m.resp <- evaluate(ev, m)
			}
		}
	}
}

// evaluate runs one request to completion. A panic inside the evaluator is
// contained here and surfaced as a syntax error; the worker survives.
func evaluate(ev *mathexpr.Evaluator, m message) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(m.id, m.req.Expression, ErrSyntax, fmt.Sprintf("evaluation panic: %v", r))
		}
	}()

	expression := m.req.Expression
	if strings.TrimSpace(expression) == "" {
		return errorResponse(m.id, expression, ErrNoExpression, "nothing to evaluate")
	}

	v, node, err := ev.Eval(expression)
	if err != nil {
		return errorResponse(m.id, expression, ErrSyntax, err.Error())
	}

	result := &Result{Real: real(v)}
	if im := imag(v); im != 0 {
		result.Imag = &im
	}

	return Response{
		Expression: expression,
		Result:     result,
		LaTeX:      mathexpr.LaTeX(node),
		Round:      m.req.Round,
		id:         m.id,
	}
}
