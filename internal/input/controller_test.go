package input

import (
	"context"
	"regexp"
	"testing"

	"nickandperla.net/tapcalc/internal/engine"
	"nickandperla.net/tapcalc/internal/history"
	"nickandperla.net/tapcalc/internal/mathexpr"
	"nickandperla.net/tapcalc/internal/token"
)

// stubGateway is a scripted Evaluator.
type stubGateway struct {
	fn       func(req engine.Request) engine.Response
	configs  []engine.Config
	requests []engine.Request
}

func (s *stubGateway) Evaluate(_ context.Context, req engine.Request) engine.Response {
	s.requests = append(s.requests, req)
	if s.fn == nil {
		return engine.Response{Expression: req.Expression, Error: engine.ErrSyntax, Detail: "no script"}
	}
	return s.fn(req)
}

func (s *stubGateway) Configure(c engine.Config) error {
	s.configs = append(s.configs, c)
	return nil
}

// fixedResult scripts a purely real result.
func fixedResult(v float64) func(engine.Request) engine.Response {
	return func(req engine.Request) engine.Response {
		return engine.Response{
			Expression: req.Expression,
			Result:     &engine.Result{Real: v},
			LaTeX:      req.Expression,
			Round:      req.Round,
		}
	}
}

// complexResult scripts a complex result.
func complexResult(re, im float64) func(engine.Request) engine.Response {
	return func(req engine.Request) engine.Response {
		return engine.Response{
			Expression: req.Expression,
			Result:     &engine.Result{Real: re, Imag: &im},
			LaTeX:      req.Expression,
		}
	}
}

func newTestController(fn func(engine.Request) engine.Response) (*Controller, *stubGateway) {
	gw := &stubGateway{fn: fn}
	c := NewController(gw, history.NewMemory(), Config{AngleUnit: mathexpr.Degrees, DecimalSep: "."})
	return c, gw
}

func press(t *testing.T, c *Controller, toks ...token.Token) State {
	t.Helper()
	var st State
	for _, tk := range toks {
		var ok bool
		st, ok = c.Append(tk)
		if !ok {
			t.Fatalf("press %+v rejected", tk)
		}
	}
	return st
}

func digits(s string) []token.Token {
	var out []token.Token
	for _, r := range s {
		t, ok := token.FromRune(r)
		if !ok {
			panic("bad test token: " + string(r))
		}
		out = append(out, t)
	}
	return out
}

func TestAppendAccumulates(t *testing.T) {
	c, _ := newTestController(nil)
	st := press(t, c, digits("2+3")...)
	if len(st.Tokens) != 3 {
		t.Fatalf("len(tokens) = %d, want 3", len(st.Tokens))
	}
	if st.ScreenText != "2+3" {
		t.Errorf("screen = %q, want 2+3", st.ScreenText)
	}
}

func TestOperatorActivity(t *testing.T) {
	c, _ := newTestController(nil)

	if _, ok := c.Append(token.Plus); ok {
		t.Error("+ on empty input should be rejected")
	}
	// Leading unary minus is always allowed.
	if _, ok := c.Append(token.Minus); !ok {
		t.Error("leading - should be accepted")
	}
	press(t, c, digits("2")...)
	if _, ok := c.Append(token.Plus); !ok {
		t.Error("+ after a number should be accepted")
	}
	// Two binary operators in a row: the second is rejected.
	if _, ok := c.Append(token.Times); ok {
		t.Error("× directly after + should be rejected")
	}
	// After an open paren, no binary operator.
	press(t, c, token.OpenPar)
	if _, ok := c.Append(token.Divide); ok {
		t.Error("÷ after ( should be rejected")
	}
	// After a function token (payload ends in open paren), same.
	c.ClearAll()
	press(t, c, token.Sin.Direct)
	if _, ok := c.Append(token.Plus); ok {
		t.Error("+ after sin( should be rejected")
	}
}

func TestModifierActivity(t *testing.T) {
	c, _ := newTestController(nil)

	if _, ok := c.Append(token.Fact); ok {
		t.Error("! on empty input should be rejected")
	}
	press(t, c, digits("5")...)
	if _, ok := c.Append(token.Fact); !ok {
		t.Error("! after a number should be accepted")
	}
	// After a modifier, another modifier is rejected.
	if _, ok := c.Append(token.Square); ok {
		t.Error("² directly after ! should be rejected")
	}

	c.ClearAll()
	press(t, c, token.OpenPar)
	if _, ok := c.Append(token.Fact); ok {
		t.Error("! after ( should be rejected")
	}
	press(t, c, digits("5)")...)
	if _, ok := c.Append(token.Fact); !ok {
		t.Error("! after ) should be accepted")
	}
}

func TestCloseParenGuard(t *testing.T) {
	c, _ := newTestController(nil)

	if _, ok := c.Append(token.ClosePar); ok {
		t.Error(") with nothing open should be rejected")
	}
	st := press(t, c, token.OpenPar, token.OpenPar)
	if st.UnclosedParens != 2 || st.AutoComplete != "))" {
		t.Errorf("unclosed = %d autocomplete = %q", st.UnclosedParens, st.AutoComplete)
	}
	st = press(t, c, digits("1)")...)
	if st.UnclosedParens != 1 || st.AutoComplete != ")" {
		t.Errorf("unclosed = %d autocomplete = %q", st.UnclosedParens, st.AutoComplete)
	}
	press(t, c, token.ClosePar)
	if _, ok := c.Append(token.ClosePar); ok {
		t.Error("third ) should be rejected")
	}
}

func TestFunctionParenCounts(t *testing.T) {
	c, _ := newTestController(nil)
	press(t, c, token.Sin.Direct)
	st := press(t, c, digits("90")...)
	if st.UnclosedParens != 1 || st.AutoComplete != ")" {
		t.Errorf("unclosed = %d autocomplete = %q", st.UnclosedParens, st.AutoComplete)
	}
}

func TestRejectIsNoOp(t *testing.T) {
	c, _ := newTestController(nil)
	before := press(t, c, digits("2+")...)

	after, ok := c.Append(token.Times)
	if ok {
		t.Fatal("expected rejection")
	}
	if after.ScreenText != before.ScreenText ||
		len(after.Tokens) != len(before.Tokens) ||
		after.UnclosedParens != before.UnclosedParens ||
		after.ErrText != before.ErrText {
		t.Errorf("rejected append changed state: %+v vs %+v", after, before)
	}
}

func TestEvaluateRoundTrip(t *testing.T) {
	c, _ := newTestController(fixedResult(5))
	var events []ResultEvent
	c.SetResultCallback(func(ev ResultEvent) { events = append(events, ev) })

	press(t, c, digits("2+3")...)
	st := c.Evaluate(context.Background(), false)

	if st.Answer == nil || st.Answer.Display != "5" {
		t.Fatalf("answer = %+v, want 5", st.Answer)
	}
	if len(st.Tokens) != 0 {
		t.Errorf("expression not cleared: %+v", st.Tokens)
	}
	entries, _ := c.History()
	if len(entries) != 1 {
		t.Fatalf("history len = %d, want 1", len(entries))
	}
	if len(entries[0].Tokens) != 3 || entries[0].Display != "2+3" {
		t.Errorf("entry = %+v", entries[0])
	}
	if st.HistoryText != "2+3 = 5" {
		t.Errorf("history text = %q", st.HistoryText)
	}
	if len(events) != 1 || events[0].Result == nil || events[0].Result.Real != 5 {
		t.Errorf("events = %+v", events)
	}
	if events[0].LaTeX != "2+3 = 5" {
		t.Errorf("latex = %q", events[0].LaTeX)
	}
}

func TestEvaluateEmptyIsNoOp(t *testing.T) {
	c, gw := newTestController(fixedResult(5))
	var events int
	c.SetResultCallback(func(ResultEvent) { events++ })

	c.Evaluate(context.Background(), false)

	if len(gw.requests) != 0 {
		t.Error("empty evaluate reached the gateway")
	}
	if entries, _ := c.History(); len(entries) != 0 {
		t.Error("empty evaluate produced history")
	}
	if events != 0 {
		t.Error("empty evaluate emitted an event")
	}
}

func TestEvaluateAutoClosesParens(t *testing.T) {
	c, gw := newTestController(fixedResult(1))

	press(t, c, token.Sin.Direct)
	press(t, c, digits("90")...)
	c.Evaluate(context.Background(), false)

	if len(gw.requests) != 1 || gw.requests[0].Expression != "sin(90)" {
		t.Fatalf("requests = %+v, want sin(90)", gw.requests)
	}
	entries, _ := c.History()
	last := entries[0].Tokens[len(entries[0].Tokens)-1]
	if last.Payload != ")" {
		t.Errorf("auto-closed paren missing from history tokens: %+v", entries[0].Tokens)
	}
}

func TestRoundedEvaluate(t *testing.T) {
	c, _ := newTestController(fixedResult(2.5))
	press(t, c, digits("10/4")...)
	st := c.Evaluate(context.Background(), true)

	if st.Answer == nil || st.Answer.LaTeX != `10/4 \approx 2.5` {
		t.Errorf("answer = %+v", st.Answer)
	}
	entries, _ := c.History()
	if !entries[0].Rounded {
		t.Error("rounded flag not recorded")
	}
	// The history line renders display glyphs, not payloads.
	if st.HistoryText != "10÷4 ≈ 2.5" {
		t.Errorf("history text = %q", st.HistoryText)
	}
}

func TestMisfireDiscarded(t *testing.T) {
	c, _ := newTestController(fixedResult(5))
	var events int
	c.SetResultCallback(func(ResultEvent) { events++ })

	press(t, c, digits("5")...)
	st := c.Evaluate(context.Background(), false)

	if st.Answer != nil {
		t.Error("misfire populated an answer")
	}
	if entries, _ := c.History(); len(entries) != 0 {
		t.Error("misfire reached history")
	}
	if len(st.Tokens) != 1 {
		t.Error("misfire cleared the expression")
	}
	if events != 0 {
		t.Error("misfire emitted an event")
	}
}

func TestEmptyResponseIgnored(t *testing.T) {
	// Neither an error nor a result: a shape only a custom evaluator can
	// produce. It must not panic or disturb state.
	c, _ := newTestController(func(req engine.Request) engine.Response {
		return engine.Response{Expression: req.Expression}
	})
	var events int
	c.SetResultCallback(func(ResultEvent) { events++ })

	press(t, c, digits("2+3")...)
	st := c.Evaluate(context.Background(), false)

	if st.Answer != nil || st.ErrText != "" {
		t.Errorf("state = %+v", st)
	}
	if entries, _ := c.History(); len(entries) != 0 {
		t.Error("empty response reached history")
	}
	if events != 0 {
		t.Error("empty response emitted an event")
	}
}

func TestErrorResponse(t *testing.T) {
	c, _ := newTestController(nil) // stub answers with a syntax error
	var events []ResultEvent
	c.SetResultCallback(func(ev ResultEvent) { events = append(events, ev) })

	press(t, c, digits("2+")...)
	st := c.Evaluate(context.Background(), false)

	if st.ErrText != engine.ErrSyntax {
		t.Errorf("err = %q", st.ErrText)
	}
	if st.Answer != nil {
		t.Error("error left an answer")
	}
	if len(st.Tokens) != 2 {
		t.Error("error cleared the expression; it must stay editable")
	}
	if entries, _ := c.History(); len(entries) != 0 {
		t.Error("error reached history")
	}
	if len(events) != 1 || events[0].Err != engine.ErrSyntax {
		t.Errorf("events = %+v", events)
	}
}

func TestAppendClearsError(t *testing.T) {
	c, _ := newTestController(nil)
	press(t, c, digits("2+")...)
	c.Evaluate(context.Background(), false)

	st, ok := c.Append(token.New("3", token.Number))
	if !ok {
		t.Fatal("append after error rejected")
	}
	if st.ErrText != "" {
		t.Errorf("err not cleared: %q", st.ErrText)
	}
}

func TestAnswerChainsThroughOperator(t *testing.T) {
	c, _ := newTestController(fixedResult(5))
	press(t, c, digits("2+3")...)
	c.Evaluate(context.Background(), false)

	st, ok := c.Append(token.Plus)
	if !ok {
		t.Fatal("+ after answer rejected")
	}
	if st.Answer != nil {
		t.Error("answer still live after chaining")
	}
	if len(st.Tokens) != 2 || st.Tokens[0].Payload != "5" || st.Tokens[0].Kind != token.Number {
		t.Errorf("tokens = %+v", st.Tokens)
	}
}

func TestNegativeAnswerWrapped(t *testing.T) {
	c, _ := newTestController(fixedResult(-5))
	press(t, c, digits("2-7")...)
	c.Evaluate(context.Background(), false)

	st, _ := c.Append(token.Times)
	if st.Tokens[0].Payload != "(-5)" {
		t.Errorf("payload = %q, want (-5)", st.Tokens[0].Payload)
	}
	if st.Tokens[0].Display != "(-5)" {
		t.Errorf("display = %q, want (-5)", st.Tokens[0].Display)
	}
}

func TestComplexAnswerModifierRejected(t *testing.T) {
	c, _ := newTestController(complexResult(0, 2))
	press(t, c, digits("9")...) // any expression; the stub decides the result
	c.Evaluate(context.Background(), false)

	if st := c.State(); st.Answer == nil || st.Answer.Imag == nil {
		t.Fatalf("expected a live complex answer, got %+v", st.Answer)
	}
	if _, ok := c.Append(token.Fact); ok {
		t.Error("modifier on a complex answer should be rejected")
	}
	// An operator still chains, with the complex literal parenthesized.
	st, ok := c.Append(token.Plus)
	if !ok {
		t.Fatal("+ after complex answer rejected")
	}
	if st.Tokens[0].Payload != "(0+2*i)" {
		t.Errorf("payload = %q, want (0+2*i)", st.Tokens[0].Payload)
	}
}

func TestAnswerDiscardedByNumber(t *testing.T) {
	c, _ := newTestController(fixedResult(5))
	press(t, c, digits("2+3")...)
	c.Evaluate(context.Background(), false)

	st, _ := c.Append(token.New("7", token.Number))
	if st.Answer != nil {
		t.Error("answer should be discarded")
	}
	if len(st.Tokens) != 1 || st.Tokens[0].Payload != "7" {
		t.Errorf("tokens = %+v", st.Tokens)
	}
}

func TestDeleteLast(t *testing.T) {
	c, _ := newTestController(fixedResult(5))

	// Deleting the live answer counts as the delete.
	press(t, c, digits("2+3")...)
	c.Evaluate(context.Background(), false)
	st := c.DeleteLast()
	if st.Answer != nil {
		t.Error("answer not consumed by delete")
	}

	// Plain token pop.
	press(t, c, digits("12")...)
	st = c.DeleteLast()
	if st.ScreenText != "1" {
		t.Errorf("screen = %q, want 1", st.ScreenText)
	}

	// Delete by index.
	press(t, c, digits("3")...)
	st = c.DeleteLast(0)
	if st.ScreenText != "3" {
		t.Errorf("screen = %q, want 3", st.ScreenText)
	}

	// Out-of-range index falls back to popping the tail.
	st = c.DeleteLast(9)
	if st.ScreenText != "" {
		t.Errorf("screen = %q, want empty", st.ScreenText)
	}
}

func TestClearAllSoftThenHard(t *testing.T) {
	c, _ := newTestController(fixedResult(5))
	press(t, c, digits("2+3")...)
	c.Evaluate(context.Background(), false)
	c.ToggleInvertTrig()
	press(t, c, digits("1")...)

	// Soft: input goes, history stays.
	st := c.ClearAll()
	if len(st.Tokens) != 0 {
		t.Error("soft clear left input")
	}
	if entries, _ := c.History(); len(entries) != 1 {
		t.Error("soft clear touched history")
	}
	if !st.InvertTrig {
		t.Error("soft clear touched the invert-trig flag")
	}

	// Hard: everything goes.
	st = c.ClearAll()
	if entries, _ := c.History(); len(entries) != 0 {
		t.Error("hard clear kept history")
	}
	if st.InvertTrig {
		t.Error("hard clear kept the invert-trig flag")
	}
	if st.HistoryText != "" {
		t.Errorf("history text = %q", st.HistoryText)
	}
}

func TestToggleAngleUnit(t *testing.T) {
	c, gw := newTestController(nil)

	// Explicit no-op: same unit, no message.
	st := c.ToggleAngleUnit(mathexpr.Degrees)
	if st.AngleUnit != mathexpr.Degrees || len(gw.configs) != 0 {
		t.Errorf("no-op toggle sent %+v", gw.configs)
	}

	st = c.ToggleAngleUnit()
	if st.AngleUnit != mathexpr.Radians {
		t.Errorf("unit = %v, want rad", st.AngleUnit)
	}
	if len(gw.configs) != 1 || gw.configs[0].AngleUnit != "rad" {
		t.Errorf("configs = %+v", gw.configs)
	}

	st = c.ToggleAngleUnit(mathexpr.Gradians)
	if st.AngleUnit != mathexpr.Gradians || gw.configs[len(gw.configs)-1].AngleUnit != "grad" {
		t.Errorf("explicit grad failed: %v %+v", st.AngleUnit, gw.configs)
	}

	// Cycling from grad lands on deg.
	st = c.ToggleAngleUnit()
	if st.AngleUnit != mathexpr.Degrees {
		t.Errorf("unit = %v, want deg", st.AngleUnit)
	}
}

func TestInitialUnitPushed(t *testing.T) {
	gw := &stubGateway{}
	NewController(gw, history.NewMemory(), Config{AngleUnit: mathexpr.Radians, DecimalSep: "."})
	if len(gw.configs) != 1 || gw.configs[0].AngleUnit != "rad" {
		t.Errorf("configs = %+v", gw.configs)
	}
}

func TestInsertPreviousAnswer(t *testing.T) {
	c, _ := newTestController(fixedResult(42))

	// Empty history: no-op.
	st := c.InsertPreviousAnswer()
	if len(st.Tokens) != 0 {
		t.Error("insert on empty history appended tokens")
	}

	press(t, c, digits("6*7")...)
	c.Evaluate(context.Background(), false)
	c.DeleteLast() // consume the live answer; history remains

	st = c.InsertPreviousAnswer()
	if len(st.Tokens) != 1 {
		t.Fatalf("tokens = %+v", st.Tokens)
	}
	if st.Tokens[0].Display != "Ans" || st.Tokens[0].Payload != "42" || st.Tokens[0].Kind != token.Number {
		t.Errorf("token = %+v", st.Tokens[0])
	}
}

func TestInsertPreviousAnswerComplexWrapped(t *testing.T) {
	c, _ := newTestController(complexResult(1, -2))
	press(t, c, digits("9")...)
	c.Evaluate(context.Background(), false)
	c.ClearAll()

	st := c.InsertPreviousAnswer()
	if st.Tokens[0].Payload != "(1-2*i)" {
		t.Errorf("payload = %q, want (1-2*i)", st.Tokens[0].Payload)
	}
}

func TestInsertRandomNumber(t *testing.T) {
	c, _ := newTestController(nil)
	pat := regexp.MustCompile(`^0\.\d{8}$`)

	st := c.InsertRandomNumber()
	if len(st.Tokens) != 1 || !pat.MatchString(st.Tokens[0].Payload) {
		t.Fatalf("tokens = %+v", st.Tokens)
	}

	// After a digit, an explicit × is inserted first.
	c.ClearAll()
	press(t, c, digits("5")...)
	st = c.InsertRandomNumber()
	if len(st.Tokens) != 3 || st.Tokens[1].Payload != "*" {
		t.Errorf("tokens = %+v", st.Tokens)
	}

	// After a non-digit number token (π), no ×.
	c.ClearAll()
	press(t, c, token.Pi)
	st = c.InsertRandomNumber()
	if len(st.Tokens) != 2 {
		t.Errorf("tokens = %+v", st.Tokens)
	}
}

func TestDecimalSeparatorLocalized(t *testing.T) {
	gw := &stubGateway{fn: fixedResult(0.5)}
	c := NewController(gw, history.NewMemory(), Config{DecimalSep: ","})

	st := press(t, c, digits("0.5")...)
	if st.ScreenText != "0,5" {
		t.Errorf("screen = %q, want 0,5", st.ScreenText)
	}

	c.Evaluate(context.Background(), false)
	if len(gw.requests) != 1 || gw.requests[0].Expression != "0.5" {
		t.Errorf("payload = %+v, want 0.5", gw.requests)
	}
}

func TestThousandsGroupingInAnswer(t *testing.T) {
	gw := &stubGateway{fn: fixedResult(1234567)}
	c := NewController(gw, history.NewMemory(), Config{DecimalSep: ".", ThousandSep: ","})

	press(t, c, digits("1234567+0")...)
	st := c.Evaluate(context.Background(), false)
	if st.Answer == nil || st.Answer.Display != "1,234,567" {
		t.Errorf("answer = %+v", st.Answer)
	}
}
