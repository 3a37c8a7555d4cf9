package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nickandperla.net/tapcalc/internal/input"
	"nickandperla.net/tapcalc/internal/token"
	"nickandperla.net/tapcalc/pkg/tapcalc"
)

var (
	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(44)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	ghostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	keycapStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	historyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// funcKeys maps single letters to spelled-out function names. Trig letters
// go through PressTrig so the invert flag applies.
var funcKeys = map[string]string{
	"q": "sqrt",
	"l": "ln",
	"g": "log",
	"x": "exp",
	"b": "abs",
}

type model struct {
	calc       *tapcalc.Calculator
	st         input.State
	keys       keyMap
	help       help.Model
	evaluating bool
	width      int
}

type evalDoneMsg struct {
	st input.State
}

func newModel(calc *tapcalc.Calculator) model {
	return model{
		calc: calc,
		st:   calc.State(),
		keys: newKeyMap(),
		help: help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case evalDoneMsg:
		m.evaluating = false
		m.st = msg.st
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.evaluating {
			// One in-flight evaluation at a time; drop keys until it lands.
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Evaluate):
		return m.startEvaluate(false)
	case key.Matches(msg, m.keys.RoundEval):
		return m.startEvaluate(true)
	case key.Matches(msg, m.keys.Delete):
		m.st = m.calc.DeleteLast()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.st = m.calc.ClearAll()
		return m, nil
	case key.Matches(msg, m.keys.InvertTrig):
		m.st = m.calc.ToggleInvertTrig()
		return m, nil
	case key.Matches(msg, m.keys.AngleUnit):
		m.st = m.calc.ToggleAngleUnit()
		return m, nil
	case key.Matches(msg, m.keys.Ans):
		m.st = m.calc.InsertPreviousAnswer()
		return m, nil
	case key.Matches(msg, m.keys.Random):
		m.st = m.calc.InsertRandomNumber()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	s := msg.String()
	switch s {
	case "s":
		m.st, _ = m.calc.PressTrig(token.Sin)
		return m, nil
	case "c":
		m.st, _ = m.calc.PressTrig(token.Cos)
		return m, nil
	case "t":
		m.st, _ = m.calc.PressTrig(token.Tan)
		return m, nil
	case "p":
		m.st, _ = m.calc.Press(token.Pi)
		return m, nil
	case "e":
		m.st, _ = m.calc.Press(token.Euler)
		return m, nil
	case "i":
		m.st, _ = m.calc.Press(token.Imag)
		return m, nil
	}
	if name, ok := funcKeys[s]; ok {
		if t, ok := token.FuncByName(name); ok {
			m.st, _ = m.calc.Press(t)
		}
		return m, nil
	}
	if len([]rune(s)) == 1 {
		if t, ok := token.FromRune([]rune(s)[0]); ok {
			m.st, _ = m.calc.Press(t)
		}
	}
	return m, nil
}

// startEvaluate runs the evaluation off the update loop; the gateway may
// take up to its timeout to answer.
func (m model) startEvaluate(round bool) (tea.Model, tea.Cmd) {
	if len(m.st.Tokens) == 0 {
		return m, nil
	}
	m.evaluating = true
	calc := m.calc
	return m, func() tea.Msg {
		return evalDoneMsg{st: calc.Evaluate(context.Background(), round)}
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(screenStyle.Render(m.renderScreen()))
	b.WriteString("\n")
	b.WriteString(m.renderHistory())
	b.WriteString(m.renderKeypad())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) renderStatus() string {
	parts := []string{"tapcalc", m.st.AngleUnit.String()}
	if m.st.InvertTrig {
		parts = append(parts, "inv")
	}
	if m.evaluating {
		parts = append(parts, "…")
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}

func (m model) renderScreen() string {
	switch {
	case m.st.ErrText != "":
		return errStyle.Render(m.st.ErrText)
	case m.st.Answer != nil:
		return answerStyle.Render(m.st.Answer.Display)
	case m.st.ScreenText == "":
		return ghostStyle.Render("0")
	default:
		return m.st.ScreenText + ghostStyle.Render(m.st.AutoComplete)
	}
}

func (m model) renderHistory() string {
	entries, err := m.calc.History()
	if err != nil || len(entries) == 0 {
		return ""
	}
	start := 0
	if len(entries) > 5 {
		start = len(entries) - 5
	}
	var b strings.Builder
	for _, e := range entries[start:] {
		joiner := "="
		if e.Rounded {
			joiner = "≈"
		}
		b.WriteString(historyStyle.Render(fmt.Sprintf("%s %s %s", e.Display, joiner, e.Answer)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderKeypad() string {
	trig := func(p token.TrigPair) string {
		t := p.Pick(m.st.InvertTrig)
		return strings.TrimSuffix(t.Display, "(")
	}

	rows := [][]string{
		{"7", "8", "9", "÷", trig(token.Sin)},
		{"4", "5", "6", "×", trig(token.Cos)},
		{"1", "2", "3", "-", trig(token.Tan)},
		{"0", ".", "π", "+", "√"},
		{"(", ")", "^", "!", "Ans"},
	}

	var rendered []string
	for _, row := range rows {
		caps := make([]string, len(row))
		for i, label := range row {
			caps[i] = keycapStyle.Render(label)
		}
		rendered = append(rendered, lipgloss.JoinHorizontal(lipgloss.Top, caps...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
