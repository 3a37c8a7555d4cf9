package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the non-character key bindings. Digits, operators, parens
// and the decimal point are typed directly and mapped through the token
// tables.
type keyMap struct {
	Evaluate   key.Binding
	RoundEval  key.Binding
	Delete     key.Binding
	Clear      key.Binding
	InvertTrig key.Binding
	AngleUnit  key.Binding
	Ans        key.Binding
	Random     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Evaluate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "evaluate"),
		),
		RoundEval: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "evaluate (rounded)"),
		),
		Delete: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear (twice: reset)"),
		),
		InvertTrig: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "invert trig"),
		),
		AngleUnit: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "deg/rad"),
		),
		Ans: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Ans"),
		),
		Random: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "random"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Evaluate, k.Delete, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Evaluate, k.RoundEval, k.Delete, k.Clear},
		{k.InvertTrig, k.AngleUnit, k.Ans, k.Random},
		{k.Help, k.Quit},
	}
}
