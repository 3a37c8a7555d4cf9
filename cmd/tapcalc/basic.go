package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"nickandperla.net/tapcalc/pkg/tapcalc"
)

// runBasic handles non-TTY input: each line is replayed as key presses and
// evaluated. A few colon commands cover the keys a keypad would provide.
func runBasic(calc *tapcalc.Calculator) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(">>> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if quit := basicCommand(calc, line); quit {
				return
			}
			continue
		}

		if err := calc.Type(line); err != nil {
			fmt.Printf("Error: %v\n", err)
			calc.ClearAll()
			continue
		}

		st := calc.Evaluate(context.Background(), false)
		switch {
		case st.ErrText != "":
			fmt.Printf("Error: %s\n", st.ErrText)
			calc.ClearAll()
		case st.Answer != nil:
			fmt.Println(st.Answer.Display)
		case len(st.Tokens) > 0:
			// A discarded submission would otherwise leak into the next line.
			calc.ClearAll()
		}
	}
}

func basicCommand(calc *tapcalc.Calculator, line string) (quit bool) {
	switch line {
	case ":quit", ":q":
		return true
	case ":history":
		entries, err := calc.History()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		for _, e := range entries {
			joiner := "="
			if e.Rounded {
				joiner = "≈"
			}
			fmt.Printf("%s %s %s\n", e.Display, joiner, e.Answer)
		}
	case ":clear":
		// First press soft-clears pending input, second wipes history.
		calc.ClearAll()
		calc.ClearAll()
	case ":deg":
		calc.ToggleAngleUnit(tapcalc.Degrees)
	case ":rad":
		calc.ToggleAngleUnit(tapcalc.Radians)
	case ":grad":
		calc.ToggleAngleUnit(tapcalc.Gradians)
	default:
		fmt.Printf("Unknown command: %s\n", line)
	}
	return false
}
