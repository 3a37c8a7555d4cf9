// Command tapcalc is the tapcalc keypad calculator CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"nickandperla.net/tapcalc/pkg/tapcalc"
)

func main() {
	// .env provides defaults; flags override.
	godotenv.Load()

	var (
		evalStr   = flag.String("e", "", "Evaluate an expression and exit")
		dbPath    = flag.String("db", envOr("TAPCALC_DB", "tapcalc.db"), "SQLite history database path")
		noPersist = flag.Bool("no-persist", false, "Keep history in memory only")
		angle     = flag.String("angle", envOr("TAPCALC_ANGLE", "deg"), "Angle unit: deg, rad, or grad")
		decimal   = flag.String("decimal", envOr("TAPCALC_DECIMAL", "."), "Decimal separator")
		thousand  = flag.String("thousand", envOr("TAPCALC_THOUSAND", ""), "Thousands separator (empty disables grouping)")
		timeout   = flag.Duration("timeout", 5*time.Second, "Evaluation timeout")
	)

	flag.Parse()

	unit, ok := tapcalc.ParseAngleUnit(*angle)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown angle unit: %s\n", *angle)
		os.Exit(1)
	}

	opts := []tapcalc.Option{
		tapcalc.WithAngleUnit(unit),
		tapcalc.WithSeparators(*decimal, *thousand),
		tapcalc.WithTimeout(*timeout),
	}
	if *noPersist {
		opts = append(opts, tapcalc.WithMemoryHistory())
	} else {
		opts = append(opts, tapcalc.WithSQLiteHistory(*dbPath))
	}

	calc := tapcalc.New(opts...)
	defer calc.Close()

	if *evalStr != "" {
		if err := evalOnce(calc, *evalStr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runBasic(calc)
		return
	}

	p := tea.NewProgram(newModel(calc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// evalOnce types one expression, evaluates it, and prints the result.
func evalOnce(calc *tapcalc.Calculator, expr string) error {
	if err := calc.Type(expr); err != nil {
		return err
	}
	st := calc.Evaluate(context.Background(), false)
	if st.ErrText != "" {
		return fmt.Errorf("%s", st.ErrText)
	}
	if st.Answer != nil {
		fmt.Println(st.Answer.Display)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
