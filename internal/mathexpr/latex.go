// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package mathexpr

import "strings"

// latexNames maps function names to their LaTeX commands. sqrt, abs and exp
// have structural forms handled separately.
var latexNames = map[string]string{
	"sin":  `\sin`,
	"cos":  `\cos`,
	"tan":  `\tan`,
	"asin": `\arcsin`,
	"acos": `\arccos`,
	"atan": `\arctan`,
	"ln":   `\ln`,
	"log":  `\log_{10}`,
}

// LaTeX renders a parsed expression tree as LaTeX. Explicit parentheses in
// the source are preserved; division renders as \frac.
func LaTeX(n Node) string {
	var sb strings.Builder
	writeLaTeX(&sb, n)
	return sb.String()
}

func writeLaTeX(sb *strings.Builder, n Node) {
	switch t := n.(type) {
	case NumberLit:
		sb.WriteString(t.Literal)

	case Constant:
		if t.Name == "pi" {
			sb.WriteString(`\pi`)
		} else {
			sb.WriteString(t.Name)
		}

	case Paren:
		sb.WriteString(`\left(`)
		writeLaTeX(sb, t.Inner)
		sb.WriteString(`\right)`)

	case Unary:
		sb.WriteString("-")
		writeLaTeX(sb, t.Operand)

	case Factorial:
		writeLaTeX(sb, t.Operand)
		sb.WriteString("!")

	case Binary:
		switch t.Op {
		case '/':
			sb.WriteString(`\frac{`)
			writeLaTeX(sb, t.Left)
			sb.WriteString(`}{`)
			writeLaTeX(sb, t.Right)
			sb.WriteString(`}`)
		case '^':
			sb.WriteString(`{`)
			writeLaTeX(sb, t.Left)
			sb.WriteString(`}^{`)
			writeLaTeX(sb, t.Right)
			sb.WriteString(`}`)
		case '*':
			writeLaTeX(sb, t.Left)
			sb.WriteString(`\cdot `)
			writeLaTeX(sb, t.Right)
		default:
			writeLaTeX(sb, t.Left)
			sb.WriteByte(t.Op)
			writeLaTeX(sb, t.Right)
		}

	case Call:
		switch t.Name {
		case "sqrt":
			sb.WriteString(`\sqrt{`)
			writeLaTeX(sb, t.Arg)
			sb.WriteString(`}`)
		case "abs":
			sb.WriteString(`\left|`)
			writeLaTeX(sb, t.Arg)
			sb.WriteString(`\right|`)
		case "exp":
			sb.WriteString(`e^{`)
			writeLaTeX(sb, t.Arg)
			sb.WriteString(`}`)
		default:
			if cmd, ok := latexNames[t.Name]; ok {
				sb.WriteString(cmd)
			} else {
				sb.WriteString(`\operatorname{` + t.Name + `}`)
			}
			sb.WriteString(`\left(`)
			writeLaTeX(sb, t.Arg)
			sb.WriteString(`\right)`)
		}
	}
}
