package parser

import (
	"fmt"
	"strings"

	"github.com/querylint/querylint/tokenizer"
)

// Format renders a statement back to canonical SQL text. Parsing the
// result yields a statement structurally equal to the input, so the
// canonical form is idempotent.
func Format(stmt *SelectStatement) string {
	var sb strings.Builder

	sb.WriteString("SELECT ")

	for i, item := range stmt.Items {
		if i > 0 {
			sb.WriteString(", ")
		}

		formatSelectItem(&sb, item)
	}

	sb.WriteString(" FROM ")

	for i, ref := range stmt.From {
		if i > 0 {
			sb.WriteString(", ")
		}

		formatTableRef(&sb, ref)
	}

	for _, join := range stmt.Joins {
		sb.WriteString(" ")
		sb.WriteString(join.Kind.String())
		sb.WriteString(" ")
		formatTableRef(&sb, join.Table)
		sb.WriteString(" ON ")
		formatExpr(&sb, join.Condition, false)
	}

	if stmt.Where != nil {
		sb.WriteString(" WHERE ")
		formatExpr(&sb, stmt.Where, false)
	}

	return sb.String()
}

// FormatExpression renders a single expression in canonical form. It is
// used for deriving result column names of unaliased computed expressions.
func FormatExpression(expr Expression) string {
	var sb strings.Builder

	formatExpr(&sb, expr, false)

	return sb.String()
}

func formatSelectItem(sb *strings.Builder, item SelectItem) {
	switch it := item.(type) {
	case *StarItem:
		if it.Qualifier != "" {
			writeIdent(sb, it.Qualifier)
			sb.WriteString(".")
		}

		sb.WriteString("*")
	case *ExprItem:
		formatExpr(sb, it.Expr, false)

		if it.Alias != "" {
			sb.WriteString(" AS ")
			writeIdent(sb, it.Alias)
		}
	}
}

func formatTableRef(sb *strings.Builder, ref TableRef) {
	writeIdent(sb, ref.Name)

	if ref.Alias != "" {
		sb.WriteString(" AS ")
		writeIdent(sb, ref.Alias)
	}
}

// formatExpr renders an expression. Compound sub-expressions are always
// parenthesized so that reparsing preserves the tree shape.
func formatExpr(sb *strings.Builder, expr Expression, nested bool) {
	compound := isCompound(expr)
	if nested && compound {
		sb.WriteString("(")
	}

	switch e := expr.(type) {
	case *ColumnRef:
		if e.Table != "" {
			writeIdent(sb, e.Table)
			sb.WriteString(".")
		}

		writeIdent(sb, e.Name)
	case *Literal:
		formatLiteral(sb, e)
	case *Placeholder:
		if e.Name == "" {
			sb.WriteString("?")
		} else {
			sb.WriteString("@")
			sb.WriteString(e.Name)
		}
	case *UnaryExpr:
		switch e.Op {
		case UnaryNot:
			sb.WriteString("NOT ")
		case UnaryMinus:
			sb.WriteString("-")
		case UnaryPlus:
			sb.WriteString("+")
		}

		formatExpr(sb, e.Expr, true)
	case *BinaryExpr:
		formatExpr(sb, e.Left, true)
		fmt.Fprintf(sb, " %s ", e.Op)
		formatExpr(sb, e.Right, true)
	case *LikeExpr:
		formatExpr(sb, e.Left, true)

		if e.Negated {
			sb.WriteString(" NOT")
		}

		sb.WriteString(" LIKE ")
		formatExpr(sb, e.Pattern, true)
	case *InExpr:
		formatExpr(sb, e.Left, true)

		if e.Negated {
			sb.WriteString(" NOT")
		}

		sb.WriteString(" IN (")

		for i, item := range e.List {
			if i > 0 {
				sb.WriteString(", ")
			}

			formatExpr(sb, item, true)
		}

		sb.WriteString(")")
	case *BetweenExpr:
		formatExpr(sb, e.Expr, true)

		if e.Negated {
			sb.WriteString(" NOT")
		}

		sb.WriteString(" BETWEEN ")
		formatExpr(sb, e.Lower, true)
		sb.WriteString(" AND ")
		formatExpr(sb, e.Upper, true)
	case *IsNullExpr:
		formatExpr(sb, e.Expr, true)

		if e.Negated {
			sb.WriteString(" IS NOT NULL")
		} else {
			sb.WriteString(" IS NULL")
		}
	}

	if nested && compound {
		sb.WriteString(")")
	}
}

func isCompound(expr Expression) bool {
	switch expr.(type) {
	case *ColumnRef, *Literal, *Placeholder:
		return false
	default:
		return true
	}
}

func formatLiteral(sb *strings.Builder, lit *Literal) {
	switch lit.Kind {
	case LiteralString:
		sb.WriteString("'")
		sb.WriteString(strings.ReplaceAll(lit.Value, "'", "''"))
		sb.WriteString("'")
	case LiteralNull:
		sb.WriteString("NULL")
	default:
		sb.WriteString(lit.Value)
	}
}

// writeIdent quotes identifiers that would otherwise lex as keywords.
func writeIdent(sb *strings.Builder, name string) {
	if tokenizer.IsReservedWord(name) {
		sb.WriteString(`"`)
		sb.WriteString(name)
		sb.WriteString(`"`)

		return
	}

	sb.WriteString(name)
}
