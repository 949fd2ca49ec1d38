// Package binder resolves parsed statements against a schema snapshot and
// infers the types of every output column and every parameter placeholder.
package binder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	querylint "github.com/querylint/querylint"
	"github.com/querylint/querylint/parser"
)

// Bind resolves every identifier in the statement against the snapshot.
// On success it returns the fully typed query description plus any
// advisories (duplicate result column names). On failure it returns the
// ordered sequence of all semantic errors found in one pass.
func Bind(stmt *parser.SelectStatement, snapshot *querylint.Snapshot) (*querylint.ValidatedQuery, []string, []error) {
	b := &binder{
		snapshot: snapshot,
		scope:    newScope(),
		params:   map[string]*paramState{},
	}

	b.bindFrom(stmt)

	columns := b.bindOutputs(stmt.Items)

	if stmt.Where != nil {
		b.bindCondition(stmt.Where, "WHERE clause")
	}

	parameters := b.finishParams(stmt)

	warnings := duplicateNameWarnings(columns)

	if len(b.errs) > 0 {
		return nil, nil, b.errs
	}

	return &querylint.ValidatedQuery{
		ResultColumns: columns,
		Parameters:    parameters,
	}, warnings, nil
}

type binder struct {
	snapshot *querylint.Snapshot
	scope    *scope
	errs     []error

	params map[string]*paramState
}

func (b *binder) errorf(sentinel error, format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

// inferred is the result of typing one expression node. known is false
// when the type could not be determined (unresolved reference or bare
// placeholder); unknown operands never cascade into further errors.
type inferred struct {
	typ      querylint.ColumnType
	nullable bool
	known    bool
	// param is set when the node is a bare placeholder whose type is
	// still open for inference from the surrounding context.
	param *parser.Placeholder
}

func known(typ querylint.ColumnType, nullable bool) inferred {
	return inferred{typ: typ, nullable: nullable, known: true}
}

var unknown = inferred{}

// ---- scope ----

type tableSource struct {
	alias string
	table *querylint.Table
	// forcedNullable marks every column of the source nullable because
	// the table sits on the non-preserved side of an outer join.
	forcedNullable bool
}

type columnBinding struct {
	source *tableSource
	column *querylint.Column
}

func (cb *columnBinding) nullable() bool {
	return cb.column.Nullable || cb.source.forcedNullable
}

type scope struct {
	sources       []*tableSource
	aliasIndex    map[string]*tableSource
	columnsByName map[string][]*columnBinding
}

func newScope() *scope {
	return &scope{
		aliasIndex:    map[string]*tableSource{},
		columnsByName: map[string][]*columnBinding{},
	}
}

func (s *scope) addTable(table *querylint.Table, alias string) (*tableSource, error) {
	if alias == "" {
		alias = table.Name
	}

	key := strings.ToLower(alias)
	if _, exists := s.aliasIndex[key]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTableAlias, alias)
	}

	source := &tableSource{alias: alias, table: table}
	s.sources = append(s.sources, source)
	s.aliasIndex[key] = source

	for _, col := range table.Columns {
		binding := &columnBinding{source: source, column: col}
		nameKey := strings.ToLower(col.Name)
		s.columnsByName[nameKey] = append(s.columnsByName[nameKey], binding)
	}

	return source, nil
}

func (s *scope) sourceByAlias(alias string) (*tableSource, bool) {
	source, ok := s.aliasIndex[strings.ToLower(alias)]
	return source, ok
}

// ---- FROM / JOIN ----

func (b *binder) bindFrom(stmt *parser.SelectStatement) {
	for _, ref := range stmt.From {
		b.addTable(ref)
	}

	for _, join := range stmt.Joins {
		right := b.addTable(join.Table)

		switch join.Kind {
		case parser.JoinLeft:
			if right != nil {
				right.forcedNullable = true
			}
		case parser.JoinRight:
			for _, source := range b.scope.sources {
				if source != right {
					source.forcedNullable = true
				}
			}
		case parser.JoinFull:
			for _, source := range b.scope.sources {
				source.forcedNullable = true
			}
		}

		b.bindCondition(join.Condition, "JOIN condition")
	}
}

func (b *binder) addTable(ref parser.TableRef) *tableSource {
	table, ok := b.snapshot.Table(ref.Name)
	if !ok {
		b.errorf(ErrUnknownTable, "%s", ref.Name)
		return nil
	}

	source, err := b.scope.addTable(table, ref.Alias)
	if err != nil {
		b.errs = append(b.errs, err)
		return nil
	}

	return source
}

func (b *binder) bindCondition(expr parser.Expression, context string) {
	result := b.bindExpression(expr, context)
	if result.known && result.typ != querylint.TypeBool && result.typ != querylint.TypeAny {
		b.errorf(ErrConditionNotBoolean, "%s evaluates to %s", context, result.typ)
	}
}

// ---- outputs ----

func (b *binder) bindOutputs(items []parser.SelectItem) []querylint.ResultColumn {
	var columns []querylint.ResultColumn

	for _, item := range items {
		switch it := item.(type) {
		case *parser.StarItem:
			columns = append(columns, b.expandStar(it)...)
		case *parser.ExprItem:
			columns = append(columns, b.bindOutputExpr(it))
		}
	}

	return columns
}

// expandStar expands * or alias.* to the full ordered column list of the
// referenced table(s), in table-declaration then column-declaration order.
func (b *binder) expandStar(item *parser.StarItem) []querylint.ResultColumn {
	var sources []*tableSource

	if item.Qualifier != "" {
		source, ok := b.scope.sourceByAlias(item.Qualifier)
		if !ok {
			b.errorf(ErrUnknownTable, "%s", item.Qualifier)
			return nil
		}

		sources = []*tableSource{source}
	} else {
		sources = b.scope.sources
	}

	var columns []querylint.ResultColumn

	for _, source := range sources {
		for _, col := range source.table.Columns {
			columns = append(columns, querylint.ResultColumn{
				Name:     col.Name,
				Type:     col.Type,
				Nullable: col.Nullable || source.forcedNullable,
			})
		}
	}

	return columns
}

func (b *binder) bindOutputExpr(item *parser.ExprItem) querylint.ResultColumn {
	result := b.bindExpression(item.Expr, "SELECT list")

	name := item.Alias
	if name == "" {
		if ref, ok := item.Expr.(*parser.ColumnRef); ok {
			// Keep the schema's declared spelling for direct references.
			if binding := b.lookupQuiet(ref); binding != nil {
				name = binding.column.Name
			} else {
				name = ref.Name
			}
		} else {
			name = parser.FormatExpression(item.Expr)
		}
	}

	typ := querylint.TypeAny
	if result.known {
		typ = result.typ
	}

	return querylint.ResultColumn{Name: name, Type: typ, Nullable: result.nullable}
}

// lookupQuiet resolves a column reference without recording errors; used
// only for naming, after bindExpression already reported any problem.
func (b *binder) lookupQuiet(ref *parser.ColumnRef) *columnBinding {
	if ref.Table != "" {
		source, ok := b.scope.sourceByAlias(ref.Table)
		if !ok {
			return nil
		}

		col, ok := source.table.Column(ref.Name)
		if !ok {
			return nil
		}

		return &columnBinding{source: source, column: col}
	}

	matches := b.scope.columnsByName[strings.ToLower(ref.Name)]
	if len(matches) != 1 {
		return nil
	}

	return matches[0]
}

// ---- expression typing ----

func (b *binder) bindExpression(expr parser.Expression, context string) inferred {
	switch e := expr.(type) {
	case *parser.ColumnRef:
		return b.bindColumnRef(e, context)
	case *parser.Literal:
		return b.bindLiteral(e)
	case *parser.Placeholder:
		return inferred{param: e}
	case *parser.UnaryExpr:
		return b.bindUnary(e, context)
	case *parser.BinaryExpr:
		return b.bindBinary(e, context)
	case *parser.LikeExpr:
		return b.bindLike(e, context)
	case *parser.InExpr:
		return b.bindIn(e, context)
	case *parser.BetweenExpr:
		return b.bindBetween(e, context)
	case *parser.IsNullExpr:
		// IS NULL yields a non-null boolean regardless of its operand;
		// a bare placeholder here gains no type context.
		b.bindExpression(e.Expr, context)
		return known(querylint.TypeBool, false)
	default:
		return unknown
	}
}

func (b *binder) bindColumnRef(ref *parser.ColumnRef, context string) inferred {
	if ref.Table != "" {
		source, ok := b.scope.sourceByAlias(ref.Table)
		if !ok {
			b.errorf(ErrUnknownTable, "%s referenced in %s", ref.Table, context)
			return unknown
		}

		col, ok := source.table.Column(ref.Name)
		if !ok {
			b.errorf(ErrUnknownColumn, "%s.%s in %s", ref.Table, ref.Name, context)
			return unknown
		}

		return known(col.Type, col.Nullable || source.forcedNullable)
	}

	matches := b.scope.columnsByName[strings.ToLower(ref.Name)]

	switch len(matches) {
	case 0:
		b.errorf(ErrUnknownColumn, "%s in %s", ref.Name, context)
		return unknown
	case 1:
		return known(matches[0].column.Type, matches[0].nullable())
	default:
		candidates := make([]string, len(matches))
		for i, match := range matches {
			candidates[i] = match.source.alias + "." + match.column.Name
		}

		b.errorf(ErrAmbiguousColumn, "%s in %s (candidates: %s)", ref.Name, context, strings.Join(candidates, ", "))

		return unknown
	}
}

func (b *binder) bindLiteral(lit *parser.Literal) inferred {
	switch lit.Kind {
	case parser.LiteralNumber:
		if _, err := decimal.NewFromString(lit.Value); err != nil {
			b.errorf(ErrInvalidNumericLiteral, "%s", lit.Value)
			return unknown
		}

		if strings.ContainsAny(lit.Value, ".eE") {
			return known(querylint.TypeDecimal, false)
		}

		return known(querylint.TypeInt, false)
	case parser.LiteralString:
		return known(querylint.TypeString, false)
	case parser.LiteralBoolean:
		return known(querylint.TypeBool, false)
	case parser.LiteralNull:
		return inferred{typ: querylint.TypeAny, nullable: true, known: true}
	default:
		return unknown
	}
}

func (b *binder) bindUnary(e *parser.UnaryExpr, context string) inferred {
	operand := b.bindExpression(e.Expr, context)

	switch e.Op {
	case parser.UnaryNot:
		if operand.param != nil {
			b.noteParam(operand.param, querylint.TypeBool)
			return known(querylint.TypeBool, false)
		}

		if operand.known && operand.typ != querylint.TypeBool && operand.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "NOT expects a boolean operand in %s, found %s", context, operand.typ)
			return unknown
		}

		return known(querylint.TypeBool, operand.nullable)
	default: // unary minus / plus
		if operand.known && !operand.typ.IsNumeric() && operand.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "unary %s expects a numeric operand in %s, found %s", map[parser.UnaryOp]string{parser.UnaryMinus: "-", parser.UnaryPlus: "+"}[e.Op], context, operand.typ)
			return unknown
		}

		return operand
	}
}

func (b *binder) bindBinary(e *parser.BinaryExpr, context string) inferred {
	left := b.bindExpression(e.Left, context)
	right := b.bindExpression(e.Right, context)

	switch {
	case e.Op.IsComparison():
		return b.bindComparison(e.Op, left, right, context)
	case e.Op == parser.OpConcat:
		return b.bindConcat(left, right, context)
	case e.Op.IsArithmetic():
		return b.bindArithmetic(e.Op, left, right, context)
	default: // AND / OR
		b.requireBoolean(left, e.Op, context)
		b.requireBoolean(right, e.Op, context)

		return known(querylint.TypeBool, left.nullable || right.nullable)
	}
}

func (b *binder) requireBoolean(operand inferred, op parser.BinaryOp, context string) {
	if operand.param != nil {
		b.noteParam(operand.param, querylint.TypeBool)
		return
	}

	if operand.known && operand.typ != querylint.TypeBool && operand.typ != querylint.TypeAny {
		b.errorf(ErrTypeMismatch, "%s expects boolean operands in %s, found %s", op, context, operand.typ)
	}
}

// bindComparison types `left op right` and binds placeholder operands to
// the other side's type; incompatible operand types are an error.
func (b *binder) bindComparison(op parser.BinaryOp, left, right inferred, context string) inferred {
	nullable := left.nullable || right.nullable

	if left.param != nil && right.param != nil {
		// two placeholders give no context to infer from
		return known(querylint.TypeBool, nullable)
	}

	if left.param != nil && right.known {
		b.noteParam(left.param, right.typ)
		return known(querylint.TypeBool, nullable)
	}

	if right.param != nil && left.known {
		b.noteParam(right.param, left.typ)
		return known(querylint.TypeBool, nullable)
	}

	if left.known && right.known && !compatible(left.typ, right.typ) {
		b.errorf(ErrTypeMismatch, "cannot compare %s %s %s in %s", left.typ, op, right.typ, context)
	}

	return known(querylint.TypeBool, nullable)
}

func (b *binder) bindConcat(left, right inferred, context string) inferred {
	for _, operand := range []inferred{left, right} {
		if operand.param != nil {
			b.noteParam(operand.param, querylint.TypeString)
			continue
		}

		if operand.known && operand.typ != querylint.TypeString && operand.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "|| expects string operands in %s, found %s", context, operand.typ)
		}
	}

	return known(querylint.TypeString, left.nullable || right.nullable)
}

// bindArithmetic applies numeric promotion: integer-integer arithmetic
// stays integer, any float or decimal operand promotes the result.
func (b *binder) bindArithmetic(op parser.BinaryOp, left, right inferred, context string) inferred {
	if left.param != nil && right.known {
		if right.typ.IsNumeric() {
			b.noteParam(left.param, right.typ)
			left = known(right.typ, right.nullable)
		} else if right.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "%s expects numeric operands in %s, found %s", op, context, right.typ)
		}
	}

	if right.param != nil && left.known {
		if left.typ.IsNumeric() {
			b.noteParam(right.param, left.typ)
			right = known(left.typ, left.nullable)
		} else if left.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "%s expects numeric operands in %s, found %s", op, context, left.typ)
		}
	}

	if left.param != nil || right.param != nil || !left.known || !right.known {
		return unknown
	}

	nullable := left.nullable || right.nullable

	for _, operand := range []inferred{left, right} {
		if operand.typ == querylint.TypeAny {
			return inferred{typ: querylint.TypeAny, nullable: nullable, known: true}
		}

		if !operand.typ.IsNumeric() {
			b.errorf(ErrTypeMismatch, "%s expects numeric operands in %s, found %s", op, context, operand.typ)
			return unknown
		}
	}

	switch {
	case left.typ == querylint.TypeFloat || right.typ == querylint.TypeFloat:
		return known(querylint.TypeFloat, nullable)
	case left.typ == querylint.TypeDecimal || right.typ == querylint.TypeDecimal:
		return known(querylint.TypeDecimal, nullable)
	default:
		return known(querylint.TypeInt, nullable)
	}
}

func (b *binder) bindLike(e *parser.LikeExpr, context string) inferred {
	left := b.bindExpression(e.Left, context)
	pattern := b.bindExpression(e.Pattern, context)

	for _, operand := range []inferred{left, pattern} {
		if operand.param != nil {
			b.noteParam(operand.param, querylint.TypeString)
			continue
		}

		if operand.known && operand.typ != querylint.TypeString && operand.typ != querylint.TypeAny {
			b.errorf(ErrTypeMismatch, "LIKE expects string operands in %s, found %s", context, operand.typ)
		}
	}

	return known(querylint.TypeBool, left.nullable || pattern.nullable)
}

func (b *binder) bindIn(e *parser.InExpr, context string) inferred {
	left := b.bindExpression(e.Left, context)
	nullable := left.nullable

	for _, item := range e.List {
		element := b.bindExpression(item, context)
		nullable = nullable || element.nullable

		if element.param != nil {
			if left.known {
				b.noteParam(element.param, left.typ)
			}

			continue
		}

		if left.param != nil {
			if element.known {
				b.noteParam(left.param, element.typ)
				left = known(element.typ, element.nullable)
			}

			continue
		}

		if left.known && element.known && !compatible(left.typ, element.typ) {
			b.errorf(ErrTypeMismatch, "IN list element type %s does not match %s in %s", element.typ, left.typ, context)
		}
	}

	return known(querylint.TypeBool, nullable)
}

func (b *binder) bindBetween(e *parser.BetweenExpr, context string) inferred {
	operand := b.bindExpression(e.Expr, context)
	lower := b.bindExpression(e.Lower, context)
	upper := b.bindExpression(e.Upper, context)

	for _, bound := range []inferred{lower, upper} {
		if bound.param != nil {
			if operand.known {
				b.noteParam(bound.param, operand.typ)
			}

			continue
		}

		if operand.known && bound.known && !compatible(operand.typ, bound.typ) {
			b.errorf(ErrTypeMismatch, "BETWEEN bound type %s does not match %s in %s", bound.typ, operand.typ, context)
		}
	}

	return known(querylint.TypeBool, operand.nullable || lower.nullable || upper.nullable)
}

// compatible reports whether values of the two types may be compared.
func compatible(a, c querylint.ColumnType) bool {
	if a == querylint.TypeAny || c == querylint.TypeAny {
		return true
	}

	if a == c {
		return true
	}

	if a.IsNumeric() && c.IsNumeric() {
		return true
	}

	if a.IsTemporal() && c.IsTemporal() {
		return true
	}

	return false
}

// ---- parameters ----

type paramState struct {
	name     string
	ordinal  int
	typ      querylint.ColumnType
	resolved bool
	conflict bool
}

func (b *binder) noteParam(ph *parser.Placeholder, typ querylint.ColumnType) {
	state := b.paramFor(ph)

	if !state.resolved {
		state.typ = typ
		state.resolved = true

		return
	}

	if state.conflict || compatible(state.typ, typ) {
		return
	}

	state.conflict = true

	label := state.name
	if label == "" {
		label = fmt.Sprintf("?%d", state.ordinal+1)
	}

	b.errorf(ErrParameterTypeConflict, "%s used as %s and %s", label, state.typ, typ)
}

func (b *binder) paramFor(ph *parser.Placeholder) *paramState {
	key := paramKey(ph)

	if state, ok := b.params[key]; ok {
		return state
	}

	state := &paramState{name: ph.Name, ordinal: ph.Ordinal}
	b.params[key] = state

	return state
}

func paramKey(ph *parser.Placeholder) string {
	if ph.Name == "" {
		return fmt.Sprintf("#%d", ph.Ordinal)
	}

	return ph.Name
}

// finishParams orders the distinct placeholders by declaration order in
// the statement text (not by binding traversal order) and reports any
// whose type could not be inferred from context.
func (b *binder) finishParams(stmt *parser.SelectStatement) []querylint.Parameter {
	orderedKeys := make([]string, 0, len(stmt.Placeholders))
	seen := map[string]bool{}

	for _, ph := range stmt.Placeholders {
		key := paramKey(ph)
		if seen[key] {
			continue
		}

		seen[key] = true

		orderedKeys = append(orderedKeys, key)

		// Placeholders that never reached noteParam still need a state entry.
		b.paramFor(ph)
	}

	parameters := make([]querylint.Parameter, 0, len(orderedKeys))

	for position, key := range orderedKeys {
		state := b.params[key]

		if !state.resolved {
			label := state.name
			if label == "" {
				label = fmt.Sprintf("?%d", state.ordinal+1)
			}

			b.errorf(ErrUnresolvedParameterType, "%s has no inferable context", label)
		}

		parameters = append(parameters, querylint.Parameter{
			Name:     state.name,
			Position: position,
			Type:     state.typ,
		})
	}

	return parameters
}

func duplicateNameWarnings(columns []querylint.ResultColumn) []string {
	seen := map[string]int{}
	for _, col := range columns {
		seen[strings.ToLower(col.Name)]++
	}

	var warnings []string

	reported := map[string]bool{}

	for _, col := range columns {
		key := strings.ToLower(col.Name)
		if seen[key] > 1 && !reported[key] {
			reported[key] = true
			warnings = append(warnings, fmt.Sprintf("duplicate result column name: %s", col.Name))
		}
	}

	return warnings
}
