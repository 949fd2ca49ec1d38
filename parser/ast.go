package parser

// SelectStatement is the structured representation of one parsed SELECT.
// It is purely syntactic: no schema lookups happen at parse time.
type SelectStatement struct {
	Items []SelectItem
	From  []TableRef
	Joins []Join
	Where Expression
	// Placeholders lists every placeholder occurrence in declaration order.
	Placeholders []*Placeholder
	// Style records which placeholder form the statement uses.
	Style ParamStyle
}

// ParamStyle identifies the placeholder form used by a statement.
// Positional (?) and named (@name) forms are mutually exclusive.
type ParamStyle int

const (
	ParamStyleNone ParamStyle = iota
	ParamStylePositional
	ParamStyleNamed
)

// SelectItem is one entry of the SELECT list.
type SelectItem interface {
	selectItem()
}

// StarItem is `*` or `alias.*`.
type StarItem struct {
	Qualifier string // empty for a bare *
}

func (*StarItem) selectItem() {}

// ExprItem is an output expression with an optional alias.
type ExprItem struct {
	Expr  Expression
	Alias string
}

func (*ExprItem) selectItem() {}

// TableRef names a source table with an optional alias.
type TableRef struct {
	Name  string
	Alias string
}

// JoinKind enumerates the supported join kinds.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
)

// String returns the SQL spelling of the join kind.
func (k JoinKind) String() string {
	switch k {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "INNER JOIN"
	}
}

// Join is one join clause with its ON condition.
type Join struct {
	Kind      JoinKind
	Table     TableRef
	Condition Expression
}

// Expression is a closed set of expression node variants. The binder
// matches exhaustively over these.
type Expression interface {
	expr()
}

// ColumnRef references a column, optionally qualified by table or alias.
type ColumnRef struct {
	Table string // empty when unqualified
	Name  string
}

func (*ColumnRef) expr() {}

// LiteralKind identifies literal types.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBoolean
	LiteralNull
)

// Literal captures a literal value as written.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (*Literal) expr() {}

// Placeholder is a positional (?) or named (@name) parameter slot.
// Name is empty for positional placeholders. Ordinal is the zero-based
// declaration order of the occurrence.
type Placeholder struct {
	Name    string
	Ordinal int
}

func (*Placeholder) expr() {}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UnaryMinus UnaryOp = iota
	UnaryPlus
	UnaryNot
)

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op   UnaryOp
	Expr Expression
}

func (*UnaryExpr) expr() {}

// BinaryOp enumerates binary operators of the supported subset.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpConcat
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

// IsComparison reports whether the operator yields a boolean from two
// comparable operands.
func (op BinaryOp) IsComparison() bool {
	return op >= OpEqual && op <= OpGreaterEqual
}

// IsArithmetic reports whether the operator is numeric arithmetic.
func (op BinaryOp) IsArithmetic() bool {
	return op >= OpAdd && op <= OpDivide
}

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpConcat:
		return "||"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// BinaryExpr combines two expressions with a binary operator.
type BinaryExpr struct {
	Left  Expression
	Right Expression
	Op    BinaryOp
}

func (*BinaryExpr) expr() {}

// LikeExpr is `expr [NOT] LIKE pattern`.
type LikeExpr struct {
	Left    Expression
	Pattern Expression
	Negated bool
}

func (*LikeExpr) expr() {}

// InExpr is `expr [NOT] IN (list...)`.
type InExpr struct {
	Left    Expression
	List    []Expression
	Negated bool
}

func (*InExpr) expr() {}

// BetweenExpr is `expr [NOT] BETWEEN lower AND upper`.
type BetweenExpr struct {
	Expr    Expression
	Lower   Expression
	Upper   Expression
	Negated bool
}

func (*BetweenExpr) expr() {}

// IsNullExpr is `expr IS [NOT] NULL`.
type IsNullExpr struct {
	Expr    Expression
	Negated bool
}

func (*IsNullExpr) expr() {}
