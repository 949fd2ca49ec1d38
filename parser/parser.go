package parser

import (
	"strings"

	"github.com/querylint/querylint/tokenizer"
)

// unsupportedClauses are constructs outside the supported subset that we
// name explicitly instead of reporting a bare unexpected-token error.
var unsupportedClauses = map[string]bool{
	"GROUP": true, "ORDER": true, "HAVING": true, "LIMIT": true,
	"OFFSET": true, "UNION": true, "INTERSECT": true, "EXCEPT": true,
	"FETCH": true, "FOR": true,
}

var unsupportedStatements = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "WITH": true,
	"CREATE": true, "DROP": true, "ALTER": true,
}

// Parse turns raw SQL text into a SelectStatement. It fails with
// *SyntaxError for malformed input and performs no schema lookups.
func Parse(rawSQL string) (*SelectStatement, error) {
	if strings.TrimSpace(rawSQL) == "" {
		return nil, ErrEmptyInput
	}

	tok := tokenizer.NewSqlTokenizer(rawSQL, tokenizer.TokenizerOptions{
		SkipWhitespace: true,
		SkipComments:   true,
	})

	tokens, err := tok.AllTokens()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	stmt, err := p.parseSelect()
	if err != nil {
		return nil, err
	}

	// Trailing semicolon is allowed; anything else is not.
	if p.current().Type == tokenizer.SEMICOLON {
		p.advance()
	}

	if p.current().Type != tokenizer.EOF {
		tk := p.current()
		if unsupportedClauses[strings.ToUpper(tk.Value)] {
			return nil, syntaxErrorf(tk.Position, "unsupported clause: %s", strings.ToUpper(tk.Value))
		}

		return nil, syntaxErrorf(tk.Position, "unexpected token %q after statement", tk.Value)
	}

	return stmt, nil
}

type parser struct {
	tokens       []tokenizer.Token
	pos          int
	style        ParamStyle
	placeholders []*Placeholder
}

func (p *parser) current() tokenizer.Token {
	if p.pos >= len(p.tokens) {
		return tokenizer.Token{Type: tokenizer.EOF}
	}

	return p.tokens[p.pos]
}

func (p *parser) peek() tokenizer.Token {
	if p.pos+1 >= len(p.tokens) {
		return tokenizer.Token{Type: tokenizer.EOF}
	}

	return p.tokens[p.pos+1]
}

func (p *parser) advance() tokenizer.Token {
	tk := p.current()
	p.pos++

	return tk
}

func (p *parser) expect(tokenType tokenizer.TokenType, what string) (tokenizer.Token, error) {
	tk := p.current()
	if tk.Type != tokenType {
		return tk, syntaxErrorf(tk.Position, "expected %s but found %q", what, describeToken(tk))
	}

	p.advance()

	return tk, nil
}

func describeToken(tk tokenizer.Token) string {
	if tk.Type == tokenizer.EOF {
		return "end of input"
	}

	return tk.Value
}

func (p *parser) parseSelect() (*SelectStatement, error) {
	tk := p.current()
	if tk.Type != tokenizer.SELECT {
		if unsupportedStatements[strings.ToUpper(tk.Value)] {
			return nil, syntaxErrorf(tk.Position, "unsupported statement: %s", strings.ToUpper(tk.Value))
		}

		return nil, syntaxErrorf(tk.Position, "expected SELECT but found %q", describeToken(tk))
	}

	p.advance()

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.FROM, "FROM"); err != nil {
		return nil, err
	}

	from, err := p.parseTableList()
	if err != nil {
		return nil, err
	}

	joins, err := p.parseJoins()
	if err != nil {
		return nil, err
	}

	var where Expression

	if p.current().Type == tokenizer.WHERE {
		p.advance()

		where, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	return &SelectStatement{
		Items:        items,
		From:         from,
		Joins:        joins,
		Where:        where,
		Placeholders: p.placeholders,
		Style:        p.style,
	}, nil
}

func (p *parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		if p.current().Type != tokenizer.COMMA {
			break
		}

		p.advance()
	}

	return items, nil
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	tk := p.current()

	// * and alias.*
	if tk.Type == tokenizer.MULTIPLY {
		p.advance()
		return &StarItem{}, nil
	}

	if isIdentToken(tk) && p.peek().Type == tokenizer.DOT {
		if p.pos+2 < len(p.tokens) && p.tokens[p.pos+2].Type == tokenizer.MULTIPLY {
			p.advance() // qualifier
			p.advance() // dot
			p.advance() // star

			return &StarItem{Qualifier: tk.Value}, nil
		}
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	alias, err := p.parseAlias()
	if err != nil {
		return nil, err
	}

	return &ExprItem{Expr: expr, Alias: alias}, nil
}

// parseAlias consumes `AS name`, or a bare identifier alias, if present.
func (p *parser) parseAlias() (string, error) {
	if p.current().Type == tokenizer.AS {
		p.advance()

		tk, err := p.expectIdent("alias")
		if err != nil {
			return "", err
		}

		return tk.Value, nil
	}

	// A bare alias, unless the word starts a clause outside the subset
	// (GROUP, ORDER, ...) that the caller should diagnose by name.
	if isIdentToken(p.current()) && !unsupportedClauses[strings.ToUpper(p.current().Value)] {
		return p.advance().Value, nil
	}

	return "", nil
}

func isIdentToken(tk tokenizer.Token) bool {
	return tk.Type == tokenizer.WORD || tk.Type == tokenizer.QUOTED_WORD
}

func (p *parser) expectIdent(what string) (tokenizer.Token, error) {
	tk := p.current()
	if !isIdentToken(tk) {
		return tk, syntaxErrorf(tk.Position, "expected %s but found %q", what, describeToken(tk))
	}

	p.advance()

	return tk, nil
}

func (p *parser) parseTableList() ([]TableRef, error) {
	var tables []TableRef

	for {
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}

		tables = append(tables, ref)

		if p.current().Type != tokenizer.COMMA {
			break
		}

		p.advance()
	}

	return tables, nil
}

func (p *parser) parseTableRef() (TableRef, error) {
	tk, err := p.expectIdent("table name")
	if err != nil {
		return TableRef{}, err
	}

	alias, err := p.parseAlias()
	if err != nil {
		return TableRef{}, err
	}

	return TableRef{Name: tk.Value, Alias: alias}, nil
}

func (p *parser) parseJoins() ([]Join, error) {
	var joins []Join

	for {
		kind, isJoin, err := p.parseJoinKind()
		if err != nil {
			return nil, err
		}

		if !isJoin {
			return joins, nil
		}

		table, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.ON, "ON"); err != nil {
			return nil, err
		}

		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		joins = append(joins, Join{Kind: kind, Table: table, Condition: condition})
	}
}

func (p *parser) parseJoinKind() (JoinKind, bool, error) {
	switch p.current().Type {
	case tokenizer.JOIN:
		p.advance()
		return JoinInner, true, nil
	case tokenizer.INNER:
		p.advance()

		if _, err := p.expect(tokenizer.JOIN, "JOIN"); err != nil {
			return 0, false, err
		}

		return JoinInner, true, nil
	case tokenizer.LEFT, tokenizer.RIGHT, tokenizer.FULL:
		kind := JoinLeft

		switch p.current().Type {
		case tokenizer.RIGHT:
			kind = JoinRight
		case tokenizer.FULL:
			kind = JoinFull
		}

		p.advance()

		if p.current().Type == tokenizer.OUTER {
			p.advance()
		}

		if _, err := p.expect(tokenizer.JOIN, "JOIN"); err != nil {
			return 0, false, err
		}

		return kind, true, nil
	default:
		return 0, false, nil
	}
}

// Expression grammar, lowest precedence first:
// expression := and (OR and)*
// and        := not (AND not)*
// not        := NOT not | predicate
// predicate  := additive (comparison | IS NULL | LIKE | IN | BETWEEN)?
// additive   := multiplicative ((+ | - | ||) multiplicative)*
// multiplicative := unary ((* | /) unary)*
// unary      := (- | +) unary | primary
func (p *parser) parseExpression() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == tokenizer.OR {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Left: left, Right: right, Op: OpOr}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == tokenizer.AND {
		p.advance()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Left: left, Right: right, Op: OpAnd}
	}

	return left, nil
}

func (p *parser) parseNot() (Expression, error) {
	if p.current().Type == tokenizer.NOT {
		p.advance()

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: UnaryNot, Expr: operand}, nil
	}

	return p.parsePredicate()
}

var comparisonOps = map[tokenizer.TokenType]BinaryOp{
	tokenizer.EQUAL:         OpEqual,
	tokenizer.NOT_EQUAL:     OpNotEqual,
	tokenizer.LESS_THAN:     OpLess,
	tokenizer.LESS_EQUAL:    OpLessEqual,
	tokenizer.GREATER_THAN:  OpGreater,
	tokenizer.GREATER_EQUAL: OpGreaterEqual,
}

func (p *parser) parsePredicate() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	tk := p.current()

	if op, ok := comparisonOps[tk.Type]; ok {
		p.advance()

		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return &BinaryExpr{Left: left, Right: right, Op: op}, nil
	}

	if tk.Type == tokenizer.IS {
		return p.parseIsNull(left)
	}

	negated := false

	if tk.Type == tokenizer.NOT {
		next := p.peek().Type
		if next != tokenizer.LIKE && next != tokenizer.IN && next != tokenizer.BETWEEN {
			return left, nil
		}

		negated = true

		p.advance()
		tk = p.current()
	}

	switch tk.Type {
	case tokenizer.LIKE:
		p.advance()

		pattern, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		return &LikeExpr{Left: left, Pattern: pattern, Negated: negated}, nil
	case tokenizer.IN:
		return p.parseIn(left, negated)
	case tokenizer.BETWEEN:
		return p.parseBetween(left, negated)
	default:
		if negated {
			return nil, syntaxErrorf(tk.Position, "expected LIKE, IN or BETWEEN after NOT but found %q", describeToken(tk))
		}

		return left, nil
	}
}

func (p *parser) parseIsNull(left Expression) (Expression, error) {
	p.advance() // IS

	negated := false
	if p.current().Type == tokenizer.NOT {
		negated = true

		p.advance()
	}

	if _, err := p.expect(tokenizer.NULL, "NULL"); err != nil {
		return nil, err
	}

	return &IsNullExpr{Expr: left, Negated: negated}, nil
}

func (p *parser) parseIn(left Expression, negated bool) (Expression, error) {
	p.advance() // IN

	if _, err := p.expect(tokenizer.OPENED_PARENS, "("); err != nil {
		return nil, err
	}

	var list []Expression

	for {
		item, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		list = append(list, item)

		if p.current().Type != tokenizer.COMMA {
			break
		}

		p.advance()
	}

	if _, err := p.expect(tokenizer.CLOSED_PARENS, ")"); err != nil {
		return nil, err
	}

	return &InExpr{Left: left, List: list, Negated: negated}, nil
}

func (p *parser) parseBetween(left Expression, negated bool) (Expression, error) {
	p.advance() // BETWEEN

	lower, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokenizer.AND, "AND"); err != nil {
		return nil, err
	}

	upper, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	return &BetweenExpr{Expr: left, Lower: lower, Upper: upper, Negated: negated}, nil
}

func (p *parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp

		switch p.current().Type {
		case tokenizer.PLUS:
			op = OpAdd
		case tokenizer.MINUS:
			op = OpSubtract
		case tokenizer.CONCAT:
			op = OpConcat
		default:
			return left, nil
		}

		p.advance()

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp

		switch p.current().Type {
		case tokenizer.MULTIPLY:
			op = OpMultiply
		case tokenizer.DIVIDE:
			op = OpDivide
		default:
			return left, nil
		}

		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseUnary() (Expression, error) {
	switch p.current().Type {
	case tokenizer.MINUS:
		p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: UnaryMinus, Expr: operand}, nil
	case tokenizer.PLUS:
		p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: UnaryPlus, Expr: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Expression, error) {
	tk := p.current()

	switch tk.Type {
	case tokenizer.NUMBER:
		p.advance()
		return &Literal{Kind: LiteralNumber, Value: tk.Value}, nil
	case tokenizer.STRING:
		p.advance()
		return &Literal{Kind: LiteralString, Value: tk.Value}, nil
	case tokenizer.TRUE, tokenizer.FALSE:
		p.advance()
		return &Literal{Kind: LiteralBoolean, Value: tk.Value}, nil
	case tokenizer.NULL:
		p.advance()
		return &Literal{Kind: LiteralNull, Value: "NULL"}, nil
	case tokenizer.PARAM:
		p.advance()
		return p.registerPlaceholder("", tk.Position)
	case tokenizer.NAMED_PARAM:
		p.advance()
		return p.registerPlaceholder(tk.Value, tk.Position)
	case tokenizer.OPENED_PARENS:
		p.advance()

		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokenizer.CLOSED_PARENS, ")"); err != nil {
			return nil, err
		}

		return inner, nil
	case tokenizer.WORD, tokenizer.QUOTED_WORD:
		return p.parseColumnRef()
	default:
		return nil, syntaxErrorf(tk.Position, "unexpected token %q in expression", describeToken(tk))
	}
}

func (p *parser) parseColumnRef() (Expression, error) {
	first := p.advance()

	if p.current().Type == tokenizer.DOT {
		p.advance()

		name, err := p.expectIdent("column name")
		if err != nil {
			return nil, err
		}

		return &ColumnRef{Table: first.Value, Name: name.Value}, nil
	}

	return &ColumnRef{Name: first.Value}, nil
}

func (p *parser) registerPlaceholder(name string, pos tokenizer.Position) (Expression, error) {
	style := ParamStylePositional
	if name != "" {
		style = ParamStyleNamed
	}

	if p.style == ParamStyleNone {
		p.style = style
	} else if p.style != style {
		return nil, syntaxErrorf(pos, "%s", ErrMixedPlaceholderStyles.Error())
	}

	ph := &Placeholder{Name: name, Ordinal: len(p.placeholders)}
	p.placeholders = append(p.placeholders, ph)

	return ph, nil
}
