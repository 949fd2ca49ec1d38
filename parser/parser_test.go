package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := Parse("SELECT Id, Name FROM Users")
	assert.NoError(t, err)

	assert.Equal(t, 2, len(stmt.Items))
	assert.Equal(t, []TableRef{{Name: "Users"}}, stmt.From)
	assert.Zero(t, stmt.Where)

	first, ok := stmt.Items[0].(*ExprItem)
	assert.True(t, ok)
	assert.Equal(t, &ColumnRef{Name: "Id"}, first.Expr.(*ColumnRef))
}

func TestParseStarVariants(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		qualifier string
	}{
		{name: "bare star", sql: "SELECT * FROM Users", qualifier: ""},
		{name: "qualified star", sql: "SELECT u.* FROM Users u", qualifier: "u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.sql)
			assert.NoError(t, err)

			star, ok := stmt.Items[0].(*StarItem)
			assert.True(t, ok)
			assert.Equal(t, tt.qualifier, star.Qualifier)
		})
	}
}

func TestParseAliases(t *testing.T) {
	stmt, err := Parse("SELECT u.Name AS user_name, Age years FROM Users AS u")
	assert.NoError(t, err)

	assert.Equal(t, "user_name", stmt.Items[0].(*ExprItem).Alias)
	assert.Equal(t, "years", stmt.Items[1].(*ExprItem).Alias)
	assert.Equal(t, TableRef{Name: "Users", Alias: "u"}, stmt.From[0])
}

func TestParseJoins(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind JoinKind
	}{
		{name: "bare join", sql: "SELECT * FROM a JOIN b ON a.id = b.id", kind: JoinInner},
		{name: "inner join", sql: "SELECT * FROM a INNER JOIN b ON a.id = b.id", kind: JoinInner},
		{name: "left join", sql: "SELECT * FROM a LEFT JOIN b ON a.id = b.id", kind: JoinLeft},
		{name: "left outer join", sql: "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id", kind: JoinLeft},
		{name: "right join", sql: "SELECT * FROM a RIGHT JOIN b ON a.id = b.id", kind: JoinRight},
		{name: "full outer join", sql: "SELECT * FROM a FULL OUTER JOIN b ON a.id = b.id", kind: JoinFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.sql)
			assert.NoError(t, err)
			assert.Equal(t, 1, len(stmt.Joins))
			assert.Equal(t, tt.kind, stmt.Joins[0].Kind)
			assert.Equal(t, "b", stmt.Joins[0].Table.Name)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE a = 1 OR b = 2 AND c = 3")
	assert.NoError(t, err)

	// OR binds loosest: (a = 1) OR ((b = 2) AND (c = 3))
	or, ok := stmt.Where.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, OpOr, or.Op)

	and, ok := or.Right.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, OpAnd, and.Op)
}

func TestParseArithmeticPrecedence(t *testing.T) {
	stmt, err := Parse("SELECT a + b * c FROM t")
	assert.NoError(t, err)

	add, ok := stmt.Items[0].(*ExprItem).Expr.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, OpAdd, add.Op)

	mul, ok := add.Right.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, OpMultiply, mul.Op)
}

func TestParsePredicates(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "is null", sql: "SELECT * FROM t WHERE a IS NULL"},
		{name: "is not null", sql: "SELECT * FROM t WHERE a IS NOT NULL"},
		{name: "like", sql: "SELECT * FROM t WHERE name LIKE 'a%'"},
		{name: "not like", sql: "SELECT * FROM t WHERE name NOT LIKE 'a%'"},
		{name: "in", sql: "SELECT * FROM t WHERE id IN (1, 2, 3)"},
		{name: "not in", sql: "SELECT * FROM t WHERE id NOT IN (1, 2)"},
		{name: "between", sql: "SELECT * FROM t WHERE id BETWEEN 1 AND 10"},
		{name: "not between", sql: "SELECT * FROM t WHERE id NOT BETWEEN 1 AND 10"},
		{name: "not predicate", sql: "SELECT * FROM t WHERE NOT active"},
		{name: "concat", sql: "SELECT first || ' ' || last FROM t"},
		{name: "unary minus", sql: "SELECT -balance FROM t WHERE balance < -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql)
			assert.NoError(t, err)
		})
	}
}

func TestParsePlaceholders(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		stmt, err := Parse("SELECT * FROM t WHERE a = @a AND b = @b")
		assert.NoError(t, err)
		assert.Equal(t, ParamStyleNamed, stmt.Style)
		assert.Equal(t, 2, len(stmt.Placeholders))
		assert.Equal(t, "a", stmt.Placeholders[0].Name)
		assert.Equal(t, 1, stmt.Placeholders[1].Ordinal)
	})

	t.Run("positional", func(t *testing.T) {
		stmt, err := Parse("SELECT * FROM t WHERE a = ? AND b = ?")
		assert.NoError(t, err)
		assert.Equal(t, ParamStylePositional, stmt.Style)
		assert.Equal(t, 2, len(stmt.Placeholders))
		assert.Equal(t, 0, stmt.Placeholders[0].Ordinal)
	})

	t.Run("mixed styles rejected", func(t *testing.T) {
		_, err := Parse("SELECT * FROM t WHERE a = ? AND b = @b")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be mixed")
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		message string
	}{
		{name: "empty", sql: "   ", message: "cannot be empty"},
		{name: "missing from", sql: "SELECT a", message: "expected FROM"},
		{name: "missing on", sql: "SELECT * FROM a JOIN b", message: "expected ON"},
		{name: "dangling comparison", sql: "SELECT * FROM t WHERE a =", message: "unexpected token"},
		{name: "unbalanced parens", sql: "SELECT * FROM t WHERE (a = 1", message: "expected )"},
		{name: "insert statement", sql: "INSERT INTO t VALUES (1)", message: "unsupported statement: INSERT"},
		{name: "update statement", sql: "UPDATE t SET a = 1", message: "unsupported statement: UPDATE"},
		{name: "group by", sql: "SELECT a FROM t GROUP BY a", message: "unsupported clause: GROUP"},
		{name: "order by", sql: "SELECT a FROM t ORDER BY a", message: "unsupported clause: ORDER"},
		{name: "union", sql: "SELECT a FROM t UNION SELECT a FROM s", message: "unsupported clause: UNION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.sql)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("SELECT a\nFROM")
	assert.Error(t, err)

	var syntaxErr *SyntaxError

	assert.True(t, strings.HasPrefix(err.Error(), "syntax error at line 2"))
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestTrailingSemicolon(t *testing.T) {
	_, err := Parse("SELECT * FROM t;")
	assert.NoError(t, err)

	_, err = Parse("SELECT * FROM t; SELECT 1")
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	tests := []string{
		"SELECT Id, Name FROM Users",
		"SELECT u.*, o.total AS amount FROM Users u LEFT JOIN Orders AS o ON u.Id = o.UserId",
		"SELECT * FROM t WHERE a = 1 OR b = 2 AND c = 3",
		"SELECT first || ' ' || last FROM people WHERE age BETWEEN 18 AND 65",
		"SELECT * FROM t WHERE name LIKE 'it''s %' AND id IN (1, 2, 3)",
		"SELECT * FROM t WHERE a IS NOT NULL AND NOT b",
		"SELECT price * (1 + rate) FROM items WHERE price > @min",
		"SELECT Name FROM Users WHERE city = 'São Paulo'",
		"SELECT grüße FROM nachrichten WHERE grüße <> 'японский ☕'",
	}

	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			stmt, err := Parse(sql)
			assert.NoError(t, err)

			canonical := Format(stmt)

			reparsed, err := Parse(canonical)
			assert.NoError(t, err)
			assert.Equal(t, stmt, reparsed)

			// Canonical form is a fixed point.
			assert.Equal(t, canonical, Format(reparsed))
		})
	}
}

func TestFormatQuotesReservedWords(t *testing.T) {
	stmt, err := Parse(`SELECT "select" FROM "from"`)
	assert.NoError(t, err)
	assert.Equal(t, `SELECT "select" FROM "from"`, Format(stmt))
}
