package binder

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	querylint "github.com/querylint/querylint"
	"github.com/querylint/querylint/parser"
)

func testSnapshot(t *testing.T) *querylint.Snapshot {
	t.Helper()

	users := &querylint.Table{
		Name: "Users",
		Columns: []*querylint.Column{
			{Name: "Id", Type: querylint.TypeInt, Nullable: false},
			{Name: "Name", Type: querylint.TypeString, Nullable: true},
			{Name: "Age", Type: querylint.TypeInt, Nullable: true},
			{Name: "Active", Type: querylint.TypeBool, Nullable: false},
		},
	}

	orders := &querylint.Table{
		Name: "Orders",
		Columns: []*querylint.Column{
			{Name: "Id", Type: querylint.TypeInt, Nullable: false},
			{Name: "UserId", Type: querylint.TypeInt, Nullable: false},
			{Name: "Total", Type: querylint.TypeDecimal, Nullable: false},
			{Name: "PlacedAt", Type: querylint.TypeDateTime, Nullable: true},
		},
	}

	snapshot, err := querylint.NewSnapshot("shop", querylint.DatabaseInfo{Type: "sqlite"}, []*querylint.Table{users, orders})
	assert.NoError(t, err)

	return snapshot
}

func bindSQL(t *testing.T, sql string) (*querylint.ValidatedQuery, []string, []error) {
	t.Helper()

	stmt, err := parser.Parse(sql)
	assert.NoError(t, err)

	return Bind(stmt, testSnapshot(t))
}

func hasError(errs []error, sentinel error) bool {
	for _, err := range errs {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}

func TestBindSimpleSelect(t *testing.T) {
	query, warnings, errs := bindSQL(t, "SELECT Id, Name FROM Users WHERE Id = @id")
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 0, len(warnings))

	assert.Equal(t, []querylint.ResultColumn{
		{Name: "Id", Type: querylint.TypeInt, Nullable: false},
		{Name: "Name", Type: querylint.TypeString, Nullable: true},
	}, query.ResultColumns)

	assert.Equal(t, []querylint.Parameter{
		{Name: "id", Position: 0, Type: querylint.TypeInt},
	}, query.Parameters)
}

func TestBindIsCaseInsensitive(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT id, NAME FROM users")
	assert.Equal(t, 0, len(errs))

	// Result columns keep the schema's declared spelling.
	assert.Equal(t, "Id", query.ResultColumns[0].Name)
	assert.Equal(t, "Name", query.ResultColumns[1].Name)
}

func TestBindAliases(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT u.Name AS customer FROM Users u")
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, "customer", query.ResultColumns[0].Name)
	assert.Equal(t, querylint.TypeString, query.ResultColumns[0].Type)
}

func TestBindUnknownTable(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Missing")
	assert.True(t, hasError(errs, ErrUnknownTable))
}

func TestBindUnknownColumn(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Nickname FROM Users")
	assert.True(t, hasError(errs, ErrUnknownColumn))
}

func TestBindAmbiguousColumn(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Users u JOIN Orders o ON u.Id = o.UserId")
	assert.True(t, hasError(errs, ErrAmbiguousColumn))
}

func TestBindDuplicateAlias(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT u.Id FROM Users u, Orders u")
	assert.True(t, hasError(errs, ErrDuplicateTableAlias))
}

func TestBindCollectsAllErrors(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Nickname, Missing FROM Users WHERE Name = 5")

	assert.Equal(t, 3, len(errs))
	assert.True(t, hasError(errs, ErrUnknownColumn))
	assert.True(t, hasError(errs, ErrTypeMismatch))
}

func TestBindTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "string compared to int", sql: "SELECT Id FROM Users WHERE Name = 5"},
		{name: "bool in arithmetic", sql: "SELECT Active + 1 FROM Users"},
		{name: "string in arithmetic", sql: "SELECT Id FROM Users WHERE Id + Name > 2"},
		{name: "non-string concat", sql: "SELECT Id || Name FROM Users"},
		{name: "non-string like", sql: "SELECT Id FROM Users WHERE Id LIKE 'a%'"},
		{name: "in list element mismatch", sql: "SELECT Id FROM Users WHERE Id IN (1, 'two')"},
		{name: "between bound mismatch", sql: "SELECT Id FROM Users WHERE Id BETWEEN 1 AND 'ten'"},
		{name: "string plus placeholder", sql: "SELECT Id FROM Users WHERE Name + @bonus > 10"},
		{name: "placeholder plus bool", sql: "SELECT Id FROM Users WHERE @bonus + Active > 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := bindSQL(t, tt.sql)
			assert.True(t, hasError(errs, ErrTypeMismatch))
		})
	}
}

func TestBindNumericComparisonsPromote(t *testing.T) {
	// int and decimal compare fine
	_, _, errs := bindSQL(t, "SELECT o.Id FROM Orders o WHERE o.Total > 100")
	assert.Equal(t, 0, len(errs))
}

func TestBindConditionMustBeBoolean(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE Id + 1")
	assert.True(t, hasError(errs, ErrConditionNotBoolean))
}

func TestBindArithmeticPromotion(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected querylint.ColumnType
	}{
		{name: "int plus int", sql: "SELECT Id + 1 FROM Users", expected: querylint.TypeInt},
		{name: "decimal times int", sql: "SELECT Total * 2 FROM Orders", expected: querylint.TypeDecimal},
		{name: "decimal literal promotes", sql: "SELECT Id * 1.5 FROM Users", expected: querylint.TypeDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, errs := bindSQL(t, tt.sql)
			assert.Equal(t, 0, len(errs))
			assert.Equal(t, tt.expected, query.ResultColumns[0].Type)
		})
	}
}

func TestBindComputedColumnNames(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT Name || '!' FROM Users")
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, "Name || '!'", query.ResultColumns[0].Name)
	assert.Equal(t, querylint.TypeString, query.ResultColumns[0].Type)
	assert.True(t, query.ResultColumns[0].Nullable)
}

func TestBindStarExpansion(t *testing.T) {
	query, warnings, errs := bindSQL(t, "SELECT * FROM Users u JOIN Orders o ON u.Id = o.UserId")
	assert.Equal(t, 0, len(errs))

	names := make([]string, len(query.ResultColumns))
	for i, col := range query.ResultColumns {
		names[i] = col.Name
	}

	// table declaration order, then column declaration order
	assert.Equal(t, []string{"Id", "Name", "Age", "Active", "Id", "UserId", "Total", "PlacedAt"}, names)

	// both tables expose Id
	assert.Equal(t, []string{"duplicate result column name: Id"}, warnings)
}

func TestBindQualifiedStar(t *testing.T) {
	query, warnings, errs := bindSQL(t, "SELECT o.* FROM Users u JOIN Orders o ON u.Id = o.UserId")
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 0, len(warnings))
	assert.Equal(t, 4, len(query.ResultColumns))
	assert.Equal(t, "UserId", query.ResultColumns[1].Name)
}

func TestBindOuterJoinNullability(t *testing.T) {
	t.Run("left join marks right side nullable", func(t *testing.T) {
		query, _, errs := bindSQL(t, "SELECT u.Id, o.Total FROM Users u LEFT JOIN Orders o ON u.Id = o.UserId")
		assert.Equal(t, 0, len(errs))
		assert.False(t, query.ResultColumns[0].Nullable)
		assert.True(t, query.ResultColumns[1].Nullable)
	})

	t.Run("right join marks left side nullable", func(t *testing.T) {
		query, _, errs := bindSQL(t, "SELECT u.Id, o.Total FROM Users u RIGHT JOIN Orders o ON u.Id = o.UserId")
		assert.Equal(t, 0, len(errs))
		assert.True(t, query.ResultColumns[0].Nullable)
		assert.False(t, query.ResultColumns[1].Nullable)
	})

	t.Run("full join marks both sides nullable", func(t *testing.T) {
		query, _, errs := bindSQL(t, "SELECT u.Id, o.Total FROM Users u FULL OUTER JOIN Orders o ON u.Id = o.UserId")
		assert.Equal(t, 0, len(errs))
		assert.True(t, query.ResultColumns[0].Nullable)
		assert.True(t, query.ResultColumns[1].Nullable)
	})
}

func TestBindParameterInference(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected querylint.ColumnType
	}{
		{name: "comparison context", sql: "SELECT Id FROM Users WHERE Age > @min", expected: querylint.TypeInt},
		{name: "like context", sql: "SELECT Id FROM Users WHERE Name LIKE @pattern", expected: querylint.TypeString},
		{name: "in list context", sql: "SELECT Id FROM Users WHERE Id IN (@a)", expected: querylint.TypeInt},
		{name: "between context", sql: "SELECT Id FROM Orders WHERE PlacedAt BETWEEN @from AND @from", expected: querylint.TypeDateTime},
		{name: "arithmetic context", sql: "SELECT Id FROM Orders WHERE Total * @rate > 10", expected: querylint.TypeDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, _, errs := bindSQL(t, tt.sql)
			assert.Equal(t, 0, len(errs))
			assert.Equal(t, 1, len(query.Parameters))
			assert.Equal(t, tt.expected, query.Parameters[0].Type)
		})
	}
}

func TestBindPositionalParameters(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE Name = ? AND Age > ?")
	assert.Equal(t, 0, len(errs))

	assert.Equal(t, []querylint.Parameter{
		{Name: "", Position: 0, Type: querylint.TypeString},
		{Name: "", Position: 1, Type: querylint.TypeInt},
	}, query.Parameters)
}

func TestBindNamedParameterReuse(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE Age > @n AND Id <> @n")
	assert.Equal(t, 0, len(errs))

	// one distinct parameter, both uses integer-compatible
	assert.Equal(t, 1, len(query.Parameters))
	assert.Equal(t, "n", query.Parameters[0].Name)
}

func TestBindParameterTypeConflict(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE Name = @v AND Age > @v")
	assert.True(t, hasError(errs, ErrParameterTypeConflict))
}

func TestBindUnresolvedParameterType(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE @a = @b")
	assert.True(t, hasError(errs, ErrUnresolvedParameterType))
	assert.Equal(t, 2, len(errs))
}

func TestBindParameterDeclarationOrder(t *testing.T) {
	// @b appears first in the join condition during binding, but @a is
	// declared first in the statement text.
	query, _, errs := bindSQL(t, "SELECT u.Id, @a || '' FROM Users u JOIN Orders o ON u.Id = o.UserId WHERE o.Total > @b")
	assert.Equal(t, 0, len(errs))

	assert.Equal(t, "a", query.Parameters[0].Name)
	assert.Equal(t, 0, query.Parameters[0].Position)
	assert.Equal(t, "b", query.Parameters[1].Name)
	assert.Equal(t, 1, query.Parameters[1].Position)
}

func TestBindIsNull(t *testing.T) {
	query, _, errs := bindSQL(t, "SELECT Name IS NULL FROM Users")
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, querylint.TypeBool, query.ResultColumns[0].Type)
	assert.False(t, query.ResultColumns[0].Nullable)
}

func TestBindNullLiteralComparesWithAnything(t *testing.T) {
	_, _, errs := bindSQL(t, "SELECT Id FROM Users WHERE Name = NULL")
	assert.Equal(t, 0, len(errs))
}
