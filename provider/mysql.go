package provider

import (
	"context"
	"database/sql"
	"fmt"

	querylint "github.com/querylint/querylint"
)

type mysqlExtractor struct {
	mapper *typeMapper
}

const mysqlTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_type = 'BASE TABLE'
ORDER BY table_name`

const mysqlColumnsQuery = `
SELECT column_name, data_type, is_nullable, character_maximum_length, numeric_precision, numeric_scale, column_key
FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE()) AND table_name = ?
ORDER BY ordinal_position`

func (e *mysqlExtractor) ExtractTables(ctx context.Context, db *sql.DB, config ExtractConfig) ([]*querylint.Table, error) {
	rows, err := db.QueryContext(ctx, mysqlTablesQuery, config.Schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResultScanFailed, err)
		}

		if ShouldIncludeTable(name, config.IncludeTables, config.ExcludeTables) {
			names = append(names, name)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make([]*querylint.Table, 0, len(names))

	for _, name := range names {
		table, err := e.extractColumns(ctx, db, config.Schema, name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (e *mysqlExtractor) extractColumns(ctx context.Context, db *sql.DB, schema, tableName string) (*querylint.Table, error) {
	rows, err := db.QueryContext(ctx, mysqlColumnsQuery, schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := &querylint.Table{Name: tableName}

	for rows.Next() {
		var (
			name, dataType, isNullable string
			maxLength                  sql.NullInt64
			precision, scale           sql.NullInt64
			columnKey                  string
		)

		if err := rows.Scan(&name, &dataType, &isNullable, &maxLength, &precision, &scale, &columnKey); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResultScanFailed, err)
		}

		col := &querylint.Column{
			Name:         name,
			Type:         e.mapper.mapType(dataType),
			Nullable:     isNullable == "YES",
			IsPrimaryKey: columnKey == "PRI",
		}

		if maxLength.Valid {
			length := int(maxLength.Int64)
			col.MaxLength = &length
		}

		if precision.Valid {
			p := int(precision.Int64)
			col.Precision = &p
		}

		if scale.Valid {
			s := int(scale.Int64)
			col.Scale = &s
		}

		table.Columns = append(table.Columns, col)
	}

	return table, rows.Err()
}

func (e *mysqlExtractor) DatabaseInfo(ctx context.Context, db *sql.DB) (querylint.DatabaseInfo, error) {
	info := querylint.DatabaseInfo{Type: "mysql"}

	// DATABASE() is NULL when the connection has no default schema.
	var name sql.NullString

	err := db.QueryRowContext(ctx, "SELECT DATABASE(), VERSION()").Scan(&name, &info.Version)
	if err != nil {
		return info, err
	}

	info.Name = name.String

	return info, nil
}
