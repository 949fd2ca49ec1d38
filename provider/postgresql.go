package provider

import (
	"context"
	"database/sql"
	"fmt"

	querylint "github.com/querylint/querylint"
)

// postgresExtractor enumerates catalog metadata through information_schema.
type postgresExtractor struct {
	mapper *typeMapper
}

const postgresTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`

const postgresColumnsQuery = `
SELECT column_name, data_type, is_nullable, character_maximum_length, numeric_precision, numeric_scale
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

func (e *postgresExtractor) ExtractTables(ctx context.Context, db *sql.DB, config ExtractConfig) ([]*querylint.Table, error) {
	schema := config.Schema
	if schema == "" {
		schema = "public"
	}

	rows, err := db.QueryContext(ctx, postgresTablesQuery, schema)
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
		table, err := e.extractColumns(ctx, db, schema, name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (e *postgresExtractor) extractColumns(ctx context.Context, db *sql.DB, schema, tableName string) (*querylint.Table, error) {
	rows, err := db.QueryContext(ctx, postgresColumnsQuery, schema, tableName)
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
		)

		if err := rows.Scan(&name, &dataType, &isNullable, &maxLength, &precision, &scale); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResultScanFailed, err)
		}

		col := &querylint.Column{
			Name:     name,
			Type:     e.mapper.mapType(dataType),
			Nullable: isNullable == "YES",
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

func (e *postgresExtractor) DatabaseInfo(ctx context.Context, db *sql.DB) (querylint.DatabaseInfo, error) {
	info := querylint.DatabaseInfo{Type: "postgres"}

	err := db.QueryRowContext(ctx, "SELECT current_database(), version()").Scan(&info.Name, &info.Version)
	if err != nil {
		return info, err
	}

	return info, nil
}
