package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	querylint "github.com/querylint/querylint"
)

type sqliteExtractor struct {
	mapper *typeMapper
}

const sqliteTablesQuery = `
SELECT name
FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

func (e *sqliteExtractor) ExtractTables(ctx context.Context, db *sql.DB, config ExtractConfig) ([]*querylint.Table, error) {
	rows, err := db.QueryContext(ctx, sqliteTablesQuery)
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
		table, err := e.extractColumns(ctx, db, name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (e *sqliteExtractor) extractColumns(ctx context.Context, db *sql.DB, tableName string) (*querylint.Table, error) {
	// PRAGMA does not accept bind parameters, so the identifier is quoted inline.
	query := fmt.Sprintf(`PRAGMA table_info(%q)`, strings.ReplaceAll(tableName, `"`, `""`))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := &querylint.Table{Name: tableName}

	for rows.Next() {
		var (
			cid          int
			name, typ    string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)

		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResultScanFailed, err)
		}

		col := &querylint.Column{
			Name:         name,
			Type:         e.mapper.mapType(typ),
			Nullable:     notNull == 0 && pk == 0,
			IsPrimaryKey: pk > 0,
		}

		if defaultValue.Valid {
			col.DefaultValue = defaultValue.String
		}

		table.Columns = append(table.Columns, col)
	}

	return table, rows.Err()
}

func (e *sqliteExtractor) DatabaseInfo(ctx context.Context, db *sql.DB) (querylint.DatabaseInfo, error) {
	info := querylint.DatabaseInfo{Type: "sqlite"}

	err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&info.Version)
	if err != nil {
		return info, err
	}

	return info, nil
}
