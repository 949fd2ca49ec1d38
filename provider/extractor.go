package provider

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	querylint "github.com/querylint/querylint"
)

// Extractor enumerates catalog metadata for one database engine.
type Extractor interface {
	ExtractTables(ctx context.Context, db *sql.DB, config ExtractConfig) ([]*querylint.Table, error)
	DatabaseInfo(ctx context.Context, db *sql.DB) (querylint.DatabaseInfo, error)
}

// ExtractConfig filters which tables end up in the snapshot.
type ExtractConfig struct {
	Schema        string // catalog schema (postgres/mysql); engine default when empty
	IncludeTables []string
	ExcludeTables []string
}

// NewExtractor creates an extractor for the given engine type.
func NewExtractor(databaseType string) (Extractor, error) {
	switch strings.ToLower(databaseType) {
	case "postgres", "postgresql":
		return &postgresExtractor{mapper: newPostgresTypeMapper()}, nil
	case "mysql":
		return &mysqlExtractor{mapper: newMySQLTypeMapper()}, nil
	case "sqlite", "sqlite3":
		return &sqliteExtractor{mapper: newSQLiteTypeMapper()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, databaseType)
	}
}

// ShouldIncludeTable applies include/exclude wildcard filters.
func ShouldIncludeTable(tableName string, includeTables, excludeTables []string) bool {
	for _, pattern := range excludeTables {
		if matchWildcard(pattern, tableName) {
			return false
		}
	}

	if len(includeTables) > 0 {
		for _, pattern := range includeTables {
			if matchWildcard(pattern, tableName) {
				return true
			}
		}

		return false
	}

	return true
}

// matchWildcard performs simple wildcard matching with the * character.
func matchWildcard(pattern, text string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == text
	}

	matched, err := filepath.Match(pattern, text)
	if err != nil {
		return pattern == text
	}

	return matched
}
