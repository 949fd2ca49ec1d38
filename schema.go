package querylint

import (
	"fmt"
	"strings"
)

// ColumnType is the normalized semantic type tag shared by all supported
// database engines. Driver-specific type names are mapped onto these tags by
// the provider's type mappers.
type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeDecimal  ColumnType = "decimal"
	TypeString   ColumnType = "string"
	TypeBool     ColumnType = "bool"
	TypeDate     ColumnType = "date"
	TypeTime     ColumnType = "time"
	TypeDateTime ColumnType = "datetime"
	TypeBinary   ColumnType = "binary"
	TypeJSON     ColumnType = "json"
	// TypeAny marks columns whose driver type could not be classified.
	// It compares compatible with every other type.
	TypeAny ColumnType = "any"
)

// IsNumeric reports whether the type participates in numeric promotion.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat || t == TypeDecimal
}

// IsTemporal reports whether the type is a date/time kind.
func (t ColumnType) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeDateTime
}

// Column describes a single column inside a snapshot table.
type Column struct {
	Name         string     `yaml:"name"`
	Type         ColumnType `yaml:"type"`
	Nullable     bool       `yaml:"nullable"`
	IsPrimaryKey bool       `yaml:"isPrimaryKey,omitempty"`
	DefaultValue string     `yaml:"defaultValue,omitempty"`
	Comment      string     `yaml:"comment,omitempty"`
	MaxLength    *int       `yaml:"maxLength,omitempty"`
	Precision    *int       `yaml:"precision,omitempty"`
	Scale        *int       `yaml:"scale,omitempty"`
}

// Table describes a table inside a snapshot. Columns keep their
// catalog declaration order so that SELECT * expansion is deterministic.
type Table struct {
	Name    string    `yaml:"name"`
	Comment string    `yaml:"comment,omitempty"`
	Columns []*Column `yaml:"columns"`

	byName map[string]*Column
}

// Column looks a column up by name, case-insensitively.
func (t *Table) Column(name string) (*Column, bool) {
	col, ok := t.byName[strings.ToLower(name)]
	return col, ok
}

// DatabaseInfo records where a snapshot came from.
type DatabaseInfo struct {
	Type    string `yaml:"type"`
	Version string `yaml:"version,omitempty"`
	Name    string `yaml:"name,omitempty"`
}

// Snapshot is an immutable point-in-time model of a database schema.
// Once constructed it is safe to share across concurrent validations.
type Snapshot struct {
	Name     string       `yaml:"name"`
	Database DatabaseInfo `yaml:"database"`
	Tables   []*Table     `yaml:"tables"`

	byName map[string]*Table
}

// NewSnapshot indexes the given tables and enforces the snapshot
// invariants: table names unique within the snapshot and column names
// unique within each table, both case-insensitively.
func NewSnapshot(name string, info DatabaseInfo, tables []*Table) (*Snapshot, error) {
	snap := &Snapshot{
		Name:     name,
		Database: info,
		Tables:   tables,
		byName:   make(map[string]*Table, len(tables)),
	}

	for _, table := range tables {
		key := strings.ToLower(table.Name)
		if _, exists := snap.byName[key]; exists {
			return nil, fmt.Errorf("%w: table %s", ErrDuplicateTable, table.Name)
		}

		snap.byName[key] = table

		table.byName = make(map[string]*Column, len(table.Columns))
		for _, col := range table.Columns {
			colKey := strings.ToLower(col.Name)
			if _, exists := table.byName[colKey]; exists {
				return nil, fmt.Errorf("%w: column %s.%s", ErrDuplicateColumn, table.Name, col.Name)
			}

			table.byName[colKey] = col
		}
	}

	return snap, nil
}

// Table looks a table up by name, case-insensitively.
func (s *Snapshot) Table(name string) (*Table, bool) {
	table, ok := s.byName[strings.ToLower(name)]
	return table, ok
}
