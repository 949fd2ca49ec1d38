package querylint

import "errors"

// Common errors used throughout the querylint package
var (
	// ErrEmptyQuery is returned when an empty query text reaches the engine.
	ErrEmptyQuery = errors.New("query text cannot be empty")
	// ErrEmptySchemaReference is returned when a schema reference is blank.
	ErrEmptySchemaReference = errors.New("schema reference cannot be empty")

	// ErrDuplicateTable indicates two tables share a name within one snapshot.
	ErrDuplicateTable = errors.New("duplicate table name in snapshot")
	// ErrDuplicateColumn indicates two columns share a name within one table.
	ErrDuplicateColumn = errors.New("duplicate column name in table")

	// ErrNilQuery indicates an attempt to build a success result without a query.
	ErrNilQuery = errors.New("success result requires a validated query")

	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrDatabaseNotConfigured indicates a named database entry is missing.
	ErrDatabaseNotConfigured = errors.New("database is not configured")
)
