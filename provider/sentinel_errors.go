package provider

import "errors"

// Connection and reference errors
var (
	ErrSchemaUnavailable   = errors.New("schema unavailable")
	ErrEmptyReference      = errors.New("schema reference cannot be empty")
	ErrInvalidReference    = errors.New("invalid schema reference")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Extraction errors
var (
	ErrNoTablesFound    = errors.New("no tables found")
	ErrResultScanFailed = errors.New("result scan failed")
)

// Schema file errors
var (
	ErrSchemaFileNotFound = errors.New("schema file not found")
	ErrInvalidSchemaFile  = errors.New("invalid schema file")
)
