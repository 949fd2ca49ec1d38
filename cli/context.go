// Package cli implements the querylint commands. The kong wiring lives
// in cmd/querylint; everything here is plain command logic so it can be
// tested without a process boundary.
package cli

import (
	"errors"
	"fmt"

	querylint "github.com/querylint/querylint"
)

var (
	ErrNoDatabaseSelected = errors.New("either --db or --env must be specified")
	ErrNoQueryGiven       = errors.New("no query text or query files given")
	// ErrValidationFindings distinguishes queries that failed validation
	// from operational failures; the binary maps it to exit code 1.
	ErrValidationFindings = errors.New("validation failed")
)

// Context carries the global flags shared by every command.
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// resolveReference turns the --db / --env pair into a schema reference,
// consulting the configuration file only when --env is used.
func resolveReference(ctx *Context, db, env string) (string, *querylint.Config, error) {
	if db != "" {
		return db, nil, nil
	}

	if env == "" {
		return "", nil, ErrNoDatabaseSelected
	}

	config, err := querylint.LoadConfig(ctx.Config)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	connection, err := config.ResolveDatabase(env)
	if err != nil {
		return "", nil, err
	}

	return connection, config, nil
}
