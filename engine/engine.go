// Package engine composes schema resolution, parsing, and binding into
// the single validation entry point consumed by hosts.
package engine

import (
	"context"
	"strings"
	"time"

	querylint "github.com/querylint/querylint"
	"github.com/querylint/querylint/binder"
	"github.com/querylint/querylint/parser"
	"github.com/querylint/querylint/provider"
)

// Option configures an Engine.
type Option func(*Engine)

// WithProvider substitutes the schema provider. The default provider
// probes live databases and loads file references.
func WithProvider(p *provider.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithStrictMode escalates advisory warnings to validation failures.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithProbeTimeout bounds schema probes of the default provider.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// Engine validates raw SQL text against database schemas. It is safe for
// concurrent use; the only shared state is the provider's snapshot cache.
type Engine struct {
	provider *provider.Provider
	strict   bool
	timeout  time.Duration
}

func New(options ...Option) *Engine {
	e := &Engine{}

	for _, option := range options {
		option(e)
	}

	if e.provider == nil {
		var opts []provider.Option
		if e.timeout > 0 {
			opts = append(opts, provider.WithProbeTimeout(e.timeout))
		}

		e.provider = provider.NewProvider(opts...)
	}

	return e
}

// Validate checks rawSQL against the schema that schemaRef resolves to.
// Every failure class is terminal for the one call: schema resolution
// failures, syntax errors, and binding errors all surface as a Failure
// result rather than an error return.
func (e *Engine) Validate(ctx context.Context, rawSQL, schemaRef string) querylint.ValidationResult {
	if strings.TrimSpace(rawSQL) == "" {
		return querylint.Failure(querylint.ErrEmptyQuery.Error())
	}

	if strings.TrimSpace(schemaRef) == "" {
		return querylint.Failure(querylint.ErrEmptySchemaReference.Error())
	}

	snapshot, err := e.provider.Snapshot(ctx, schemaRef)
	if err != nil {
		return querylint.Failure(err.Error())
	}

	stmt, err := parser.Parse(rawSQL)
	if err != nil {
		return querylint.Failure(err.Error())
	}

	query, warnings, errs := binder.Bind(stmt, snapshot)
	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, bindErr := range errs {
			messages[i] = bindErr.Error()
		}

		return querylint.Failure(messages...)
	}

	if e.strict && len(warnings) > 0 {
		return querylint.Failure(warnings...)
	}

	return querylint.Success(query, warnings)
}

// Invalidate drops the cached snapshot for schemaRef.
func (e *Engine) Invalidate(schemaRef string) {
	e.provider.Invalidate(schemaRef)
}
