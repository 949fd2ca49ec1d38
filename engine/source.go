package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	querylint "github.com/querylint/querylint"
)

const defaultSourceWorkers = 8

// Candidate is one raw query discovered by a host in its own source text.
type Candidate struct {
	RawSQL    string
	SchemaRef string
	// Location is the host's own position notation (file:line or similar).
	// The engine carries it through unchanged.
	Location string
}

// QuerySource is the capability a host implements to feed discovered
// queries into the engine. Candidates returns every candidate found in
// whatever the host considers one unit of analysis.
type QuerySource interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}

// SourceResult pairs a candidate with its validation outcome.
type SourceResult struct {
	Candidate Candidate
	Result    querylint.ValidationResult
}

// ValidateSource drains source and validates every candidate. Validations
// run concurrently with a bounded worker fan-out; results come back in
// candidate order regardless of completion order.
func (e *Engine) ValidateSource(ctx context.Context, source QuerySource) ([]SourceResult, error) {
	candidates, err := source.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SourceResult, len(candidates))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(defaultSourceWorkers)

	for i, candidate := range candidates {
		group.Go(func() error {
			results[i] = SourceResult{
				Candidate: candidate,
				Result:    e.Validate(ctx, candidate.RawSQL, candidate.SchemaRef),
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
