package cli

import (
	"context"
	"os"

	"github.com/querylint/querylint/engine"
)

// fileQuerySource feeds the engine from an optional inline query plus a
// list of SQL files, one query per file.
type fileQuerySource struct {
	inline    string
	files     []string
	schemaRef string
}

func (s *fileQuerySource) Candidates(_ context.Context) ([]engine.Candidate, error) {
	var candidates []engine.Candidate

	if s.inline != "" {
		candidates = append(candidates, engine.Candidate{
			RawSQL:    s.inline,
			SchemaRef: s.schemaRef,
			Location:  "<query>",
		})
	}

	for _, path := range s.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, engine.Candidate{
			RawSQL:    string(data),
			SchemaRef: s.schemaRef,
			Location:  path,
		})
	}

	return candidates, nil
}
