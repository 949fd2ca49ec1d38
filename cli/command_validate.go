package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/querylint/querylint/engine"
)

// ValidateCmd validates SQL queries against a database schema.
type ValidateCmd struct {
	DB     string   `help:"Database connection string or file:// schema reference"`
	Env    string   `help:"Named database entry from the configuration file"`
	Query  string   `short:"q" help:"Inline query text to validate"`
	Files  []string `arg:"" optional:"" help:"SQL files to validate (one query per file)" type:"existingfile"`
	Strict bool     `help:"Treat advisory warnings as failures"`
}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	ref, config, err := resolveReference(ctx, cmd.DB, cmd.Env)
	if err != nil {
		return err
	}

	if cmd.Query == "" && len(cmd.Files) == 0 {
		return ErrNoQueryGiven
	}

	strict := cmd.Strict
	if config != nil {
		strict = strict || config.Validation.Strict
	}

	options := []engine.Option{engine.WithStrictMode(strict)}
	if config != nil {
		options = append(options, engine.WithProbeTimeout(config.Validation.ProbeTimeout))
	}

	eng := engine.New(options...)

	source := &fileQuerySource{
		inline:    cmd.Query,
		files:     cmd.Files,
		schemaRef: ref,
	}

	results, err := eng.ValidateSource(context.Background(), source)
	if err != nil {
		return err
	}

	failed := 0

	for _, result := range results {
		if !printResult(ctx, result) {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d queries", ErrValidationFindings, failed, len(results))
	}

	return nil
}

// printResult reports one validation outcome and returns whether it passed.
func printResult(ctx *Context, result engine.SourceResult) bool {
	label := result.Candidate.Location

	if !result.Result.Valid() {
		if !ctx.Quiet {
			color.Red("✗ %s", label)

			for _, message := range result.Result.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", message)
			}
		}

		return false
	}

	if ctx.Quiet {
		return true
	}

	color.Green("✓ %s", label)

	for _, warning := range result.Result.Warnings {
		color.Yellow("  warning: %s", warning)
	}

	if ctx.Verbose {
		query := result.Result.Query

		for _, col := range query.ResultColumns {
			nullable := "not null"
			if col.Nullable {
				nullable = "null"
			}

			fmt.Printf("  column %s %s %s\n", col.Name, col.Type, nullable)
		}

		for _, param := range query.Parameters {
			name := param.Name
			if name == "" {
				name = fmt.Sprintf("?%d", param.Position+1)
			}

			fmt.Printf("  param %s %s\n", name, param.Type)
		}
	}

	return true
}
