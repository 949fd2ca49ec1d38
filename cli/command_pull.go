package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/querylint/querylint/provider"
)

// PullCmd snapshots a live database schema into YAML files so later
// validations can use a file:// reference instead of a connection.
type PullCmd struct {
	DB  string `help:"Database connection string"`
	Env string `help:"Named database entry from the configuration file"`

	Output   string `short:"o" help:"Output directory" type:"path"`
	PerTable bool   `help:"Write one YAML file per table" default:"true"`

	IncludeTables []string `help:"Table patterns to include (repeatable)"`
	ExcludeTables []string `help:"Table patterns to exclude (repeatable)"`
}

func (cmd *PullCmd) Run(ctx *Context) error {
	ref, config, err := resolveReference(ctx, cmd.DB, cmd.Env)
	if err != nil {
		return err
	}

	include := cmd.IncludeTables
	exclude := cmd.ExcludeTables
	output := cmd.Output

	if config != nil {
		if len(include) == 0 {
			include = config.Schema.IncludeTables
		}

		if len(exclude) == 0 {
			exclude = config.Schema.ExcludeTables
		}

		if output == "" {
			output = config.Schema.OutputDir
		}
	}

	if output == "" {
		output = ".querylint/schema"
	}

	options := []provider.Option{
		provider.WithExtractConfig(provider.ExtractConfig{
			IncludeTables: include,
			ExcludeTables: exclude,
		}),
	}

	if config != nil {
		options = append(options, provider.WithProbeTimeout(config.Validation.ProbeTimeout))
	}

	if ctx.Verbose {
		color.Blue("Pulling schema from %s", ref)
	}

	snapshot, err := provider.NewProvider(options...).Snapshot(context.Background(), ref)
	if err != nil {
		return err
	}

	var path string
	if cmd.PerTable {
		path, err = provider.NewYAMLGenerator(true).Generate(snapshot, output)
	} else {
		path, err = provider.NewYAMLGenerator(false).Generate(snapshot, fmt.Sprintf("%s/%s.yaml", output, snapshot.Name))
	}

	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.Green("✓ %d tables written to %s", len(snapshot.Tables), path)
		fmt.Printf("  validate against it with --db file://%s\n", path)
	}

	return nil
}
