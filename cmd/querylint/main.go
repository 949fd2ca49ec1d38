package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/querylint/querylint/cli"
)

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" default:"querylint.yaml"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Validate cli.ValidateCmd `cmd:"" help:"Validate SQL queries against a database schema"`
	Pull     cli.PullCmd     `cmd:"" help:"Pull schema information from a database into YAML"`
	Version  VersionCmd      `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Println("querylint v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &cli.Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// findings exit 1, operational failures exit 2
		if errors.Is(err, cli.ErrValidationFindings) {
			os.Exit(1)
		}

		os.Exit(2)
	}
}
