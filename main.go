package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/keystash/internal/cli"
	"github.com/semmy-space/keystash/internal/output"
	"github.com/semmy-space/keystash/internal/secrets"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("keystash"),
		kong.Description("Store JSON secrets in the desktop keyring (KWallet, Secret Service, ...)"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Answers shell completion requests and exits when COMP_LINE is set
	backends := secrets.DefaultRegistry(secrets.Options{FileStore: true}).Names()
	kongplete.Complete(parser,
		kongplete.WithPredictor("backend", complete.PredictSet(backends...)),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Hooks such as config loading report CLIErrors during parsing
		var cliErr *output.CLIError
		if !errors.As(err, &cliErr) {
			parser.FatalIfErrorf(err)
		}
		exit(err)
	}

	if err := ctx.Run(); err != nil {
		exit(err)
	}
}

// exit prints err and terminates with its exit code
func exit(err error) {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		formatter := output.New("plain")
		formatter.PrintError(cliErr)
		if cliErr.Hint != "" {
			formatter.PrintHint(cliErr.Hint)
		}
		os.Exit(cliErr.ExitCode)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(output.ExitGeneral)
}
