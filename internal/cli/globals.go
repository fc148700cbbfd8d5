package cli

import (
	"os"

	"golang.org/x/term"
)

// Globals holds global flags available to all commands
type Globals struct {
	Backend string `help:"Use only this backend (still probed before use)" predictor:"backend" env:"KEYSTASH_BACKEND"`
	Output  string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"KEYSTASH_OUTPUT"`
	Verbose bool   `help:"Log backend probing and selection" short:"v" env:"KEYSTASH_VERBOSE"`
	Retries uint64 `help:"Retry an unavailable backend this many times" default:"0" env:"KEYSTASH_RETRIES"`
}

// ResolvedOutput returns the effective output mode.
// "auto" falls back to the configured default, then detects TTY:
// if stdout is TTY -> rich, else -> plain
func (g *Globals) ResolvedOutput(configured string) string {
	if g.Output != "auto" {
		return g.Output
	}
	if configured != "" && configured != "auto" {
		return configured
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}
