package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/keystash/internal/config"
	"github.com/semmy-space/keystash/internal/log"
	"github.com/semmy-space/keystash/internal/output"
	"github.com/semmy-space/keystash/internal/secrets"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Get        GetCmd                       `cmd:"" help:"Print a stored secret"`
	Set        SetCmd                       `cmd:"" help:"Store a secret"`
	Delete     DeleteCmd                    `cmd:"" aliases:"rm" help:"Delete a stored secret"`
	Backends   BackendsCmd                  `cmd:"" help:"List keyring backends and which one would be used"`
	Config     ConfigCmd                    `cmd:"" help:"Configuration commands"`
	Completion kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version    VersionCmd                   `cmd:"" help:"Show version information"`
}

// AfterApply runs once flags are parsed and before any command executes.
// It loads config and binds dependencies. The session is built only for
// commands that ask for one, so config commands still work when the backend
// settings are invalid.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitConfigError,
			Hint:     "Config file: " + config.ConfigPath(),
		}
	}

	formatter := &FormatterProvider{
		Formatter: output.New(c.ResolvedOutput(cfg.DefaultOutput)),
	}

	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)

	return ctx.BindToProvider(func() (*Session, error) {
		return NewSession(cfg, &c.Globals)
	})
}

// NewSession builds the registry of built-in backends from cfg.
// The --backend flag takes precedence over the configured backend.
func NewSession(cfg *config.Config, globals *Globals) (*Session, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitConfigError,
			Hint:     "Run: keystash config set timeout 10s",
		}
	}

	logger := log.New(os.Stderr, globals.Verbose)

	backend := globals.Backend
	if backend == "" {
		backend = cfg.Backend
	}

	registry := secrets.DefaultRegistry(secrets.Options{
		Timeout:      timeout,
		FileStore:    cfg.FileStoreEnabled(),
		FilePath:     cfg.FileStorePath,
		FilePassword: os.Getenv("KEYSTASH_FILE_PASSWORD"),
		Logger:       logger,
	})

	return &Session{
		Registry: registry,
		Env:      secrets.DetectEnvironment(),
		Logger:   logger,
		Backend:  backend,
		Retries:  globals.Retries,
	}, nil
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "keystash version %s\n", ctx.Model.Vars()["version"])
	return nil
}
