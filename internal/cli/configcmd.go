package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/keystash/internal/config"
	"github.com/semmy-space/keystash/internal/output"
	"github.com/semmy-space/keystash/internal/secrets"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., backend, timeout)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Unknown config key: %s", cmd.Key),
			ExitCode: output.ExitNotFound,
			Hint:     "Valid keys: " + strings.Join(config.Keys(), ", "),
		}
	}

	fmt.Println(value)
	return nil
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config) error {
	// Validate key exists
	if _, err := cfg.Get(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Unknown config key: %s", cmd.Key),
			ExitCode: output.ExitUsage,
			Hint:     "Valid keys: " + strings.Join(config.Keys(), ", "),
		}
	}

	// Special validation for backend
	if cmd.Key == "backend" {
		known := secrets.DefaultRegistry(secrets.Options{FileStore: true})
		if _, ok := known.Lookup(cmd.Value); !ok {
			return &output.CLIError{
				Message:  fmt.Sprintf("Unknown backend: %s. Registered backends: %s", cmd.Value, strings.Join(known.Names(), ", ")),
				ExitCode: output.ExitUsage,
			}
		}
	}

	if cmd.Key == "file_store" && cmd.Value == "true" && os.Getenv("KEYSTASH_FILE_PASSWORD") == "" {
		fmt.Fprintf(os.Stderr, "Note: the file store stays unusable until KEYSTASH_FILE_PASSWORD is set.\n")
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitUsage,
		}
	}

	fmt.Fprintf(os.Stderr, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config) error {
	if err := cfg.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitUsage,
		}
	}

	fmt.Fprintf(os.Stderr, "Unset %s\n", cmd.Key)
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

type configItem struct {
	Key   string
	Value string
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	return fp.Formatter.PrintList(configItems(cfg), []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value", Width: 64},
	})
}

// configItems lists every key with its effective value; unset keys show
// their default in parentheses.
func configItems(cfg *config.Config) []configItem {
	defaults := map[string]string{
		"timeout":         config.DefaultTimeout.String(),
		"file_store":      "false",
		"file_store_path": secrets.DefaultFilePath(),
		"default_output":  "auto",
	}

	keys := config.Keys()
	items := make([]configItem, 0, len(keys))
	for _, key := range keys {
		value, _ := cfg.Get(key)
		if value == "" {
			if def, ok := defaults[key]; ok {
				value = "(" + def + ")"
			}
		}
		items = append(items, configItem{Key: key, Value: value})
	}
	return items
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config) error {
	path := cfg.Path()

	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "(file does not exist yet - will be created on first write)\n")
	} else {
		fmt.Fprintf(os.Stderr, "(file exists)\n")
	}

	return nil
}
