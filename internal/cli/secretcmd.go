package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"golang.org/x/term"

	"github.com/semmy-space/keystash/internal/output"
	"github.com/semmy-space/keystash/internal/secrets"
)

// GetCmd implements the get command
type GetCmd struct {
	Key string `arg:"" help:"Secret key"`
}

// Run executes the get command
func (cmd *GetCmd) Run(s *Session, fp *FormatterProvider) error {
	adapter, err := s.Open()
	if err != nil {
		return err
	}

	var value any
	err = s.retry(func() error {
		var err error
		value, err = adapter.Get(cmd.Key)
		return err
	})
	if err != nil {
		return toCLIError(err)
	}

	return fp.Formatter.Print(value)
}

// SetCmd implements the set command
type SetCmd struct {
	Key    string `arg:"" help:"Secret key"`
	Value  string `arg:"" optional:"" help:"Value as JSON5 (e.g. '{token: \"abc\"}'), or text with --string"`
	String bool   `help:"Store VALUE verbatim as a JSON string" short:"s"`
	Prompt bool   `help:"Read a string value from the terminal without echo" short:"p"`
}

// Run executes the set command
func (cmd *SetCmd) Run(s *Session) error {
	value, err := cmd.value()
	if err != nil {
		return err
	}

	adapter, err := s.Open()
	if err != nil {
		return err
	}

	err = s.retry(func() error {
		return adapter.Set(cmd.Key, value)
	})
	if err != nil {
		return toCLIError(err)
	}

	fmt.Fprintf(os.Stderr, "Stored %s in %s\n", cmd.Key, adapter.Backend())
	return nil
}

func (cmd *SetCmd) value() (any, error) {
	if cmd.Prompt {
		return promptSecret()
	}
	if cmd.Value == "" && !cmd.String {
		return nil, output.NewCLIError(output.ExitUsage, "missing value").
			WithHint("Pass a JSON5 value, use --string for text, or --prompt to type it")
	}
	return parseValue(cmd.Value, cmd.String)
}

// parseValue decodes raw as JSON5 unless asString is set. The adapter
// re-encodes the result as canonical JSON.
func parseValue(raw string, asString bool) (any, error) {
	if asString {
		return raw, nil
	}

	var v any
	if err := json5.Unmarshal([]byte(raw), &v); err != nil {
		return nil, output.NewCLIError(output.ExitUsage, fmt.Sprintf("value is not valid JSON5: %v", err)).
			WithHint("Use --string to store plain text")
	}
	return v, nil
}

func promptSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", output.NewCLIError(output.ExitUsage, "--prompt requires a terminal on stdin")
	}

	fmt.Fprint(os.Stderr, "Secret: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(b), nil
}

// DeleteCmd implements the delete command
type DeleteCmd struct {
	Key string `arg:"" help:"Secret key"`
}

// Run executes the delete command
func (cmd *DeleteCmd) Run(s *Session) error {
	adapter, err := s.Open()
	if err != nil {
		return err
	}

	timedOut := false
	err = s.retry(func() error {
		err := adapter.Delete(cmd.Key)
		if timedOut && errors.Is(err, secrets.ErrNotFound) {
			// An abandoned attempt may have finished the delete
			return nil
		}
		timedOut = timedOut || errors.Is(err, context.DeadlineExceeded)
		return err
	})
	if err != nil {
		return toCLIError(err)
	}

	fmt.Fprintf(os.Stderr, "Deleted %s from %s\n", cmd.Key, adapter.Backend())
	return nil
}
