package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/semmy-space/keystash/internal/output"
	"github.com/semmy-space/keystash/internal/secrets"
)

// Session carries what every secret command needs: the registry to select
// from and the environment to rank it in.
type Session struct {
	Registry *secrets.Registry
	Env      secrets.Environment
	Logger   *slog.Logger
	Backend  string // empty means any registered backend
	Retries  uint64
}

// Open selects a backend. Selection probes every time it runs.
func (s *Session) Open() (*secrets.Adapter, error) {
	adapter, err := s.Registry.Select(s.Env, s.Backend, s.Logger)
	if err != nil {
		return nil, toCLIError(err)
	}
	s.Logger.Debug("using keyring backend", "backend", adapter.Backend())
	return adapter, nil
}

// retry runs op, repeating it with exponential backoff while it fails with
// ErrBackendUnavailable, at most s.Retries extra times.
func (s *Session) retry(op func() error) error {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.Retries)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, secrets.ErrBackendUnavailable) {
			return backoff.Permanent(err)
		}
		if err != nil {
			s.Logger.Debug("keyring backend unavailable", "error", err)
		}
		return err
	}, b)
}

// toCLIError maps the secrets error vocabulary to exit codes and hints.
func toCLIError(err error) error {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	e := output.NewCLIError(output.ExitGeneral, err.Error()).WithCause(err)
	switch {
	case errors.Is(err, secrets.ErrNotFound):
		e.ExitCode = output.ExitNotFound
	case errors.Is(err, secrets.ErrInvalidKey), errors.Is(err, secrets.ErrInvalidValue):
		e.ExitCode = output.ExitUsage
	case errors.Is(err, secrets.ErrNoBackendAvailable):
		e.ExitCode = output.ExitConfigError
		e.Hint = "Unlock your keyring or start a supported service (KWallet, gnome-keyring). " +
			"Run 'keystash backends -v' to see why each backend was rejected."
	case errors.Is(err, secrets.ErrLocked):
		e.ExitCode = output.ExitUnavailable
		e.Hint = "Unlock your keyring and retry"
	case errors.Is(err, context.DeadlineExceeded):
		e.ExitCode = output.ExitUnavailable
		e.Hint = "The keyring did not answer in time. Raise it with: keystash config set timeout 30s"
	case errors.Is(err, secrets.ErrBackendUnavailable):
		e.ExitCode = output.ExitUnavailable
		e.Hint = "Secure storage is unavailable. Retry later or pass --retries"
	}
	return e
}
