package secrets

import (
	"log/slog"
	"time"

	"github.com/99designs/keyring"
)

// Built-in backend names.
const (
	BackendKWallet       = "kwallet"
	BackendSecretService = "secret-service"
	BackendKeychain      = "keychain"
	BackendWinCred       = "wincred"
	BackendFile          = "file"
)

// KWalletPriority prefers KWallet inside a KDE session and ranks it just below
// the Secret Service elsewhere. kwalletd needs a graphical session, so on
// headless and WSL hosts it drops to the off-platform level.
func KWalletPriority(env Environment) float64 {
	switch {
	case env.HasDesktop("KDE"):
		return 5.1
	case env.Headless, env.WSL:
		return 1.0
	default:
		return 4.9
	}
}

// SecretServicePriority is constant.
func SecretServicePriority(Environment) float64 {
	return 5.0
}

// NativePriority ranks a platform keyring high on its own OS only.
func NativePriority(goos string) func(Environment) float64 {
	return func(env Environment) float64 {
		if env.GOOS == goos {
			return 5.0
		}
		return 1.0
	}
}

// FilePriority keeps the encrypted file below every OS keyring.
func FilePriority(Environment) float64 {
	return 0.1
}

// Options configures DefaultRegistry.
type Options struct {
	// Timeout bounds each call into a backend. Zero disables it.
	Timeout time.Duration

	// FileStore enables the encrypted file backend.
	FileStore    bool
	FilePath     string
	FilePassword string

	Logger *slog.Logger
}

// DefaultRegistry registers every built-in backend.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()

	bounded := func(newMech func() (Mechanism, error)) func() (Mechanism, error) {
		return func() (Mechanism, error) {
			mech, err := newMech()
			if err != nil {
				return nil, err
			}
			return WithTimeout(mech, opts.Timeout), nil
		}
	}
	ring := func(name string, backend keyring.BackendType) func() (Mechanism, error) {
		return bounded(func() (Mechanism, error) {
			return NewRingMechanism(name, backend), nil
		})
	}

	mustRegister(r, MechanismDescriptor(BackendKWallet, KWalletPriority,
		ring(BackendKWallet, keyring.KWalletBackend), opts.Logger))
	mustRegister(r, MechanismDescriptor(BackendSecretService, SecretServicePriority,
		bounded(func() (Mechanism, error) { return NewSecretServiceMechanism(), nil }), opts.Logger))
	mustRegister(r, MechanismDescriptor(BackendKeychain, NativePriority("darwin"),
		ring(BackendKeychain, keyring.KeychainBackend), opts.Logger))
	mustRegister(r, MechanismDescriptor(BackendWinCred, NativePriority("windows"),
		ring(BackendWinCred, keyring.WinCredBackend), opts.Logger))

	if opts.FileStore {
		mustRegister(r, MechanismDescriptor(BackendFile, FilePriority,
			bounded(func() (Mechanism, error) {
				return NewFileMechanism(opts.FilePath, opts.FilePassword)
			}), opts.Logger))
	}

	return r
}

func mustRegister(r *Registry, d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}
