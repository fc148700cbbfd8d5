package secrets

import (
	"errors"

	"github.com/godbus/dbus/v5"
	"github.com/zalando/go-keyring"
)

// D-Bus error names the Secret Service mechanism classifies.
const (
	dbusServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	dbusNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
	dbusAccessDenied   = "org.freedesktop.DBus.Error.AccessDenied"
	dbusSpawnFailed    = "org.freedesktop.DBus.Error.Spawn.ChildExited"
	secretIsLocked     = "org.freedesktop.Secret.Error.IsLocked"
	secretNoSession    = "org.freedesktop.Secret.Error.NoSession"
)

// SecretServiceMechanism talks to the freedesktop Secret Service daemon
// (gnome-keyring, KeePassXC, ...) through zalando/go-keyring.
type SecretServiceMechanism struct{}

// NewSecretServiceMechanism returns the Secret Service mechanism.
func NewSecretServiceMechanism() *SecretServiceMechanism {
	return &SecretServiceMechanism{}
}

func (m *SecretServiceMechanism) Name() string { return BackendSecretService }

func (m *SecretServiceMechanism) Get(service, key string) (string, error) {
	value, err := keyring.Get(service, key)
	if err != nil {
		return "", classifySecretService("get", err)
	}
	return value, nil
}

func (m *SecretServiceMechanism) Set(service, key, value string) error {
	if err := keyring.Set(service, key, value); err != nil {
		return classifySecretService("set", err)
	}
	return nil
}

func (m *SecretServiceMechanism) Delete(service, key string) error {
	if err := keyring.Delete(service, key); err != nil {
		return classifySecretService("delete", err)
	}
	return nil
}

func classifySecretService(op string, err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return mechErr(BackendSecretService, op, FailureAbsent, err)
	case errors.Is(err, keyring.ErrSetDataTooBig):
		return mechErr(BackendSecretService, op, FailureRejected, err)
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		return mechErr(BackendSecretService, op, FailureMissing, err)
	}

	if name, ok := dbusErrorName(err); ok {
		switch name {
		case dbusServiceUnknown, dbusNameHasNoOwner, dbusSpawnFailed:
			return mechErr(BackendSecretService, op, FailureMissing, err)
		case secretIsLocked, dbusAccessDenied:
			return mechErr(BackendSecretService, op, FailureLocked, err)
		case secretNoSession:
			return mechErr(BackendSecretService, op, FailureInit, err)
		}
	}
	return mechErr(BackendSecretService, op, FailureTransport, err)
}

// dbusErrorName extracts the D-Bus error name; godbus surfaces both Error
// values and pointers.
func dbusErrorName(err error) (string, bool) {
	var value dbus.Error
	if errors.As(err, &value) {
		return value.Name, true
	}
	var ptr *dbus.Error
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Name, true
	}
	return "", false
}
