package secrets

import (
	"errors"
	"strings"

	"github.com/99designs/keyring"
)

// RingOpener opens a 99designs keyring. Replaced in tests.
type RingOpener func(cfg keyring.Config) (keyring.Keyring, error)

// kwalletWallet is the wallet every KWallet namespace lives in; namespaces are
// folders inside it.
const kwalletWallet = "kdewallet"

// RingMechanism adapts one 99designs/keyring backend (KWallet, Keychain,
// WinCred). The keyring is opened per call because the library binds the
// namespace at open time.
type RingMechanism struct {
	name    string
	backend keyring.BackendType
	open    RingOpener
}

// NewRingMechanism returns a mechanism restricted to backend.
func NewRingMechanism(name string, backend keyring.BackendType) *RingMechanism {
	return &RingMechanism{name: name, backend: backend, open: keyring.Open}
}

// WithOpener replaces how the keyring is opened.
func (m *RingMechanism) WithOpener(open RingOpener) *RingMechanism {
	m.open = open
	return m
}

func (m *RingMechanism) Name() string { return m.name }

// config maps service to the backend's namespace: a folder in the KWallet
// wallet, a Keychain service, or a WinCred target prefix.
func (m *RingMechanism) config(service string) keyring.Config {
	cfg := keyring.Config{
		AllowedBackends:          []keyring.BackendType{m.backend},
		KeychainTrustApplication: true, // macOS: don't prompt every access
		KWalletAppID:             ServiceName,
		KWalletFolder:            service,
		WinCredPrefix:            service,
	}
	if m.backend == keyring.KWalletBackend {
		// ServiceName is the wallet name for KWallet
		cfg.ServiceName = kwalletWallet
	} else {
		cfg.ServiceName = service
	}
	return cfg
}

func (m *RingMechanism) ring(op, service string) (keyring.Keyring, error) {
	ring, err := m.open(m.config(service))
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, mechErr(m.name, op, FailureMissing, err)
		}
		return nil, mechErr(m.name, op, FailureInit, err)
	}
	return ring, nil
}

func (m *RingMechanism) Get(service, key string) (string, error) {
	ring, err := m.ring("get", service)
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", m.classify("get", err)
	}
	return string(item.Data), nil
}

func (m *RingMechanism) Set(service, key, value string) error {
	ring, err := m.ring("set", service)
	if err != nil {
		return err
	}
	item := keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: service + "/" + key,
	}
	if err := ring.Set(item); err != nil {
		return m.classify("set", err)
	}
	return nil
}

func (m *RingMechanism) Delete(service, key string) error {
	ring, err := m.ring("delete", service)
	if err != nil {
		return err
	}
	// KWallet reports success when removing a missing entry
	if _, err := ring.Get(key); err != nil {
		return m.classify("delete", err)
	}
	if err := ring.Remove(key); err != nil {
		return m.classify("delete", err)
	}
	return nil
}

// classify maps library errors. The library exposes no typed locked error,
// so the message is the only signal.
func (m *RingMechanism) classify(op string, err error) error {
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return mechErr(m.name, op, FailureAbsent, err)
	case errors.Is(err, keyring.ErrNoAvailImpl):
		return mechErr(m.name, op, FailureMissing, err)
	case strings.Contains(strings.ToLower(err.Error()), "locked"):
		return mechErr(m.name, op, FailureLocked, err)
	default:
		return mechErr(m.name, op, FailureTransport, err)
	}
}
