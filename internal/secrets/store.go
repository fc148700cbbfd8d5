package secrets

import (
	"errors"
	"fmt"
)

// ServiceName is the fixed namespace every caller key is stored under.
const ServiceName = "keystash"

// Errors returned by Adapter and Select. Callers should match them with errors.Is.
var (
	// ErrNotFound means there is no live entry for the key.
	ErrNotFound = errors.New("secret not found")

	// ErrInvalidValue means the value could not be encoded, or the backend
	// refused this particular write.
	ErrInvalidValue = errors.New("invalid secret value")

	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("secret key must not be empty")

	// ErrBackendUnavailable wraps an operational failure of the backend.
	ErrBackendUnavailable = errors.New("secret backend unavailable")

	// ErrNoBackendAvailable is returned by Select when no candidate passed its probe.
	ErrNoBackendAvailable = errors.New("no usable secret backend")

	// ErrLocked matches any error caused by a locked keyring.
	ErrLocked = errors.New("keyring is locked")
)

// Mechanism is the minimal capability set an OS secret store must provide.
// Implementations report failures as *MechanismError.
type Mechanism interface {
	Name() string
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// FailureKind classifies a mechanism failure.
type FailureKind int

const (
	// FailureTransport is an operational failure with no finer classification.
	FailureTransport FailureKind = iota
	// FailureAbsent means the requested entry does not exist.
	FailureAbsent
	// FailureRejected means the mechanism refused this specific write.
	FailureRejected
	// FailureLocked means the store exists but is locked.
	FailureLocked
	// FailureInit means the store is installed but could not be initialised.
	FailureInit
	// FailureMissing means the store is not present on this system.
	FailureMissing
)

func (k FailureKind) String() string {
	switch k {
	case FailureAbsent:
		return "absent"
	case FailureRejected:
		return "rejected"
	case FailureLocked:
		return "locked"
	case FailureInit:
		return "init"
	case FailureMissing:
		return "missing"
	default:
		return "transport"
	}
}

// MechanismError is the only error type mechanisms return.
type MechanismError struct {
	Backend string
	Op      string
	Kind    FailureKind
	Err     error
}

func (e *MechanismError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Kind, e.Err)
}

func (e *MechanismError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLocked) see through to a locked mechanism.
func (e *MechanismError) Is(target error) bool {
	return target == ErrLocked && e.Kind == FailureLocked
}

// failureOf returns the classification of err. Errors that did not come from a
// mechanism are treated as transport failures.
func failureOf(err error) FailureKind {
	var me *MechanismError
	if errors.As(err, &me) {
		return me.Kind
	}
	return FailureTransport
}

func mechErr(backend, op string, kind FailureKind, err error) error {
	return &MechanismError{Backend: backend, Op: op, Kind: kind, Err: err}
}
