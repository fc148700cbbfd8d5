package secrets

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Adapter exposes a Mechanism as a JSON key-value store scoped to ServiceName.
// It holds no state besides the mechanism, so it is as safe for concurrent use
// as the mechanism itself. Sequences of calls are not atomic.
type Adapter struct {
	mech    Mechanism
	service string
	logger  *slog.Logger
}

// NewAdapter binds mech to the application namespace.
func NewAdapter(mech Mechanism, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		mech:    mech,
		service: ServiceName,
		logger:  logger.With("backend", mech.Name()),
	}
}

// Backend returns the name of the bound mechanism.
func (a *Adapter) Backend() string {
	return a.mech.Name()
}

// Get returns the decoded value stored under key.
// Objects decode to map[string]any and numbers to float64.
func (a *Adapter) Get(key string) (any, error) {
	var v any
	if err := a.GetInto(key, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetInto decodes the value stored under key into v.
//
// A stored payload that is not valid JSON is deleted and reported as
// ErrNotFound. A valid payload that does not fit v is ErrInvalidValue and is
// left in place.
func (a *Adapter) GetInto(key string, v any) error {
	raw, err := a.read(key)
	if err != nil {
		return err
	}

	if !json.Valid([]byte(raw)) {
		a.purge(key)
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: decode %q: %w", ErrInvalidValue, key, err)
	}
	return nil
}

func (a *Adapter) read(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	raw, err := a.mech.Get(a.service, key)
	if err != nil {
		if failureOf(err) == FailureAbsent {
			return "", fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: get %q: %w", ErrBackendUnavailable, key, err)
	}
	return raw, nil
}

// purge removes a corrupted entry. Failures are logged and dropped so the
// caller still sees ErrNotFound.
func (a *Adapter) purge(key string) {
	a.logger.Warn("stored secret is not valid JSON, deleting", "key", key)
	if err := a.mech.Delete(a.service, key); err != nil && failureOf(err) != FailureAbsent {
		a.logger.Error("failed to delete corrupted secret", "key", key, "error", err)
	}
}

// Set encodes value as JSON and stores it under key, replacing any previous value.
func (a *Adapter) Set(key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrInvalidValue, key, err)
	}

	if err := a.mech.Set(a.service, key, string(data)); err != nil {
		if failureOf(err) == FailureRejected {
			return fmt.Errorf("%w: set %q: %w", ErrInvalidValue, key, err)
		}
		return fmt.Errorf("%w: set %q: %w", ErrBackendUnavailable, key, err)
	}
	return nil
}

// Delete removes key. Deleting a key with no live entry returns ErrNotFound.
func (a *Adapter) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	if err := a.mech.Delete(a.service, key); err != nil {
		if failureOf(err) == FailureAbsent {
			return fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return fmt.Errorf("%w: delete %q: %w", ErrBackendUnavailable, key, err)
	}
	return nil
}
