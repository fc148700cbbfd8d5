package secrets

import "log/slog"

// Reserved namespace for liveness probes. Nothing is ever written here.
const (
	probeService = "keystash-selftest"
	probeKey     = "TestingThatBackendIsWorking"
)

// Probe reports whether mech answers a read in the current environment.
// An empty answer counts as working. Probe never returns an error; rejected
// backends are logged instead.
func Probe(mech Mechanism, logger *slog.Logger) (ok bool) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Some D-Bus bindings panic when the session bus disappears mid-call.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("keyring backend panicked during probe", "backend", mech.Name(), "panic", r)
			ok = false
		}
	}()

	_, err := mech.Get(probeService, probeKey)
	if err == nil {
		return true
	}

	switch kind := failureOf(err); kind {
	case FailureAbsent:
		return true
	case FailureInit, FailureLocked, FailureMissing:
		logger.Warn("keyring backend not usable", "backend", mech.Name(), "reason", kind.String(), "error", err)
	default:
		logger.Error("unexpected keyring backend error", "backend", mech.Name(), "error", err)
	}
	return false
}
