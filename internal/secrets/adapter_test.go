package secrets

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterRoundTrip(t *testing.T) {
	values := []struct {
		name  string
		value any
	}{
		{name: "object", value: map[string]any{"token": "abc123", "expires": float64(1700000000)}},
		{name: "array", value: []any{"a", float64(1), true, nil}},
		{name: "string", value: "hunter2"},
		{name: "string with newlines", value: "line1\nline2\n"},
		{name: "number", value: 3.25},
		{name: "bool", value: false},
		{name: "null", value: nil},
		{name: "nested", value: map[string]any{"a": map[string]any{"b": []any{"c"}}}},
	}

	for _, tt := range values {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(newMem("mem"), nil)
			require.NoError(t, a.Set("k", tt.value))

			got, err := a.Get("k")
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestAdapterSessionTokenScenario(t *testing.T) {
	mech := newMem("mem")
	a := NewAdapter(mech, nil)

	require.NoError(t, a.Set("session-token", map[string]any{"token": "abc123", "expires": 1700000000}))

	got, err := a.Get("session-token")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": "abc123", "expires": float64(1700000000)}, got)

	// Stored under the fixed namespace as JSON text.
	raw := mech.data[ServiceName]["session-token"]
	assert.JSONEq(t, `{"token":"abc123","expires":1700000000}`, raw)
}

func TestAdapterGetInto(t *testing.T) {
	type session struct {
		Token   string `json:"token"`
		Expires int64  `json:"expires"`
	}

	a := NewAdapter(newMem("mem"), nil)
	require.NoError(t, a.Set("s", session{Token: "abc", Expires: 42}))

	var got session
	require.NoError(t, a.GetInto("s", &got))
	assert.Equal(t, session{Token: "abc", Expires: 42}, got)
}

func TestAdapterGetIntoWrongShapeKeepsEntry(t *testing.T) {
	mech := newMem("mem")
	a := NewAdapter(mech, nil)
	require.NoError(t, a.Set("s", []string{"not", "an", "object"}))

	var got struct{ Token string }
	err := a.GetInto("s", &got)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.True(t, mech.has(ServiceName, "s"))
}

func TestAdapterGetMissing(t *testing.T) {
	a := NewAdapter(newMem("mem"), nil)

	_, err := a.Get("never-set")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdapterGetAfterDelete(t *testing.T) {
	a := NewAdapter(newMem("mem"), nil)
	require.NoError(t, a.Set("k", "v"))
	require.NoError(t, a.Delete("k"))

	_, err := a.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdapterDeleteMissing(t *testing.T) {
	a := NewAdapter(newMem("mem"), nil)

	err := a.Delete("nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.Set("once", 1))
	require.NoError(t, a.Delete("once"))
	assert.ErrorIs(t, a.Delete("once"), ErrNotFound)
}

func TestAdapterSetOverwrites(t *testing.T) {
	a := NewAdapter(newMem("mem"), nil)
	require.NoError(t, a.Set("k", "first"))
	require.NoError(t, a.Set("k", "second"))

	got, err := a.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestAdapterCorruptedEntryIsPurged(t *testing.T) {
	mech := newMem("mem")
	mech.put(ServiceName, "broken", "not-json{{")
	a := NewAdapter(mech, nil)

	_, err := a.Get("broken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mech.has(ServiceName, "broken"))
	assert.Equal(t, 1, mech.deletes)

	_, err = a.Get("broken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, mech.deletes, "second read must not purge again")
}

func TestAdapterCorruptedEntryPurgeFailureIsSwallowed(t *testing.T) {
	mech := newMem("mem")
	mech.put(ServiceName, "broken", "{")
	mech.deleteErr = mechErr("mem", "delete", FailureTransport, errDBus)
	a := NewAdapter(mech, nil)

	_, err := a.Get("broken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestAdapterOperationalFailures(t *testing.T) {
	failures := []struct {
		name string
		err  error
	}{
		{name: "transport", err: mechErr("mem", "op", FailureTransport, errDBus)},
		{name: "locked", err: mechErr("mem", "op", FailureLocked, errDBus)},
		{name: "missing", err: mechErr("mem", "op", FailureMissing, errDBus)},
		{name: "init", err: mechErr("mem", "op", FailureInit, errDBus)},
		{name: "unclassified", err: errDBus},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			mech := newMem("mem")
			mech.put(ServiceName, "k", `"v"`)
			mech.getErr, mech.setErr, mech.deleteErr = tt.err, tt.err, tt.err
			a := NewAdapter(mech, nil)

			_, err := a.Get("k")
			assert.ErrorIs(t, err, ErrBackendUnavailable)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, err, errDBus)

			err = a.Set("k", "v")
			assert.ErrorIs(t, err, ErrBackendUnavailable)

			err = a.Delete("k")
			assert.ErrorIs(t, err, ErrBackendUnavailable)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestAdapterLockedStaysDistinguishable(t *testing.T) {
	mech := newMem("mem")
	mech.getErr = mechErr("mem", "get", FailureLocked, errDBus)
	a := NewAdapter(mech, nil)

	_, err := a.Get("k")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAdapterSetRejected(t *testing.T) {
	mech := newMem("mem")
	mech.setErr = mechErr("mem", "set", FailureRejected, errors.New("data too big"))
	a := NewAdapter(mech, nil)

	err := a.Set("k", "v")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestAdapterSetUnencodable(t *testing.T) {
	mech := newMem("mem")
	a := NewAdapter(mech, nil)

	for name, v := range map[string]any{
		"channel": make(chan int),
		"nan":     math.NaN(),
		"func":    func() {},
	} {
		t.Run(name, func(t *testing.T) {
			err := a.Set("k", v)
			assert.ErrorIs(t, err, ErrInvalidValue)

			var unsupported *json.UnsupportedTypeError
			var unsupportedValue *json.UnsupportedValueError
			assert.True(t, errors.As(err, &unsupported) || errors.As(err, &unsupportedValue))
		})
	}
	assert.False(t, mech.has(ServiceName, "k"))
}

func TestAdapterEmptyKey(t *testing.T) {
	mech := newMem("mem")
	a := NewAdapter(mech, nil)

	_, err := a.Get("")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, a.Set("", 1), ErrInvalidKey)
	assert.ErrorIs(t, a.Delete(""), ErrInvalidKey)
	assert.Zero(t, mech.gets)
}

func TestAdapterBackend(t *testing.T) {
	a := NewAdapter(newMem("kwallet"), nil)
	assert.Equal(t, "kwallet", a.Backend())
}
