package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileMechanism(t *testing.T, passphrase string) (*FileMechanism, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "credentials.enc")
	m, err := NewFileMechanism(path, passphrase)
	require.NoError(t, err)
	return m, path
}

func TestFileMechanismRequiresPassphrase(t *testing.T) {
	_, err := NewFileMechanism(filepath.Join(t.TempDir(), "c.enc"), "")
	assert.Equal(t, FailureInit, failureOf(err))
}

func TestFileMechanismCRUD(t *testing.T) {
	m, path := newTestFileMechanism(t, "correct horse")

	_, err := m.Get("svc", "k")
	assert.Equal(t, FailureAbsent, failureOf(err))

	require.NoError(t, m.Set("svc", "k", `"v1"`))
	require.NoError(t, m.Set("svc", "k", `"v2"`))
	require.NoError(t, m.Set("other", "k", `"x"`))

	got, err := m.Get("svc", "k")
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, got)

	require.NoError(t, m.Delete("svc", "k"))
	assert.Equal(t, FailureAbsent, failureOf(m.Delete("svc", "k")))

	got, err = m.Get("other", "k")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileMechanismEncryptsAtRest(t *testing.T) {
	m, path := newTestFileMechanism(t, "pw")
	require.NoError(t, m.Set("svc", "token", "plaintext-marker"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "plaintext-marker")
}

func TestFileMechanismWrongPassphraseIsLocked(t *testing.T) {
	m, path := newTestFileMechanism(t, "right")
	require.NoError(t, m.Set("svc", "k", "v"))

	other, err := NewFileMechanism(path, "wrong")
	require.NoError(t, err)

	_, err = other.Get("svc", "k")
	assert.Equal(t, FailureLocked, failureOf(err))
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, Probe(other, nil))
}

func TestFileMechanismProbeOnEmptyStore(t *testing.T) {
	m, _ := newTestFileMechanism(t, "pw")
	assert.True(t, Probe(m, nil))
}

func TestFileMechanismThroughAdapter(t *testing.T) {
	m, _ := newTestFileMechanism(t, "pw")
	a := NewAdapter(m, nil)

	require.NoError(t, a.Set("session-token", map[string]any{"token": "abc123"}))
	got, err := a.Get("session-token")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": "abc123"}, got)

	require.NoError(t, m.Set(ServiceName, "broken", "not-json{{"))
	_, err = a.Get("broken")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ServiceName, "broken")
	assert.Equal(t, FailureAbsent, failureOf(err))
}

func TestFileMechanismCorruptFile(t *testing.T) {
	m, path := newTestFileMechanism(t, "pw")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))

	_, err := m.Get("svc", "k")
	assert.Equal(t, FailureTransport, failureOf(err))
}
