package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/keystash/internal/config"
	"github.com/semmy-space/keystash/internal/output"
)

// withConfigFile points the XDG config home at a temp dir holding content.
func withConfigFile(t *testing.T, content string) string {
	t.Helper()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	path := config.ConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func parse(t *testing.T, args ...string) (*kong.Context, error) {
	t.Helper()
	parser, err := kong.New(&CLI{}, kong.Name("keystash"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	return parser.Parse(args)
}

func TestConfigSetRepairsInvalidTimeout(t *testing.T) {
	path := withConfigFile(t, `{timeout: "ten"}`)

	ctx, err := parse(t, "config", "set", "timeout", "10s")
	require.NoError(t, err)
	require.NoError(t, ctx.Run())

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "10s", cfg.Timeout)
}

func TestSecretCommandRejectsInvalidTimeout(t *testing.T) {
	withConfigFile(t, `{timeout: "ten"}`)

	ctx, err := parse(t, "get", "token")
	require.NoError(t, err)

	err = ctx.Run()
	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, output.ExitConfigError, cliErr.ExitCode)
	assert.Contains(t, cliErr.Hint, "config set timeout")
}

func TestConfigSetRejectsUnknownBackend(t *testing.T) {
	withConfigFile(t, `{}`)

	ctx, err := parse(t, "config", "set", "backend", "pass")
	require.NoError(t, err)

	err = ctx.Run()
	var cliErr *output.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, output.ExitUsage, cliErr.ExitCode)
	assert.Contains(t, cliErr.Message, "kwallet")
}
