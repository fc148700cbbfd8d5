package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	New(&buf, false).Info("shown", "backend", "kwallet")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "backend=kwallet")

	buf.Reset()
	New(&buf, true).Debug("probing")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
