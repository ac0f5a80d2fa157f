package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer

	NewConsoleLogger(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewConsoleLogger(&buf, true).Debug("shown", "key", "value")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "asksql.log")

	logger, closer, err := NewFileLogger(path, false)
	require.NoError(t, err)
	logger.Info("prompt processed", "tables", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"prompt processed"`)
	assert.Contains(t, string(data), `"tables":3`)
}
