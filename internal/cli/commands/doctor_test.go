package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, ok bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return ok }
	t.Cleanup(func() { isTerminal = orig })
}

func TestDoctor_Healthy(t *testing.T) {
	env := setupEnv(t, "")
	stubTerminal(t, true)

	out, _, err := env.run(NewDoctorCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "AskSQL Health Report")
	assert.Contains(t, out, "Configuration")
	assert.Contains(t, out, "✓ Backend reachable: 0 history entries for this session")
	assert.Contains(t, out, "7 passed, 0 warnings, 0 errors")
	assert.NotContains(t, out, "Recommendations")
	assert.Equal(t, []string{env.token(t)}, env.backend.LogTokens())
}

func TestDoctor_BackendDown(t *testing.T) {
	env := setupEnv(t, "")
	stubTerminal(t, false)
	env.backend.Close()

	out, _, err := env.run(NewDoctorCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 check(s) failed")
	assert.Contains(t, out, "✗ Backend reachable")
	assert.Contains(t, out, "! Interactive terminal")
	assert.Contains(t, out, "Start the backend")
	assert.Contains(t, out, `Use "asksql shell"`)
}

func TestDoctor_JSON(t *testing.T) {
	env := setupEnv(t, "json")
	stubTerminal(t, true)

	out, _, err := env.run(NewDoctorCommand())
	require.NoError(t, err)

	var report DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Checks, 7)
	assert.Equal(t, 7, report.Passed)
	assert.Empty(t, report.Recommendations)
	assert.Equal(t, "CF01", report.Checks[0].ID)
	assert.Empty(t, config.GetConfigFileUsed())
}
