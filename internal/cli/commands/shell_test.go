package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shellHarness struct {
	env    *testEnv
	sh     *shellSession
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newShellHarness(t *testing.T) *shellHarness {
	t.Helper()
	env := setupEnv(t, "")

	cmdCtx, cleanup := newCommandContext(env.ctx, config.GetCurrentConfig(), config.GetLogger(env.ctx))
	t.Cleanup(cleanup)

	h := &shellHarness{env: env, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.sh = newShellSession(cmdCtx, h.out, h.errOut)
	return h
}

func (h *shellHarness) input(line string) bool {
	h.out.Reset()
	h.errOut.Reset()
	return h.sh.handle(context.Background(), line)
}

func TestShell_PromptLine(t *testing.T) {
	h := newShellHarness(t)

	assert.False(t, h.input("create a blog schema"))
	assert.Contains(t, h.out.String(), "blog (2 tables)")
	assert.Empty(t, h.errOut.String())

	prompts := h.env.backend.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "create a blog schema", prompts[0].Prompt)
	assert.Equal(t, h.sh.cmdCtx.Identity.Token(), prompts[0].Token)
}

func TestShell_BlankLinesAreIgnored(t *testing.T) {
	h := newShellHarness(t)

	assert.False(t, h.input("   "))
	assert.Empty(t, h.env.backend.Prompts())
	assert.Empty(t, h.out.String())
}

func TestShell_BackendError(t *testing.T) {
	h := newShellHarness(t)
	h.env.backend.Fail("quota exceeded")

	assert.False(t, h.input("anything"))
	assert.Equal(t, "Error: quota exceeded\n", h.errOut.String())
}

func TestShell_DotCommands(t *testing.T) {
	h := newShellHarness(t)

	h.input(".help")
	assert.Contains(t, h.out.String(), ".download")

	h.input(".token")
	assert.Contains(t, h.out.String(), h.sh.cmdCtx.Identity.Token())

	h.input(".theme dark")
	assert.Equal(t, "Theme: dark\n", h.out.String())
	assert.Equal(t, theme.Dark, h.sh.cmdCtx.Theme.Current())

	h.input(".theme purple")
	assert.Contains(t, h.errOut.String(), "Error:")

	h.input(".nope")
	assert.Contains(t, h.errOut.String(), "Unknown command: .nope")

	assert.True(t, h.input(".quit"))
	assert.True(t, h.input(".exit"))
}

func TestShell_History(t *testing.T) {
	h := newShellHarness(t)
	h.env.backend.SetLogs([]api.HistoryRecord{{ID: 1, Prompt: "an inventory system", CreatedAt: "2024-05-01 10:00:00"}})

	h.input(".history")
	assert.Contains(t, h.out.String(), "an inventory system")
	assert.Contains(t, h.out.String(), "(1 entries)")
}

func TestShell_DownloadLastResult(t *testing.T) {
	h := newShellHarness(t)
	h.env.backend.AddFile("/srv/generated/blog.db", createSQLiteFile(t))

	h.input(".download")
	assert.Contains(t, h.errOut.String(), "generate a schema first")

	h.input("create a blog schema")
	dest := filepath.Join(h.env.dir, "last.db")
	h.input(".download /srv/generated/blog.db " + dest)
	assert.Contains(t, h.out.String(), "Saved ")
	assert.FileExists(t, dest)

	h.input(".download")
	assert.Empty(t, h.errOut.String())
	assert.FileExists(t, filepath.Join(h.env.dir, "generated_schema.db"))
}
