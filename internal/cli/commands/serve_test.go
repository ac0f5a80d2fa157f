package commands

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/leapstack-labs/asksql/internal/cli/config"
	clitest "github.com/leapstack-labs/asksql/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_OpensBrowserAndServesPage(t *testing.T) {
	env := setupEnv(t, "")

	opened := make(chan string, 1)
	orig := openURL
	openURL = func(u string) error {
		opened <- u
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	ctx, cancel := context.WithCancel(env.ctx)
	port := freePort(t)
	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, _, err = clitest.ExecuteCommand(ctx, NewServeCommand(), "--port", strconv.Itoa(port))
		done <- err
	}()

	var url string
	select {
	case url = <-opened:
	case <-time.After(3 * time.Second):
		cancel()
		t.Fatal("browser was not opened")
	}
	assert.Equal(t, "http://localhost:"+strconv.Itoa(port), url)

	resp, err := http.Get(url + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "AskSQL")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Contains(t, out, "Serving AskSQL on "+url)
}

func TestServe_NoBrowser(t *testing.T) {
	env := setupEnv(t, "")

	orig := openURL
	openURL = func(string) error {
		t.Error("browser should not be opened")
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	ctx, cancel := context.WithTimeout(env.ctx, 300*time.Millisecond)
	defer cancel()

	_, _, err := clitest.ExecuteCommand(ctx, NewServeCommand(), "--port", strconv.Itoa(freePort(t)), "--no-browser")
	require.NoError(t, err)
}

func TestConfigCommand_HidesSessionSecret(t *testing.T) {
	env := setupEnv(t, "")
	t.Setenv("ASKSQL_SESSION_SECRET", "do-not-print")
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	out, _, err := env.run(NewConfigCommand())
	require.NoError(t, err)
	assert.NotContains(t, out, "do-not-print")
}

func TestResolveSessionSecret(t *testing.T) {
	env := setupEnv(t, "")
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(env.ctx)

	first, err := resolveSessionSecret(env.ctx, cfg, logger)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := resolveSessionSecret(env.ctx, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, first, second, "the generated secret is kept in the state database")

	configured := *cfg
	configured.SessionSecret = "from-env"
	got, err := resolveSessionSecret(env.ctx, &configured, logger)
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}
