package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/spf13/cobra"
)

// doctorTimeout bounds the backend probe.
const doctorTimeout = 5 * time.Second

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the client setup",
		Long: `Check that AskSQL is ready to use.

The doctor command reports on:
- Configuration (config file and backend URL)
- Storage (preferences database, session token and log file)
- Backend (whether the history endpoint answers for your token)
- Terminal (whether the interactive client can start)

It exits with an error when a check fails; warnings do not fail.`,
		Example: `  # Run all checks
  asksql doctor

  # Machine-readable report
  asksql doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks          []HealthCheck `json:"checks"`
	Passed          int           `json:"passed"`
	Warnings        int           `json:"warnings"`
	Errors          int           `json:"errors"`
	Recommendations []string      `json:"recommendations"`
}

// HealthCheck is the result of one check.
type HealthCheck struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	checks := []HealthCheck{
		checkConfigFile(),
		{ID: "CF02", Name: "Backend URL", Group: "configuration", Status: statusPass, Detail: cmdCtx.Cfg.APIURL},
		checkStore(cmdCtx),
		checkToken(cmdCtx),
		checkLogFile(cmdCtx.Cfg.LogFile),
		checkBackend(cmd.Context(), cmdCtx),
		checkTerminal(),
	}
	out := buildDoctorOutput(checks)

	if jsonOutput(cmdCtx.Cfg) {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		renderDoctorText(cmd.OutOrStdout(), out)
	}

	if out.Errors > 0 {
		return fmt.Errorf("%d check(s) failed", out.Errors)
	}
	return nil
}

func checkConfigFile() HealthCheck {
	c := HealthCheck{ID: "CF01", Name: "Config file", Group: "configuration", Status: statusPass}
	if file := config.GetConfigFileUsed(); file != "" {
		c.Detail = "using " + file
	} else {
		c.Detail = "none found, using defaults and environment"
	}
	return c
}

func checkStore(cmdCtx *CommandContext) HealthCheck {
	c := HealthCheck{ID: "ST01", Name: "Preferences store", Group: "storage", Status: statusPass, Detail: cmdCtx.Cfg.StatePath}
	if cmdCtx.Store == nil {
		c.Status = statusWarn
		c.Detail = "cannot open " + cmdCtx.Cfg.StatePath + "; theme and token are kept in memory"
	}
	return c
}

func checkToken(cmdCtx *CommandContext) HealthCheck {
	c := HealthCheck{ID: "ST02", Name: "Session token", Group: "storage", Status: statusPass, Detail: "persisted"}
	if !cmdCtx.Identity.Persisted() {
		c.Status = statusWarn
		c.Detail = "not persisted; history is lost on the next run"
	}
	return c
}

func checkLogFile(path string) HealthCheck {
	c := HealthCheck{ID: "ST03", Name: "Log file", Group: "storage", Status: statusPass, Detail: path}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		c.Status = statusWarn
		c.Detail = err.Error()
		return c
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		c.Status = statusWarn
		c.Detail = err.Error()
		return c
	}
	_ = f.Close()
	return c
}

func checkBackend(ctx context.Context, cmdCtx *CommandContext) HealthCheck {
	c := HealthCheck{ID: "BE01", Name: "Backend reachable", Group: "backend", Status: statusPass}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	records, err := cmdCtx.Client.FetchLogs(ctx, cmdCtx.Identity.Token())
	var transportErr *api.TransportError
	switch {
	case err == nil:
		c.Detail = fmt.Sprintf("%d history entries for this session", len(records))
	case errors.As(err, &transportErr):
		c.Status = statusError
		c.Detail = err.Error()
	default:
		c.Status = statusWarn
		c.Detail = "backend answered with an error: " + err.Error()
	}
	return c
}

func checkTerminal() HealthCheck {
	c := HealthCheck{ID: "TM01", Name: "Interactive terminal", Group: "terminal", Status: statusPass, Detail: "available"}
	if !isTerminal() {
		c.Status = statusWarn
		c.Detail = "stdin/stdout is not a terminal"
	}
	return c
}

func buildDoctorOutput(checks []HealthCheck) *DoctorOutput {
	out := &DoctorOutput{Checks: checks, Recommendations: []string{}}
	seen := make(map[string]bool)
	for _, check := range checks {
		switch check.Status {
		case statusPass:
			out.Passed++
			continue
		case statusWarn:
			out.Warnings++
		case statusError:
			out.Errors++
		}
		if rec := getRecommendation(check.ID); rec != "" && !seen[rec] {
			out.Recommendations = append(out.Recommendations, rec)
			seen[rec] = true
		}
	}
	return out
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(id string) string {
	switch id {
	case "ST01", "ST02":
		return "Point --state (or ASKSQL_STATE_PATH) at a writable location"
	case "ST03":
		return "Point --log-file (or ASKSQL_LOG_FILE) at a writable location"
	case "BE01":
		return "Start the backend or set --api-url (ASKSQL_API_URL) to where it runs"
	case "TM01":
		return `Use "asksql shell" or "asksql serve" when no terminal is available`
	default:
		return ""
	}
}

func renderDoctorText(w io.Writer, out *DoctorOutput) {
	_, _ = fmt.Fprintln(w, "AskSQL Health Report")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 40))

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, titleCaser.String(currentGroup))
		}

		icon := "✓"
		switch check.Status {
		case statusWarn:
			icon = "!"
		case statusError:
			icon = "✗"
		}
		_, _ = fmt.Fprintf(w, "   %s %s: %s\n", icon, check.Name, check.Detail)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d passed, %d warnings, %d errors\n", out.Passed, out.Warnings, out.Errors)

	if len(out.Recommendations) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Recommendations")
		for i, rec := range out.Recommendations {
			_, _ = fmt.Fprintf(w, "   %d. %s\n", i+1, rec)
		}
	}
}
