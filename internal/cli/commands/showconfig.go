package commands

import (
	"fmt"

	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file, .env,
ASKSQL_* environment variables and flags.`,
		Example: `  # Show configuration
  asksql config

  # Check which backend a flag would use
  asksql config --api-url http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd)
		},
	}

	return cmd
}

func runConfig(cmd *cobra.Command) error {
	cfg := getConfig()
	out := cmd.OutOrStdout()

	if jsonOutput(cfg) {
		return writeJSON(out, cfg)
	}

	if file := config.GetConfigFileUsed(); file != "" {
		_, _ = fmt.Fprintf(out, "# config file: %s\n", file)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = out.Write(data)
	return err
}
