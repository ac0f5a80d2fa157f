// Package cli provides the command-line interface for AskSQL.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/asksql/internal/cli/commands"
	"github.com/leapstack-labs/asksql/internal/cli/config"
	applog "github.com/leapstack-labs/asksql/internal/log"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "asksql",
		Short: "AskSQL - database schemas from plain language",
		Long: `AskSQL turns a plain-language description into a database schema.

Run without arguments to start the interactive client, or use the
subcommands to generate schemas, browse your history and download the
generated SQLite files from scripts.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := applog.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := commands.NewUICommand()
			ui.SetContext(cmd.Context())
			ui.SetOut(cmd.OutOrStdout())
			ui.SetErr(cmd.ErrOrStderr())
			return ui.RunE(ui, args)
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./asksql.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (default: "+config.DefaultAPIURL+")")
	rootCmd.PersistentFlags().String("state", "", "Path to the preferences database")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the interactive client's log file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (text|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewDownloadCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewThemeCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for AskSQL.

To load completions:

Bash:
  $ source <(asksql completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ asksql completion bash > /etc/bash_completion.d/asksql
  # macOS:
  $ asksql completion bash > $(brew --prefix)/etc/bash_completion.d/asksql

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ asksql completion zsh > "${fpath[1]}/_asksql"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ asksql completion fish | source

  # To load completions for each session, execute once:
  $ asksql completion fish > ~/.config/fish/completions/asksql.fish

PowerShell:
  PS> asksql completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> asksql completion powershell > asksql.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
