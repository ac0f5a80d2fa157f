package commands

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/leapstack-labs/asksql/internal/dbfile"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/schematree"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// DownloadOptions holds options for the download command.
type DownloadOptions struct {
	Out     string
	Open    bool
	Inspect bool
}

// openURL is replaced in tests.
var openURL = browser.OpenURL

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	opts := &DownloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <db-file-path>",
		Short: "Download a generated SQLite database",
		Long: `Download the SQLite file the backend generated for a prompt.

The path is the db_file_path reported by "asksql generate".`,
		Example: `  # Save to ./generated_schema.db
  asksql download /srv/asksql/generated/abc.db

  # Save elsewhere and print its tables
  asksql download /srv/asksql/generated/abc.db --out blog.db --inspect

  # Open the download link in the browser instead
  asksql download /srv/asksql/generated/abc.db --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", dbfile.DefaultFileName, "Destination file")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the download link in the browser")
	cmd.Flags().BoolVar(&opts.Inspect, "inspect", false, "Print the tables of the downloaded file")

	return cmd
}

func runDownload(cmd *cobra.Command, remotePath string, opts *DownloadOptions) error {
	cfg := getConfig()
	logger := getLogger(cmd)
	client := newClient(cfg, logger)
	out := cmd.OutOrStdout()

	if opts.Open {
		link := client.DownloadURL(remotePath)
		if err := openURL(link); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Opened %s\n", link)
		return nil
	}

	n, err := dbfile.Download(cmd.Context(), client, remotePath, opts.Out)
	if err != nil {
		return err
	}
	logger.Info("database downloaded", slog.String("path", opts.Out), slog.Int64("bytes", n))
	_, _ = fmt.Fprintf(out, "Saved %s to %s\n", humanize.Bytes(uint64(n)), opts.Out)

	if !opts.Inspect {
		return nil
	}
	db, err := dbfile.Inspect(cmd.Context(), opts.Out)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out)
	return schematree.RenderPlain(out, schema.Result{db})
}
