package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tracertea/photostamp/internal/stamp"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

// errFilesFailed is returned when the run finished but at least one file
// could not be updated. The summary has already been printed.
var errFilesFailed = errors.New("one or more files could not be updated")

func newRootCmd() *cobra.Command {
	opts := &processOptions{}

	rootCmd := &cobra.Command{
		Use:   "photostamp [directory]",
		Short: "Set photo dates from the timestamp in their filenames",
		Long: `photostamp scans a directory for images whose filenames carry a capture
timestamp (YYYYMMDDhhmm or YYYYMMDDhhmmss) and writes that timestamp into the
embedded date metadata and the file modification time.

Metadata is written with exiftool, which must be installed for live runs.

A directory named like a subcommand (info, config, version) is taken as the
subcommand; pass it with a path prefix instead, for example ./info.

Examples:
  photostamp ~/Pictures/import --dry-run
  photostamp ~/Pictures/import -r -e jpg,heic
  photostamp ~/Pictures/import --report run.jsonl --report-format jsonl
  photostamp info IMG_20201114205504.jpg
  photostamp version`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0], opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Configuration file path (TOML)")
	opts.bind(rootCmd.Flags())

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errFilesFailed) && !alreadyLogged(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// alreadyLogged reports whether err went through the error handler, which
// logs it to stderr itself.
func alreadyLogged(err error) bool {
	var pe *stamp.ProcessingError
	return errors.As(err, &pe) && pe.Type == stamp.ErrorTypeArgument
}
