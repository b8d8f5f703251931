package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracertea/photostamp/internal/config"
	"github.com/tracertea/photostamp/internal/logging"
	"github.com/tracertea/photostamp/internal/stamp"
)

func newInfoCmd() *cobra.Command {
	var (
		infoDir       string
		infoRecursive bool
		infoExts      string
	)

	cmd := &cobra.Command{
		Use:   "info [file...]",
		Short: "Show the filename timestamp and current dates of images",
		Long: `Display what photostamp would do with each file without changing anything:
the timestamp parsed from the filename, the date currently embedded in the
image (JPEG and TIFF only) and the file modification time.

Examples:
  photostamp info IMG_20201114205504.jpg
  photostamp info -d ~/Pictures/import -r`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			switch {
			case infoDir != "":
				if err := validateDirectory(infoDir); err != nil {
					return err
				}
				logger := logging.Discard()
				fd := stamp.NewFileDiscovery(logger, stamp.NewErrorHandler(logger))
				paths = fd.Scan(infoDir, infoRecursive, config.ParseExtensions(infoExts))
				if len(paths) == 0 {
					return fmt.Errorf("no image files found in directory: %s", infoDir)
				}
			case len(args) > 0:
				paths = args
			default:
				return fmt.Errorf("either provide file arguments or use --dir")
			}
			return runInfo(cmd, paths)
		},
	}

	cmd.Flags().StringVarP(&infoDir, "dir", "d", "", "Inspect the image files in this directory")
	cmd.Flags().BoolVarP(&infoRecursive, "recursive", "r", false, "Scan the directory recursively")
	cmd.Flags().StringVarP(&infoExts, "extensions", "e", config.DefaultExtensions, "Comma-separated list of file extensions")
	return cmd
}

func runInfo(cmd *cobra.Command, paths []string) error {
	out := cmd.OutOrStdout()
	verifier := stamp.NewExifVerifier()
	parsed := 0

	for i, path := range paths {
		fmt.Fprintf(out, "File %d/%d: %s\n", i+1, len(paths), path)

		stat, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(out, "  Error: %v\n\n", err)
			continue
		}

		if ts, err := stamp.ParseFilename(stat.Name()); err != nil {
			fmt.Fprintf(out, "  Filename timestamp: none (%v)\n", err)
		} else {
			fmt.Fprintf(out, "  Filename timestamp: %s\n", ts.Exif())
			parsed++
		}

		if current, err := verifier.ReadDate(path); err != nil {
			fmt.Fprintf(out, "  Embedded date:      unreadable\n")
		} else {
			fmt.Fprintf(out, "  Embedded date:      %s\n", stamp.FormatExif(current))
		}

		fmt.Fprintf(out, "  Modified:           %s\n", stamp.FormatExif(stat.ModTime()))
		fmt.Fprintf(out, "  File size:          %s\n\n", formatBytes(stat.Size()))
	}

	fmt.Fprintf(out, "%d of %d files have a filename timestamp\n", parsed, len(paths))
	return nil
}
