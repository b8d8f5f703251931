package main

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tracertea/photostamp/internal/config"
	"github.com/tracertea/photostamp/internal/exiftool"
	"github.com/tracertea/photostamp/internal/logging"
	"github.com/tracertea/photostamp/internal/report"
	"github.com/tracertea/photostamp/internal/runlock"
	"github.com/tracertea/photostamp/internal/stamp"
	"github.com/tracertea/photostamp/internal/ui"
)

type processOptions struct {
	configFile   string
	recursive    bool
	dryRun       bool
	extensions   string
	verbose      bool
	verify       bool
	exifTool     string
	logLevel     string
	logFormat    string
	logFile      string
	report       string
	reportFormat string
	reportGzip   bool
	reportS3     string
	s3Region     string
	noLock       bool
}

func (o *processOptions) bind(flags *pflag.FlagSet) {
	flags.BoolVarP(&o.recursive, "recursive", "r", false, "Process subdirectories recursively")
	flags.BoolVarP(&o.dryRun, "dry-run", "d", false, "Show what would be done without modifying files")
	flags.StringVarP(&o.extensions, "extensions", "e", config.DefaultExtensions, "Comma-separated list of file extensions to process")

	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output (debug logging and a detailed summary)")
	flags.BoolVar(&o.verify, "verify", false, "Read the date back after writing and fail on mismatch")
	flags.StringVar(&o.exifTool, "exiftool", "exiftool", "Path to the exiftool binary")

	flags.StringVar(&o.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logFormat, "log-format", "text", "Log format (text, json)")
	flags.StringVar(&o.logFile, "log-file", "", "Also append logs to this file")

	flags.StringVar(&o.report, "report", "", "Write a per-file report to this path")
	flags.StringVar(&o.reportFormat, "report-format", "json", "Report format (json, jsonl, csv)")
	flags.BoolVar(&o.reportGzip, "report-gzip", false, "Gzip the report once the run is finished")
	flags.StringVar(&o.reportS3, "report-s3", "", "Upload the finished report to s3://bucket/key")
	flags.StringVar(&o.s3Region, "s3-region", "us-east-1", "AWS region for the report upload")

	flags.BoolVar(&o.noLock, "no-lock", false, "Do not take the per-directory run lock")
}

// mergeFlags overrides cfg with the flags set explicitly on the command line.
func mergeFlags(flags *pflag.FlagSet, cfg *config.Config, o *processOptions) {
	if flags.Changed("recursive") {
		cfg.Recursive = o.recursive
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
	if flags.Changed("extensions") {
		cfg.Extensions = o.extensions
	}
	if flags.Changed("verify") {
		cfg.Verify = o.verify
	}
	if flags.Changed("exiftool") {
		cfg.ExifToolPath = o.exifTool
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("report") {
		cfg.ReportPath = o.report
	}
	if flags.Changed("report-format") {
		cfg.ReportFormat = o.reportFormat
	}
	if flags.Changed("report-gzip") {
		cfg.ReportGzip = o.reportGzip
	}
	if flags.Changed("report-s3") {
		cfg.ReportS3 = o.reportS3
	}
	if flags.Changed("s3-region") {
		cfg.S3Region = o.s3Region
	}
	if flags.Changed("no-lock") {
		cfg.NoLock = o.noLock
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
}

func runProcess(cmd *cobra.Command, dir string, o *processOptions) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	mergeFlags(cmd.Flags(), cfg, o)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, logFile := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		LogFile: cfg.LogFile,
	})
	if logFile != nil {
		defer logFile.Close()
	}

	errs := stamp.NewErrorHandler(logger)
	if err := validateDirectory(dir); err != nil {
		argErr := stamp.NewProcessingError(stamp.ErrorTypeArgument, dir, "", err)
		errs.HandleError(argErr)
		return argErr
	}

	opts := stamp.ProcessOptions{
		Recursive:  cfg.Recursive,
		DryRun:     cfg.DryRun,
		Extensions: config.ParseExtensions(cfg.Extensions),
		Verify:     cfg.Verify,
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	out := cmd.OutOrStdout()
	display := ui.NewDisplay(out, isTerminal(out), o.verbose)
	display.Banner(dir, opts)

	if !opts.DryRun {
		if !cfg.NoLock {
			lock, err := runlock.Acquire(dir, "", logger)
			if err != nil {
				return err
			}
			defer lock.Close()
		}
		if _, err := exec.LookPath(cfg.ExifToolPath); err != nil {
			return fmt.Errorf("exiftool is required for live runs (looked for %q): %w", cfg.ExifToolPath, err)
		}
	}

	session := exiftool.New(cfg.ExifToolPath, logger)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("exiftool did not shut down cleanly.", "error", err)
		}
	}()

	writer := stamp.NewMetadataWriter(session, stamp.NewFileManager(logger), stamp.NewExifVerifier(), logger)
	processor := stamp.NewProcessor(stamp.NewFileDiscovery(logger, errs), writer, errs, display, logger)

	var reportWriter report.Writer
	if cfg.ReportPath != "" {
		reportWriter, err = report.New(cfg.ReportPath, cfg.ReportFormat)
		if err != nil {
			return err
		}
		processor.SetResultSink(reportWriter)
	}

	ctx := cmd.Context()
	summary := processor.ProcessDirectory(ctx, dir, opts)
	display.Summary(summary)

	if reportWriter != nil {
		finishReport(cmd, reportWriter, cfg, logger)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if !summary.OK() {
		return errFilesFailed
	}
	return nil
}

// finishReport closes the report and uploads it when configured. Report
// problems are logged; they do not change the outcome of the run.
func finishReport(cmd *cobra.Command, w report.Writer, cfg *config.Config, logger *slog.Logger) {
	if err := w.Close(); err != nil {
		logger.Error("Failed to write report.", "path", cfg.ReportPath, "error", err)
		return
	}
	path := cfg.ReportPath
	if cfg.ReportGzip {
		compressed, err := report.Compress(path, logger)
		if err != nil {
			logger.Error("Failed to compress report.", "path", path, "error", err)
		} else {
			path = compressed
		}
	}
	logger.Info("Report written.", "path", path, "format", cfg.ReportFormat)

	if cfg.ReportS3 == "" {
		return
	}

	bucket, key, err := config.ParseS3URL(cfg.ReportS3)
	if err != nil {
		logger.Error("Invalid report destination.", "error", err)
		return
	}

	client, err := report.NewS3Client(cmd.Context(), cfg.S3Region)
	if err != nil {
		logger.Error("Failed to create S3 client.", "error", err)
		return
	}

	if err := report.Upload(cmd.Context(), client, path, bucket, key); err != nil {
		logger.Error("Failed to upload report.", "error", err)
		return
	}
	logger.Info("Report uploaded.", "destination", cfg.ReportS3)
}
