package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/tracertea/photostamp/internal/stamp"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
)

// Display renders run progress as plain lines on out. It implements
// stamp.Progress.
type Display struct {
	out     io.Writer
	color   bool
	verbose bool
}

// NewDisplay returns a Display writing to out. Colors are only used when
// color is true.
func NewDisplay(out io.Writer, color, verbose bool) *Display {
	return &Display{out: out, color: color, verbose: verbose}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (d *Display) paint(color, s string) string {
	if !d.color {
		return s
	}
	return color + s + colorReset
}

// Banner prints the run configuration before scanning starts.
func (d *Display) Banner(dir string, opts stamp.ProcessOptions) {
	mode := ""
	if opts.DryRun {
		mode = d.paint(colorYellow, "DRY RUN - ")
	}
	recursive := "No"
	if opts.Recursive {
		recursive = "Yes"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Running on: %s/%s\n", runtime.GOOS, runtime.GOARCH))
	sb.WriteString(fmt.Sprintf("%sProcessing images in %s\n", mode, dir))
	sb.WriteString(fmt.Sprintf("File extensions: %s\n", strings.Join(opts.Extensions, ", ")))
	sb.WriteString(fmt.Sprintf("Recursive mode: %s\n", recursive))
	if opts.Verify {
		sb.WriteString("Verification: Yes\n")
	}
	fmt.Fprint(d.out, sb.String())
}

// Found announces how many files the scan matched.
func (d *Display) Found(total int) {
	fmt.Fprintf(d.out, "Found %s image files to process\n", d.paint(colorBlue, fmt.Sprint(total)))
}

// Start prints the progress prefix for one file, without a newline; Outcome
// completes the line.
func (d *Display) Start(index, total int, name string) {
	fmt.Fprintf(d.out, "Processing [%d/%d] %s... ", index, total, name)
}

// Outcome prints the result message, red on failure and yellow when the
// fallback was needed.
func (d *Display) Outcome(result stamp.ProcessResult) {
	color := colorGreen
	switch {
	case !result.Success:
		color = colorRed
	case result.Method == stamp.MethodFallback:
		color = colorYellow
	}
	fmt.Fprintln(d.out, d.paint(color, result.Message))
}

// Summary prints the final counts. In verbose mode it adds the error
// breakdown and per-file latency.
func (d *Display) Summary(summary stamp.RunSummary) {
	stats := summary.Stats

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Summary: %s succeeded, %s failed\n",
		d.paint(colorGreen, fmt.Sprint(stats.Succeeded)),
		d.paint(colorRed, fmt.Sprint(stats.Failed)),
	))

	if d.verbose {
		if stats.Total > 0 {
			sb.WriteString(fmt.Sprintf("Success: %s %.2f%%\n", d.buildProgressBar(stats.SuccessRate()), stats.SuccessRate()))
		}
		if stats.Fallbacks > 0 {
			sb.WriteString(fmt.Sprintf("Fallback writes: %s\n", d.paint(colorYellow, fmt.Sprint(stats.Fallbacks))))
		}
		if summary.Errors.TotalErrors > 0 {
			sb.WriteString(fmt.Sprintf("Errors: %s\n", summary.Errors.String()))
		}
		if t := summary.Timings; t.Count > 0 {
			sb.WriteString(fmt.Sprintf("Latency (avg/p50/p99/max): %s\n", d.paint(colorPurple, fmt.Sprintf("%s/%s/%s/%s",
				round(t.Mean), round(t.P50), round(t.P99), round(t.Max)))))
		}
		sb.WriteString(fmt.Sprintf("Elapsed: %s\n", round(stats.Duration)))
	}

	fmt.Fprint(d.out, sb.String())
}

func (d *Display) buildProgressBar(percent float64) string {
	barWidth := 40
	filledWidth := int((percent / 100) * float64(barWidth))
	if filledWidth > barWidth {
		filledWidth = barWidth
	}
	if filledWidth < 0 {
		filledWidth = 0
	}
	return fmt.Sprintf("[%s%s]", d.paint(colorGreen, strings.Repeat("=", filledWidth)), strings.Repeat(" ", barWidth-filledWidth))
}

func round(v time.Duration) time.Duration {
	if v < time.Second {
		return v.Round(time.Microsecond)
	}
	return v.Round(time.Millisecond)
}
