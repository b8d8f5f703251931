package stamp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Processor drives a run: scan, then parse and write each file in order.
type Processor struct {
	discovery *FileDiscovery
	writer    *MetadataWriter
	errors    *ErrorHandler
	progress  Progress
	sink      ResultSink
	timings   *Timings
	logger    *slog.Logger
}

// NewProcessor wires the run components together. progress must not be nil.
func NewProcessor(discovery *FileDiscovery, writer *MetadataWriter, errors *ErrorHandler, progress Progress, logger *slog.Logger) *Processor {
	return &Processor{
		discovery: discovery,
		writer:    writer,
		errors:    errors,
		progress:  progress,
		timings:   NewTimings(),
		logger:    logger.With("component", "processor"),
	}
}

// SetResultSink makes the processor forward every result to sink.
func (p *Processor) SetResultSink(sink ResultSink) {
	p.sink = sink
}

// ProcessFile parses the timestamp from path's filename and applies it.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts ProcessOptions) ProcessResult {
	start := time.Now()
	name := filepath.Base(path)

	ts, err := ParseFilename(name)
	if err != nil {
		msg := fmt.Sprintf("Could not extract timestamp from filename: %s", name)
		result := ProcessResult{
			Path:      path,
			Name:      name,
			Message:   msg,
			ErrorType: ErrorTypeParse,
			Err:       NewProcessingError(ErrorTypeParse, path, msg, err),
		}
		result.Duration = time.Since(start)
		return result
	}

	result := p.writer.Write(ctx, path, ts, WriteOptions{DryRun: opts.DryRun, Verify: opts.Verify})
	result.Duration = time.Since(start)
	return result
}

// ProcessDirectory processes every matching file under dir sequentially and
// returns the aggregate counts. A failing file never stops the run; a
// cancelled context stops it before the next file, never during one.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string, opts ProcessOptions) RunSummary {
	stats := ProcessingStats{StartTime: time.Now()}

	files := p.discovery.Scan(dir, opts.Recursive, opts.Extensions)
	total := len(files)
	p.progress.Found(total)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Run interrupted.", "processed", i, "remaining", total-i, "error", err)
			break
		}

		// Once started, a file runs to completion (fallback included) even if
		// the run is cancelled meanwhile.
		p.progress.Start(i+1, total, filepath.Base(path))
		result := p.ProcessFile(context.WithoutCancel(ctx), path, opts)
		p.progress.Outcome(result)

		stats.Add(result)
		p.timings.Record(result.Duration)

		if result.PrimaryErr != nil && result.Success {
			p.logger.Warn("In-place write failed, fallback succeeded.", "type", ErrorTypeWrite.String(), "path", path, "error", result.PrimaryErr)
		}
		if !result.Success {
			if pe, ok := result.Err.(*ProcessingError); ok {
				p.errors.HandleError(pe)
			} else {
				p.errors.HandleError(NewProcessingError(ErrorTypeUnknown, path, result.Message, result.Err))
			}
		}

		if p.sink != nil {
			if err := p.sink.WriteResult(result); err != nil {
				p.logger.Error("Failed to record result.", "path", path, "error", err)
			}
		}
	}

	stats.UpdateDuration()
	p.logger.Debug("Run complete.", "stats", stats.String())

	return RunSummary{
		Stats:   stats,
		Errors:  p.errors.GetErrorSummary(),
		Timings: p.timings.Summary(),
	}
}
