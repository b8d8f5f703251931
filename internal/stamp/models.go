package stamp

import (
	"fmt"
	"time"
)

// Method records which write strategy produced a result.
type Method int

const (
	MethodNone Method = iota
	MethodPrimary
	MethodFallback
	MethodDryRun
)

// String returns the string representation of Method
func (m Method) String() string {
	switch m {
	case MethodPrimary:
		return "primary"
	case MethodFallback:
		return "fallback"
	case MethodDryRun:
		return "dry-run"
	default:
		return "none"
	}
}

// ProcessOptions is built once from the command line and is read-only for
// the duration of a run.
type ProcessOptions struct {
	Recursive  bool
	DryRun     bool
	Extensions []string // lowercase, no leading dot
	Verify     bool
}

// Validate validates the options
func (o ProcessOptions) Validate() error {
	if len(o.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	for _, ext := range o.Extensions {
		if ext == "" || ext[0] == '.' {
			return fmt.Errorf("invalid extension %q: must be non-empty without a leading dot", ext)
		}
	}
	return nil
}

func (o ProcessOptions) extensionSet() map[string]bool {
	set := make(map[string]bool, len(o.Extensions))
	for _, ext := range o.Extensions {
		set[ext] = true
	}
	return set
}

// ProcessResult is the outcome of processing a single file.
type ProcessResult struct {
	Path      string
	Name      string
	Success   bool
	Message   string
	Method    Method
	Timestamp time.Time // local instant of the filename timestamp, zero on parse failure
	Value     string    // metadata value written (or that would be written)
	ErrorType ErrorType
	Err       error
	Duration  time.Duration

	// PrimaryErr is set when the in-place write failed and the fallback ran.
	PrimaryErr error
}

// ProcessingStats tracks run statistics
type ProcessingStats struct {
	Total     int
	Succeeded int
	Failed    int
	Fallbacks int
	StartTime time.Time
	Duration  time.Duration
}

// Add counts one result
func (ps *ProcessingStats) Add(r ProcessResult) {
	ps.Total++
	if r.Success {
		ps.Succeeded++
	} else {
		ps.Failed++
	}
	if r.Method == MethodFallback && r.Success {
		ps.Fallbacks++
	}
}

// UpdateDuration updates the processing duration
func (ps *ProcessingStats) UpdateDuration() {
	ps.Duration = time.Since(ps.StartTime)
}

// SuccessRate returns the success rate as a percentage
func (ps *ProcessingStats) SuccessRate() float64 {
	if ps.Total == 0 {
		return 0.0
	}
	return float64(ps.Succeeded) / float64(ps.Total) * 100.0
}

// String returns a string representation of the processing statistics
func (ps *ProcessingStats) String() string {
	return fmt.Sprintf("Processed: %d, Succeeded: %d (%.2f%%), Failed: %d, Fallbacks: %d, Duration: %v",
		ps.Total, ps.Succeeded, ps.SuccessRate(), ps.Failed, ps.Fallbacks, ps.Duration)
}

// RunSummary is what ProcessDirectory hands back to the caller.
type RunSummary struct {
	Stats   ProcessingStats
	Errors  ErrorSummary
	Timings TimingSummary
}

// OK reports whether every processed file succeeded. A run that found no
// files is OK.
func (rs RunSummary) OK() bool {
	return rs.Stats.Failed == 0
}
