package stamp

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrorTypeNone ErrorType = iota
	ErrorTypeParse
	ErrorTypeWrite
	ErrorTypeFallback
	ErrorTypeFileTime
	ErrorTypeVerify
	ErrorTypeScan
	ErrorTypeArgument
	ErrorTypeUnknown
)

// String returns the string representation of ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNone:
		return "NONE"
	case ErrorTypeParse:
		return "PARSE"
	case ErrorTypeWrite:
		return "WRITE"
	case ErrorTypeFallback:
		return "FALLBACK"
	case ErrorTypeFileTime:
		return "FILE_TIME"
	case ErrorTypeVerify:
		return "VERIFY"
	case ErrorTypeScan:
		return "SCAN"
	case ErrorTypeArgument:
		return "ARGUMENT"
	default:
		return "UNKNOWN"
	}
}

// ProcessingError represents a detailed error with context
type ProcessingError struct {
	Type      ErrorType
	Path      string
	Message   string
	Timestamp time.Time
	Cause     error
}

// NewProcessingError creates a ProcessingError for path. message may be
// empty, in which case the cause's text is used.
func NewProcessingError(errorType ErrorType, path, message string, cause error) *ProcessingError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &ProcessingError{
		Type:      errorType,
		Path:      path,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// Error implements the error interface
func (pe *ProcessingError) Error() string {
	if pe.Path == "" {
		return fmt.Sprintf("[%s] %s", pe.Type, pe.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", pe.Type, pe.Path, pe.Message)
}

// Unwrap returns the underlying cause error
func (pe *ProcessingError) Unwrap() error {
	return pe.Cause
}

// ErrorHandler records and logs per-file and scan errors. It never decides to
// stop a run: every file is independent.
type ErrorHandler struct {
	logger       *slog.Logger
	errorCount   int64
	errorsByType map[ErrorType]int64
	recentErrors []ProcessingError
	maxRecent    int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With("component", "errors"),
		errorsByType: make(map[ErrorType]int64),
		recentErrors: make([]ProcessingError, 0),
		maxRecent:    100,
	}
}

// HandleError records err and logs it.
func (eh *ErrorHandler) HandleError(err *ProcessingError) {
	if err == nil {
		return
	}

	eh.errorCount++
	eh.errorsByType[err.Type]++

	eh.recentErrors = append(eh.recentErrors, *err)
	if len(eh.recentErrors) > eh.maxRecent {
		eh.recentErrors = eh.recentErrors[1:]
	}

	eh.logError(err)
}

func (eh *ErrorHandler) logError(err *ProcessingError) {
	attrs := []any{"type", err.Type.String(), "path", err.Path, "error", err.Message}

	switch err.Type {
	case ErrorTypeParse:
		// Unparseable names are expected in mixed folders.
		eh.logger.Warn("Skipping file.", attrs...)
	case ErrorTypeScan:
		eh.logger.Error("Cannot enumerate files.", attrs...)
	case ErrorTypeArgument:
		eh.logger.Error("Invalid argument.", attrs...)
	default:
		eh.logger.Error("Failed to update file.", attrs...)
	}
}

// GetErrorCount returns the total error count
func (eh *ErrorHandler) GetErrorCount() int64 {
	return eh.errorCount
}

// GetErrorCountByType returns the error count for a specific type
func (eh *ErrorHandler) GetErrorCountByType(errorType ErrorType) int64 {
	return eh.errorsByType[errorType]
}

// Reset resets the error handler state
func (eh *ErrorHandler) Reset() {
	eh.errorCount = 0
	eh.errorsByType = make(map[ErrorType]int64)
	eh.recentErrors = make([]ProcessingError, 0)
}

// GetErrorSummary returns a summary of all errors encountered
func (eh *ErrorHandler) GetErrorSummary() ErrorSummary {
	summary := ErrorSummary{
		TotalErrors:  eh.errorCount,
		ErrorsByType: make(map[ErrorType]int64, len(eh.errorsByType)),
		RecentErrors: make([]ProcessingError, len(eh.recentErrors)),
	}

	for errorType, count := range eh.errorsByType {
		summary.ErrorsByType[errorType] = count
	}
	copy(summary.RecentErrors, eh.recentErrors)

	return summary
}

// ErrorSummary provides a summary of errors encountered during processing
type ErrorSummary struct {
	TotalErrors  int64
	ErrorsByType map[ErrorType]int64
	RecentErrors []ProcessingError
}

// String returns a string representation of the error summary
func (es *ErrorSummary) String() string {
	if es.TotalErrors == 0 {
		return "No errors encountered"
	}

	parts := []string{fmt.Sprintf("Total errors: %d", es.TotalErrors)}

	types := make([]ErrorType, 0, len(es.ErrorsByType))
	for errorType, count := range es.ErrorsByType {
		if count > 0 {
			types = append(types, errorType)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	if len(types) > 0 {
		breakdown := make([]string, len(types))
		for i, errorType := range types {
			breakdown[i] = fmt.Sprintf("%s: %d", errorType, es.ErrorsByType[errorType])
		}
		parts = append(parts, "Breakdown: "+strings.Join(breakdown, ", "))
	}

	return strings.Join(parts, "; ")
}
