package stamp

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracertea/photostamp/internal/logging"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeNone, "NONE"},
		{ErrorTypeParse, "PARSE"},
		{ErrorTypeWrite, "WRITE"},
		{ErrorTypeFallback, "FALLBACK"},
		{ErrorTypeFileTime, "FILE_TIME"},
		{ErrorTypeVerify, "VERIFY"},
		{ErrorTypeScan, "SCAN"},
		{ErrorTypeArgument, "ARGUMENT"},
		{ErrorTypeUnknown, "UNKNOWN"},
		{ErrorType(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.errorType.String())
	}
}

func TestProcessingError(t *testing.T) {
	cause := errors.New("disk full")

	err := NewProcessingError(ErrorTypeWrite, "/a/b.jpg", "", cause)
	assert.Equal(t, "[WRITE] /a/b.jpg: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	err = NewProcessingError(ErrorTypeScan, "", "cannot read", nil)
	assert.Equal(t, "[SCAN] cannot read", err.Error())
	assert.Nil(t, err.Unwrap())

	var pe *ProcessingError
	wrapped := fmt.Errorf("outer: %w", NewProcessingError(ErrorTypeVerify, "x.jpg", "mismatch", nil))
	assert.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, ErrorTypeVerify, pe.Type)
}

func TestErrorHandler(t *testing.T) {
	eh := NewErrorHandler(logging.Discard())

	eh.HandleError(nil)
	assert.Zero(t, eh.GetErrorCount())

	eh.HandleError(NewProcessingError(ErrorTypeParse, "a.jpg", "no timestamp", nil))
	eh.HandleError(NewProcessingError(ErrorTypeParse, "b.jpg", "no timestamp", nil))
	eh.HandleError(NewProcessingError(ErrorTypeFallback, "c.jpg", "both failed", nil))

	assert.Equal(t, int64(3), eh.GetErrorCount())
	assert.Equal(t, int64(2), eh.GetErrorCountByType(ErrorTypeParse))
	assert.Equal(t, int64(1), eh.GetErrorCountByType(ErrorTypeFallback))
	assert.Zero(t, eh.GetErrorCountByType(ErrorTypeVerify))

	summary := eh.GetErrorSummary()
	assert.Len(t, summary.RecentErrors, 3)
	assert.Equal(t, "Total errors: 3; Breakdown: PARSE: 2, FALLBACK: 1", summary.String())

	// the summary is a copy
	eh.HandleError(NewProcessingError(ErrorTypeVerify, "d.jpg", "mismatch", nil))
	assert.Equal(t, int64(3), summary.TotalErrors)
	assert.Len(t, summary.RecentErrors, 3)

	eh.Reset()
	assert.Zero(t, eh.GetErrorCount())
	empty := eh.GetErrorSummary()
	assert.Equal(t, "No errors encountered", empty.String())
}

func TestErrorHandler_RecentErrorsBounded(t *testing.T) {
	eh := NewErrorHandler(logging.Discard())
	for i := 0; i < 150; i++ {
		eh.HandleError(NewProcessingError(ErrorTypeParse, fmt.Sprintf("%d.jpg", i), "x", nil))
	}

	summary := eh.GetErrorSummary()
	assert.Equal(t, int64(150), summary.TotalErrors)
	assert.Len(t, summary.RecentErrors, 100)
	assert.Equal(t, "149.jpg", summary.RecentErrors[99].Path)
}

func TestErrorHandler_LogsArgumentAndScanSeparately(t *testing.T) {
	var buf bytes.Buffer
	eh := NewErrorHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	eh.HandleError(NewProcessingError(ErrorTypeArgument, "/nope", "", errors.New("directory does not exist")))
	eh.HandleError(NewProcessingError(ErrorTypeScan, "/photos", "", errors.New("permission denied")))

	out := buf.String()
	assert.Contains(t, out, `msg="Invalid argument."`)
	assert.Contains(t, out, `msg="Cannot enumerate files."`)
	assert.Equal(t, int64(1), eh.GetErrorSummary().ErrorsByType[ErrorTypeArgument])
}
