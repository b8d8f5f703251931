package stamp

import (
	"context"
	"time"
)

// DateWriter writes the standard date tags of one file in place.
type DateWriter interface {
	WriteDates(ctx context.Context, path, value string) error
}

// DateReader reads the capture date currently stored in a file.
type DateReader interface {
	ReadDate(path string) (time.Time, error)
}

// ResultSink receives every per-file result, in processing order.
type ResultSink interface {
	WriteResult(result ProcessResult) error
}

// Progress renders per-file progress for the orchestrator.
type Progress interface {
	Found(total int)
	Start(index, total int, name string)
	Outcome(result ProcessResult)
}
