package stamp

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// tiffWithDate builds the smallest TIFF goexif accepts: one IFD holding a
// DateTime tag.
func tiffWithDate(value string) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("II*\x00")
	binary.Write(buf, binary.LittleEndian, uint32(8))      // IFD0 offset
	binary.Write(buf, binary.LittleEndian, uint16(1))      // entry count
	binary.Write(buf, binary.LittleEndian, uint16(0x0132)) // DateTime
	binary.Write(buf, binary.LittleEndian, uint16(2))      // ASCII
	binary.Write(buf, binary.LittleEndian, uint32(len(value)+1))
	binary.Write(buf, binary.LittleEndian, uint32(26)) // value offset
	binary.Write(buf, binary.LittleEndian, uint32(0))  // next IFD
	buf.WriteString(value)
	buf.WriteByte(0)
	return buf.Bytes()
}

// wallClock returns the Timestamp whose digits are t's wall clock.
func wallClock(t time.Time) Timestamp {
	return Timestamp{wall: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// fakeDates stands in for exiftool.
type fakeDates struct {
	calls  []string
	values []string
	// honorCtx makes writes fail once ctx is cancelled, like the real session
	honorCtx bool
	// fail decides per path whether the write fails
	fail func(path string) error
	// write, when set, replaces the file content with what it returns
	write func(value string) []byte
	// after runs after a successful write
	after func(path string)
}

func (f *fakeDates) WriteDates(ctx context.Context, path, value string) error {
	f.calls = append(f.calls, path)
	f.values = append(f.values, value)
	if f.honorCtx {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if f.fail != nil {
		if err := f.fail(path); err != nil {
			return err
		}
	}
	if f.write != nil {
		if err := os.WriteFile(path, f.write(value), 0644); err != nil {
			return err
		}
	}
	if f.after != nil {
		f.after(path)
	}
	return nil
}

type progressEvent struct {
	index, total int
	name         string
}

type recordingProgress struct {
	found    int
	starts   []progressEvent
	outcomes []ProcessResult
}

func (r *recordingProgress) Found(total int) { r.found = total }

func (r *recordingProgress) Start(index, total int, name string) {
	r.starts = append(r.starts, progressEvent{index, total, name})
}

func (r *recordingProgress) Outcome(result ProcessResult) {
	r.outcomes = append(r.outcomes, result)
}

type recordingSink struct {
	results []ProcessResult
}

func (r *recordingSink) WriteResult(result ProcessResult) error {
	r.results = append(r.results, result)
	return nil
}

var oldTime = time.Date(2001, 1, 1, 12, 0, 0, 0, time.Local)

// writeImage creates a file with fixed content and an old modification time.
func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not really an image"), 0644))
	require.NoError(t, os.Chtimes(path, oldTime, oldTime))
	return path
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
