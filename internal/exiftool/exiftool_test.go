package exiftool

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracertea/photostamp/internal/logging"
)

// fakeExifTool speaks enough of the -stay_open protocol for the session
// tests: it answers every -execute, fails commands mentioning FAIL, and exits
// on "-stay_open False".
const fakeExifTool = `#!/bin/sh
marker=""
prev=""
args=""
while IFS= read -r line; do
	if [ "$prev" = "-stay_open" ] && [ "$line" = "False" ]; then
		exit 0
	fi
	if [ "$prev" = "-echo4" ]; then
		marker="$line"
	fi
	if [ "$line" = "-execute" ]; then
		case "$args" in
		*FAIL*)
			echo "Error: simulated failure" >&2
			echo "    0 image files updated"
			echo "    1 files weren't updated due to errors"
			;;
		*)
			echo "    1 image files updated"
			;;
		esac
		echo "$marker" >&2
		echo "{ready}"
		args=""
		prev=""
		continue
	fi
	args="$args $line"
	prev="$line"
done
`

func writeFake(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake exiftool is a shell script")
	}
	path := filepath.Join(t.TempDir(), "exiftool")
	require.NoError(t, os.WriteFile(path, []byte(fakeExifTool), 0755))
	return path
}

func TestSession_WriteDates(t *testing.T) {
	s := New(writeFake(t), logging.Discard())
	defer s.Close()

	assert.False(t, s.Started(), "session must start lazily")

	err := s.WriteDates(context.Background(), "/photos/IMG_20201114205504.jpg", "2020:11:14 20:55:04")
	require.NoError(t, err)
	assert.True(t, s.Started())

	err = s.WriteDates(context.Background(), "/photos/FAIL.jpg", "2020:11:14 20:55:04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated failure")

	// the session keeps working after a failed command
	require.NoError(t, s.WriteDates(context.Background(), "/photos/b.jpg", "2021:01:01 00:00:00"))
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s := New(writeFake(t), logging.Discard())

	_, err := s.Execute(context.Background(), "-ver")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Execute(context.Background(), "-ver")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_CloseWithoutStart(t *testing.T) {
	s := New("/definitely/not/exiftool", logging.Discard())
	assert.NoError(t, s.Close())
	assert.False(t, s.Started())
}

func TestSession_MissingBinary(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing-exiftool"), logging.Discard())
	defer s.Close()

	err := s.WriteDates(context.Background(), "a.jpg", "2020:01:01 00:00:00")
	require.Error(t, err)

	// the start error is sticky
	err2 := s.WriteDates(context.Background(), "b.jpg", "2020:01:01 00:00:00")
	assert.Equal(t, err.Error(), err2.Error())
}

func TestSession_RejectsLineBreaks(t *testing.T) {
	s := New(writeFake(t), logging.Discard())
	defer s.Close()

	err := s.WriteDates(context.Background(), "bad\nname.jpg", "2020:01:01 00:00:00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line break")
}

func TestSession_CancelledContext(t *testing.T) {
	s := New(writeFake(t), logging.Discard())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Execute(ctx, "-ver")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Started())
}

func TestWriteDatesArgs(t *testing.T) {
	args := WriteDatesArgs("/p/My Photo's.jpg", "2020:11:14 20:55:04")
	assert.Equal(t, []string{
		"-overwrite_original",
		"-AllDates=2020:11:14 20:55:04",
		"/p/My Photo's.jpg",
	}, args)
}

func TestParseWriteResult(t *testing.T) {
	tests := []struct {
		name    string
		out     Output
		wantErr string
	}{
		{
			name: "updated",
			out:  Output{Stdout: "    1 image files updated\n"},
		},
		{
			name: "unchanged counts as success",
			out:  Output{Stdout: "    1 image files unchanged\n"},
		},
		{
			name:    "error on stderr",
			out:     Output{Stdout: "    0 image files updated\n", Stderr: "Error: File not found - x.jpg\n"},
			wantErr: "File not found",
		},
		{
			name:    "not updated due to errors",
			out:     Output{Stdout: "    0 image files updated\n    1 files weren't updated due to errors\n"},
			wantErr: "weren't updated",
		},
		{
			name:    "warning only, nothing updated",
			out:     Output{Stdout: "    0 image files updated\n", Stderr: "Warning: [minor] something\n"},
			wantErr: "did not update",
		},
		{
			name:    "empty output",
			out:     Output{},
			wantErr: "no output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseWriteResult(tt.out)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
