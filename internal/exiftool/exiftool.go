// Package exiftool drives a single long-lived exiftool process in
// -stay_open mode so that a whole run pays the Perl start-up cost once.
package exiftool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

const (
	readyMarker  = "{ready}"
	stderrMarker = "{photostamp-stderr-done}"
)

// ErrClosed is returned by Execute after Close.
var ErrClosed = errors.New("exiftool session is closed")

// Output is what one -execute produced on each stream.
type Output struct {
	Stdout string
	Stderr string
}

// Session manages a persistent exiftool process. The process is started by
// the first Execute call, not by New, so a run that never writes (dry-run,
// zero files) never spawns it.
type Session struct {
	binary string
	logger *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	stderr chan string

	started  bool
	startErr error
	closed   bool
}

// New returns an unstarted session that will run binary.
func New(binary string, logger *slog.Logger) *Session {
	if binary == "" {
		binary = "exiftool"
	}
	return &Session{
		binary: binary,
		logger: logger.With("component", "exiftool"),
	}
}

// Started reports whether the process has been launched.
func (s *Session) Started() bool {
	return s.started && s.startErr == nil
}

func (s *Session) start() error {
	if s.started {
		return s.startErr
	}
	s.started = true

	// Use "-" as the argument to -@ to read from stdin
	cmd := exec.Command(s.binary, "-stay_open", "True", "-@", "-")
	// Keep a terminal Ctrl-C away from exiftool; the run stops between files
	// and shuts the session down with Close.
	detachProcessGroup(cmd)
	s.logger.Debug("Starting exiftool.", "args", cmd.Args)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.startErr = fmt.Errorf("stdin pipe: %w", err)
		return s.startErr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.startErr = fmt.Errorf("stdout pipe: %w", err)
		return s.startErr
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.startErr = fmt.Errorf("stderr pipe: %w", err)
		return s.startErr
	}

	if err := cmd.Start(); err != nil {
		s.startErr = fmt.Errorf("starting %s: %w", s.binary, err)
		return s.startErr
	}

	lines := make(chan string, 256)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			s.logger.Debug("Error reading exiftool stderr.", "error", err)
		}
	}()

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewScanner(stdout)
	s.stderr = lines
	return nil
}

// Execute sends one command (one argument per line) to the running process
// and collects its output up to the {ready} signal.
func (s *Session) Execute(ctx context.Context, args ...string) (Output, error) {
	if s.closed {
		return Output{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	if err := s.start(); err != nil {
		return Output{}, err
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "\r\n") {
			return Output{}, fmt.Errorf("argument %q contains a line break", arg)
		}
	}

	// Ask exiftool to print a marker on stderr once the command is done so the
	// stderr reader knows where this command's diagnostics end.
	payload := append(append([]string{}, args...), "-echo4", stderrMarker, "-execute")
	for _, arg := range payload {
		if _, err := fmt.Fprintln(s.stdin, arg); err != nil {
			return Output{}, fmt.Errorf("writing arg %q: %w", arg, err)
		}
	}

	var out Output
	var stdout strings.Builder
	ready := false
	for s.stdout.Scan() {
		line := s.stdout.Text()
		if strings.HasPrefix(line, readyMarker) {
			ready = true
			break
		}
		stdout.WriteString(line)
		stdout.WriteString("\n")
	}
	if err := s.stdout.Err(); err != nil {
		return out, fmt.Errorf("reading output: %w", err)
	}
	out.Stdout = stdout.String()
	if !ready {
		return out, fmt.Errorf("exiftool exited before completing the command")
	}

	var stderr strings.Builder
	for line := range s.stderr {
		if line == stderrMarker {
			break
		}
		s.logger.Debug("exiftool stderr", "line", line)
		stderr.WriteString(line)
		stderr.WriteString("\n")
	}
	out.Stderr = stderr.String()

	return out, nil
}

// WriteDates sets every standard date tag of path to value, overwriting the
// file in place without keeping an _original backup.
func (s *Session) WriteDates(ctx context.Context, path, value string) error {
	out, err := s.Execute(ctx, WriteDatesArgs(path, value)...)
	if err != nil {
		return err
	}
	return ParseWriteResult(out)
}

// WriteDatesArgs builds the argument list for a date write.
func WriteDatesArgs(path, value string) []string {
	return []string{
		"-overwrite_original",
		"-AllDates=" + value,
		path,
	}
}

// ParseWriteResult inspects the output of a write command and returns an
// error unless at least one file was updated (or left unchanged because it
// already held the value).
func ParseWriteResult(out Output) error {
	for _, line := range strings.Split(out.Stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error") {
			return fmt.Errorf("exiftool: %s", line)
		}
	}

	updated := 0
	unchanged := 0
	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "weren't updated") {
			return fmt.Errorf("exiftool: %s", line)
		}
		var n int
		if _, err := fmt.Sscanf(line, "%d image files updated", &n); err == nil {
			updated += n
			continue
		}
		if _, err := fmt.Sscanf(line, "%d image files unchanged", &n); err == nil {
			unchanged += n
		}
	}

	if updated+unchanged == 0 {
		summary := strings.TrimSpace(out.Stdout)
		if summary == "" {
			summary = "no output"
		}
		return fmt.Errorf("exiftool did not update the file: %s", summary)
	}
	return nil
}

// Close gracefully shuts down the exiftool process. It is safe to call on a
// session that was never started and to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.Started() {
		return nil
	}

	if _, err := fmt.Fprintln(s.stdin, "-stay_open"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(s.stdin, "False"); err != nil {
		return err
	}
	if err := s.stdin.Close(); err != nil {
		return err
	}
	err := s.cmd.Wait()
	s.logger.Debug("exiftool stopped.", "error", err)
	return err
}
