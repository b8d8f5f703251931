package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tracertea/photostamp/internal/stamp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Writer receives every per-file result of a run.
type Writer interface {
	WriteResult(result stamp.ProcessResult) error
	Close() error
}

// Record is the serialized form of one per-file result.
type Record struct {
	Path       string  `json:"path"`
	Name       string  `json:"name"`
	Success    bool    `json:"success"`
	Method     string  `json:"method"`
	Value      string  `json:"value,omitempty"`
	ErrorType  string  `json:"error_type,omitempty"`
	Message    string  `json:"message"`
	Fallback   bool    `json:"fallback"`
	DurationMS float64 `json:"duration_ms"`
}

// NewRecord converts a result into a Record.
func NewRecord(result stamp.ProcessResult) Record {
	rec := Record{
		Path:       result.Path,
		Name:       result.Name,
		Success:    result.Success,
		Method:     result.Method.String(),
		Value:      result.Value,
		Message:    result.Message,
		Fallback:   result.PrimaryErr != nil,
		DurationMS: float64(result.Duration.Microseconds()) / 1000,
	}
	if !result.Success {
		rec.ErrorType = result.ErrorType.String()
	}
	return rec
}

// New creates a report writer for format at path. The parent directory is
// created if needed.
func New(path, format string) (Writer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("report path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}

	switch strings.ToLower(format) {
	case "json":
		return NewJSONWriter(path)
	case "jsonl":
		return NewJSONLWriter(path)
	case "csv":
		return NewCSVWriter(path)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// JSONWriter buffers records and writes one JSON document on Close.
type JSONWriter struct {
	file    *os.File
	records []Record
}

func NewJSONWriter(path string) (*JSONWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON report %s: %w", path, err)
	}
	return &JSONWriter{file: file, records: make([]Record, 0)}, nil
}

func (jw *JSONWriter) WriteResult(result stamp.ProcessResult) error {
	jw.records = append(jw.records, NewRecord(result))
	return nil
}

// Close writes the buffered records and closes the file.
func (jw *JSONWriter) Close() error {
	if jw.file == nil {
		return nil
	}

	output := struct {
		GeneratedAt time.Time `json:"generated_at"`
		Succeeded   int       `json:"succeeded"`
		Failed      int       `json:"failed"`
		Results     []Record  `json:"results"`
	}{
		GeneratedAt: time.Now().UTC(),
		Results:     jw.records,
	}
	for _, rec := range jw.records {
		if rec.Success {
			output.Succeeded++
		} else {
			output.Failed++
		}
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		jw.file.Close()
		jw.file = nil
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	data = append(data, '\n')

	_, err = jw.file.Write(data)
	closeErr := jw.file.Close()
	jw.file = nil
	if err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return closeErr
}

// JSONLWriter writes one record per line as results arrive.
type JSONLWriter struct {
	file    *os.File
	encoder *jsoniter.Encoder
}

func NewJSONLWriter(path string) (*JSONLWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSONL report %s: %w", path, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	return &JSONLWriter{file: file, encoder: encoder}, nil
}

func (jlw *JSONLWriter) WriteResult(result stamp.ProcessResult) error {
	if jlw.file == nil {
		return fmt.Errorf("report already closed")
	}
	if err := jlw.encoder.Encode(NewRecord(result)); err != nil {
		return fmt.Errorf("failed to write JSONL record: %w", err)
	}
	return nil
}

func (jlw *JSONLWriter) Close() error {
	if jlw.file == nil {
		return nil
	}
	err := jlw.file.Close()
	jlw.file = nil
	return err
}

var csvHeader = []string{"path", "name", "success", "method", "value", "error_type", "message", "fallback", "duration_ms"}

// CSVWriter writes a header row followed by one row per result.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

func NewCSVWriter(path string) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV report %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &CSVWriter{file: file, writer: writer}, nil
}

func (cw *CSVWriter) WriteResult(result stamp.ProcessResult) error {
	if cw.file == nil {
		return fmt.Errorf("report already closed")
	}
	rec := NewRecord(result)
	row := []string{
		rec.Path,
		rec.Name,
		strconv.FormatBool(rec.Success),
		rec.Method,
		rec.Value,
		rec.ErrorType,
		rec.Message,
		strconv.FormatBool(rec.Fallback),
		strconv.FormatFloat(rec.DurationMS, 'f', 3, 64),
	}
	if err := cw.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}
	return nil
}

func (cw *CSVWriter) Close() error {
	if cw.file == nil {
		return nil
	}

	cw.writer.Flush()
	flushErr := cw.writer.Error()
	closeErr := cw.file.Close()
	cw.file = nil

	if flushErr != nil {
		return fmt.Errorf("failed to flush CSV report: %w", flushErr)
	}
	return closeErr
}
