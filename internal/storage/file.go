package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gridcrawl/gridcrawl/internal/types"
)

// --- CSV Sink ---

// CSVSink writes records as CSV rows. Column order is the record's field
// order; an empty batch writes no file at all.
type CSVSink struct {
	path   string
	count  int
	logger *slog.Logger
}

// NewCSVSink creates a CSV file sink.
func NewCSVSink(outputPath string, logger *slog.Logger) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVSink{
		path:   outputPath,
		logger: logger.With("component", "csv_sink"),
	}, nil
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(records []*types.ProductRecord) error {
	if len(records) == 0 {
		s.logger.Info("no records to save, skipping file", "path", s.path)
		return nil
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(types.FieldNames()); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.FlatRow()); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	s.logger.Info("CSV written", "path", s.path, "records", s.count)
	return nil
}

func (s *CSVSink) Close() error { return nil }

// --- JSON Sink ---

// JSONSink writes records as an indented JSON array. Output is UTF-8
// with HTML escaping disabled so non-ASCII product text survives intact.
type JSONSink struct {
	path   string
	count  int
	logger *slog.Logger
}

// NewJSONSink creates a JSON file sink.
func NewJSONSink(outputPath string, logger *slog.Logger) (*JSONSink, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONSink{
		path:   outputPath,
		logger: logger.With("component", "json_sink"),
	}, nil
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Write(records []*types.ProductRecord) error {
	if len(records) == 0 {
		s.logger.Info("no records to save, skipping file", "path", s.path)
		return nil
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.count = len(records)
	s.logger.Info("JSON written", "path", s.path, "records", s.count)
	return nil
}

func (s *JSONSink) Close() error { return nil }

// ReadJSON loads a record sequence previously written by JSONSink.
func ReadJSON(path string) ([]*types.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []*types.ProductRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// --- Multi-Sink Fan-Out ---

// MultiSink writes records to several sinks in order, collecting every
// failure instead of stopping at the first.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewMultiSink creates a fan-out over the given sinks.
func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:  sinks,
		logger: logger.With("component", "multi_sink"),
	}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Write(records []*types.ProductRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(records); err != nil {
			m.logger.Error("sink write failed", "sink", s.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d sink(s) failed: %v", len(errs), errs)
	}
	return nil
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
