package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"practo-scraper/models"
)

// CSVWriter appends clinic records to a CSV file. The header row is written
// only when the file is created, so repeated runs keep appending to the
// same table.
type CSVWriter struct {
	filePath string
	log      zerolog.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, log zerolog.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, log: log}
}

// Append writes a batch of records to the output file, creating the parent
// directory and header on first use. A failing row is logged and skipped
// without aborting the rest of the batch.
func (w *CSVWriter) Append(records []*models.ClinicRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writeHeader := false
	if fi, err := os.Stat(w.filePath); errors.Is(err, os.ErrNotExist) {
		writeHeader = true
	} else if err == nil && fi.Size() == 0 {
		writeHeader = true
	}

	file, err := os.OpenFile(w.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if writeHeader {
		if err := writer.Write(models.Headers); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	written := 0
	for _, r := range records {
		if err := writer.Write(r.Row()); err != nil {
			w.log.Error().Err(err).Str("clinic", r.Clinic).Msg("failed to write CSV row, skipping")
			continue
		}
		written++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.log.Info().Int("rows", written).Str("file", w.filePath).Msg("batch written")
	return nil
}

// SeenKeys reads any existing output file and returns the dedup key of
// every row already persisted. A missing file yields no keys.
func (w *CSVWriter) SeenKeys() ([]string, error) {
	file, err := os.Open(w.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open existing output: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var keys []string
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.log.Warn().Err(err).Msg("skipping unreadable row while seeding dedup keys")
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(row) < 3 {
			continue
		}
		keys = append(keys, models.DedupKeyFor(row[1], row[2]))
	}
	return keys, nil
}

// Close implements RecordWriter. The file handle is per-batch, so there is
// nothing to release.
func (w *CSVWriter) Close() error { return nil }
