package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader handles loading of hypothesis corpora
type Loader struct {
	datasetPath string
}

// NewLoader creates a new corpus loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads records from a corpus file (JSONL or Parquet)
func (l *Loader) Load() ([]HypothesisRecord, error) {
	return l.LoadSample(-1)
}

// LoadSample loads up to limit records (-1 for all)
func (l *Loader) LoadSample(limit int) ([]HypothesisRecord, error) {
	// Detect file format
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// loadJSONL loads records from a JSONL file
func (l *Loader) loadJSONL(limit int) ([]HypothesisRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []HypothesisRecord
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long transcripts
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit >= 0 && len(records) >= limit {
			break
		}

		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record HypothesisRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}

		if record.URI == "" {
			return nil, fmt.Errorf("record at line %d has no uri", lineNum)
		}

		records = append(records, record)

		// Log progress every 1000 records
		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)

	return records, nil
}

// loadParquet loads records from a Parquet file
func (l *Loader) loadParquet(limit int) ([]HypothesisRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	slog.Debug("Parquet file stats", "size_bytes", info.Size())

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[HypothesisRecord](pf)
	defer reader.Close()

	var records []HypothesisRecord
	rows := make([]HypothesisRecord, 128) // Read in batches

	batchNum := 0

	for limit < 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit >= 0 {
				if remaining := limit - len(records); n > remaining {
					n = remaining
				}
			}
			records = append(records, rows[:n]...)
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(records))
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records), "total_batches", batchNum)

	return records, nil
}
