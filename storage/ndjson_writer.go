package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallapop-poller/models"
	"wallapop-poller/utils"
)

// DailyWriter appends enriched listings to the day's dataset file, one JSON
// object per line. The file is never truncated or rewritten; together with
// the identity ledger that makes re-runs within a day idempotent.
type DailyWriter struct {
	path   string
	file   *os.File
	writer *bufio.Writer
}

// DailyFilename returns the dataset path for the given instant's UTC date.
// A new day means a new filename, which implicitly starts an empty ledger.
func DailyFilename(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("wallapop_motos_%s.json", now.UTC().Format("20060102")))
}

// NewDailyWriter opens (or creates) the dataset file in append mode.
// Intermediate directories are created automatically.
func NewDailyWriter(path string) (*DailyWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("dataset: create data dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}

	return &DailyWriter{path: path, file: f, writer: bufio.NewWriter(f)}, nil
}

// Append serializes each listing onto its own line. Errors here are fatal to
// the caller: a silent loss of the day's records is the one failure this
// pipeline must not swallow.
func (w *DailyWriter) Append(listings []models.Listing) error {
	for _, l := range listings {
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("dataset: marshal listing %s: %w", l.ID(), err)
		}
		if _, err := w.writer.Write(data); err != nil {
			return fmt.Errorf("dataset: write: %w", err)
		}
		if err := w.writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("dataset: write: %w", err)
		}
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("dataset: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *DailyWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// LoadExistingIDs rebuilds the identity ledger from the day's dataset file.
// A missing file means no prior run today. Any read or parse error yields an
// empty ledger instead: worst case some listings are persisted twice, which
// beats refusing to run.
func LoadExistingIDs(path string, logger *utils.Logger) *utils.IDSet {
	ids := utils.NewIDSet()

	f, err := os.Open(path)
	if err != nil {
		return ids
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var l models.Listing
		if err := json.Unmarshal(line, &l); err != nil {
			logger.Warn("[ledger] Corrupt line in %s, starting with an empty ledger: %v", path, err)
			return utils.NewIDSet()
		}
		if id := l.ID(); id != "" {
			ids.Add(id)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("[ledger] Read error on %s, starting with an empty ledger: %v", path, err)
		return utils.NewIDSet()
	}

	return ids
}
