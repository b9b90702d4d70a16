// File-backed record store: one CSV per run, appended as records arrive,
// plus the cumulative master table deduplicated by source URL.

package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go-bosszp-automation/internal/scraper"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofrs/flock"
)

const masterFileName = "all.csv"

// Excel wants a BOM before UTF-8 CSV, otherwise the Chinese columns render
// as mojibake.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"title", "salary", "company", "location", "experience", "education",
	"benefits", "tags", "description", "display_link", "source_url", "captured_at",
}

// MergeStats reports what a master merge did.
type MergeStats struct {
	Before    int //rows across master and run before dedup
	After     int //rows in the master table after dedup
	NewUnique int //net new source URLs this run contributed
}

// RecordStore owns the run table and the master table for one scraping run.
// All writes to the master table go through MergeIntoMaster.
type RecordStore struct {
	runCSV    string
	runJSON   string
	masterCSV string
	log       *log.Logger
}

func NewRecordStore(dataDir, runFileName string, logger *log.Logger) (*RecordStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	runCSV := filepath.Join(dataDir, runFileName)
	return &RecordStore{
		runCSV:    runCSV,
		runJSON:   strings.TrimSuffix(runCSV, ".csv") + ".json",
		masterCSV: filepath.Join(dataDir, masterFileName),
		log:       logger,
	}, nil
}

func (s *RecordStore) RunFile() string    { return s.runCSV }
func (s *RecordStore) MasterFile() string { return s.masterCSV }

// Append serializes one record onto the run table. The first write of a run
// creates the file with the BOM and header row. A nil record is a no-op.
func (s *RecordStore) Append(rec *scraper.JobRecord) error {
	if rec == nil {
		return nil
	}

	_, statErr := os.Stat(s.runCSV)
	firstWrite := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.runCSV, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open run table: %w", err)
	}
	defer f.Close()

	if firstWrite {
		if _, err := f.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	w := csv.NewWriter(f)
	if firstWrite {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(recordToRow(rec)); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush run table: %w", err)
	}

	s.log.Printf("💾 Appended '%s' to %s", rec.Title, filepath.Base(s.runCSV))
	return nil
}

// ConvertRunToJSON re-serializes the run table as an indented JSON array next
// to it. A missing or empty run table is a reported no-op.
func (s *RecordStore) ConvertRunToJSON() error {
	records, err := ReadRecords(s.runCSV)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Println("ℹ️ Run table does not exist, nothing to convert.")
			return nil
		}
		return err
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal run records: %w", err)
	}
	if err := os.WriteFile(s.runJSON, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.runJSON, err)
	}
	s.log.Printf("📁 Run table converted to %s", filepath.Base(s.runJSON))
	return nil
}

// MergeIntoMaster folds the run table into the master table. Concatenation
// order is master then run, and on duplicate source URLs the last occurrence
// wins, so a listing re-scraped with updated fields replaces its old row.
// The master file is locked for the duration and rewritten atomically.
func (s *RecordStore) MergeIntoMaster() (MergeStats, error) {
	s.log.Println("🔀 Updating the master table...")

	runRecords, err := ReadRecords(s.runCSV)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Println("ℹ️ Run table does not exist, master left untouched.")
			return MergeStats{}, nil
		}
		return MergeStats{}, fmt.Errorf("read run table: %w", err)
	}
	if len(runRecords) == 0 {
		s.log.Println("ℹ️ Run table is empty, master left untouched.")
		return MergeStats{}, nil
	}

	lock := flock.New(s.masterCSV + ".lock")
	if err := lock.Lock(); err != nil {
		return MergeStats{}, fmt.Errorf("lock master table: %w", err)
	}
	defer lock.Unlock()

	masterRecords, err := ReadRecords(s.masterCSV)
	if err != nil {
		if !os.IsNotExist(err) {
			return MergeStats{}, fmt.Errorf("read master table: %w", err)
		}
		s.log.Println("🆕 No master table yet, creating one.")
	}

	combined := make([]scraper.JobRecord, 0, len(masterRecords)+len(runRecords))
	combined = append(combined, masterRecords...)
	combined = append(combined, runRecords...)

	merged := Dedup(combined)

	stats := MergeStats{
		Before:    len(combined),
		After:     len(merged),
		NewUnique: len(merged) - len(masterRecords),
	}

	if err := writeRecordsAtomic(s.masterCSV, merged); err != nil {
		return stats, fmt.Errorf("write master table: %w", err)
	}

	s.log.Printf("✅ Merge done: %d rows in, %d rows after dedup.", stats.Before, stats.After)
	if stats.NewUnique > 0 {
		s.log.Printf("✨ This run added %d new unique listings.", stats.NewUnique)
	} else {
		s.log.Println("ℹ️ No new listings this run.")
	}
	return stats, nil
}

// Dedup removes duplicate source URLs keeping the last occurrence in its
// position, so newer fields for a re-seen listing survive.
func Dedup(records []scraper.JobRecord) []scraper.JobRecord {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]scraper.JobRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if seen.Contains(records[i].SourceURL) {
			continue
		}
		seen.Add(records[i].SourceURL)
		out = append(out, records[i])
	}
	slices.Reverse(out)
	return out
}

// ReadRecords loads a run or master table. Callers treat os.IsNotExist as
// "no data yet".
func ReadRecords(path string) ([]scraper.JobRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	//map by header name, tolerating column reordering in old files
	colIdx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIdx[strings.TrimSpace(name)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]scraper.JobRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, scraper.JobRecord{
			Title:       cell(row, "title"),
			Salary:      cell(row, "salary"),
			Company:     cell(row, "company"),
			Location:    cell(row, "location"),
			Experience:  cell(row, "experience"),
			Education:   cell(row, "education"),
			Benefits:    cell(row, "benefits"),
			Tags:        cell(row, "tags"),
			Description: cell(row, "description"),
			DisplayLink: cell(row, "display_link"),
			SourceURL:   cell(row, "source_url"),
			CapturedAt:  cell(row, "captured_at"),
		})
	}
	return records, nil
}

func recordToRow(rec *scraper.JobRecord) []string {
	return []string{
		rec.Title, rec.Salary, rec.Company, rec.Location, rec.Experience,
		rec.Education, rec.Benefits, rec.Tags, rec.Description,
		rec.DisplayLink, rec.SourceURL, rec.CapturedAt,
	}
}

func writeRecordsAtomic(path string, records []scraper.JobRecord) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := f.Write(utf8BOM); err != nil {
		f.Close()
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for i := range records {
		if err := w.Write(recordToRow(&records[i])); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
