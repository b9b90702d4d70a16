package viewer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Handlers serves the captured run and master files read-only. It never
// writes to the data directory.
type Handlers struct {
	DataDir string
	Log     *log.Logger
}

func (h Handlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>boss data viewer</title></head>
<body>
<h1>Captured job data</h1>
<p>Files: <a href="/api/files">/api/files</a> ·
   Contents: <code>/api/data/&lt;filename&gt;</code></p>
</body></html>`)
}

// ListFiles returns the CSV and JSON files in the data directory, newest
// first (run files carry their timestamp in the name, so a reverse name sort
// does the right thing).
func (h Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, []string{})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".json") {
			files = append(files, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	h.Log.Printf("📂 Listing %d data files", len(files))
	writeJSON(w, http.StatusOK, files)
}

// FileData parses one file and returns its rows as JSON records. Empty CSV
// cells come back as JSON null so the front end can tell "empty" from "N/A".
func (h Handlers) FileData(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name != filepath.Base(name) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filename"})
		return
	}

	path := filepath.Join(h.DataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	switch {
	case strings.HasSuffix(name, ".csv"):
		records, err := csvToRecords(data)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, records)
	case strings.HasSuffix(name, ".json"):
		var parsed any
		if err := json.Unmarshal(data, &parsed); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, parsed)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported file type"})
	}
}

func csvToRecords(data []byte) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	header := rows[0]
	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]any, len(header))
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				record[col] = nil
				continue
			}
			record[col] = row[i]
		}
		records = append(records, record)
	}
	return records, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
