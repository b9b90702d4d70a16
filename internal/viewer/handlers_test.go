package viewer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv := httptest.NewServer(Routes(Handlers{
		DataDir: dir,
		Log:     log.New(io.Discard, "", 0),
	}))
	t.Cleanup(srv.Close)
	return srv, dir
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestListFiles(t *testing.T) {
	srv, dir := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "boss_jobs_20250101_120000.csv"), []byte("a\n1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boss_jobs_20250301_120000.csv"), []byte("a\n1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))

	var files []string
	status := getJSON(t, srv.URL+"/api/files", &files)
	assert.Equal(t, http.StatusOK, status)
	//newest first, non-data files skipped
	assert.Equal(t, []string{"boss_jobs_20250301_120000.csv", "boss_jobs_20250101_120000.csv"}, files)
}

func TestListFiles_MissingDataDir(t *testing.T) {
	srv := httptest.NewServer(Routes(Handlers{
		DataDir: filepath.Join(t.TempDir(), "missing"),
		Log:     log.New(io.Discard, "", 0),
	}))
	defer srv.Close()

	var files []string
	status := getJSON(t, srv.URL+"/api/files", &files)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, files)
}

func TestFileData_CSVNullCells(t *testing.T) {
	srv, dir := newTestServer(t)

	csvData := "\xEF\xBB\xBFtitle,salary,company\n后端开发,10-20K,\n算法工程师,,某某科技\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.csv"), []byte(csvData), 0644))

	var records []map[string]any
	status := getJSON(t, srv.URL+"/api/data/run.csv", &records)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, records, 2)

	assert.Equal(t, "后端开发", records[0]["title"])
	assert.Nil(t, records[0]["company"], "empty cells must come back as null")
	assert.Nil(t, records[1]["salary"])
	assert.Equal(t, "某某科技", records[1]["company"])
}

func TestFileData_JSONPassthrough(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.json"), []byte(`[{"title":"后端开发"}]`), 0644))

	var records []map[string]any
	status := getJSON(t, srv.URL+"/api/data/run.json", &records)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, records, 1)
	assert.Equal(t, "后端开发", records[0]["title"])
}

func TestFileData_Errors(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/data/nope.csv", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/data/notes.txt", nil))
}
