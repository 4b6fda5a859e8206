package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	day := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "linkedin_jobs_2024-03-07.csv", FileName("linkedin_jobs", day))
}

func sampleRecords() []model.PostingRecord {
	unit := model.QueryUnit{Alias: "web development", Category: "frontend developement", Location: "Morocco"}
	return []model.PostingRecord{
		{
			PostingRef:     model.PostingRef{ID: "101", Query: unit},
			Title:          "Frontend Engineer",
			CompanyName:    "Acme, Inc.",
			Description:    "Line one\nLine \"two\"",
			EmploymentType: "Full-time",
			URL:            "https://www.linkedin.com/jobs/view/101",
		},
		{
			PostingRef: model.PostingRef{ID: "102", Query: unit},
			URL:        "https://www.linkedin.com/jobs/view/102",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	now := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)

	path, err := WriteCSV(dir, "jobs", now, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jobs_2024-03-07.csv"), path)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, model.Columns, rows[0])
	assert.Equal(t, []string{
		"101", "frontend developement", "Morocco", "web development",
		"Frontend Engineer", "Acme, Inc.", "", "", "", "", "Full-time", "",
		"Line one\nLine \"two\"", "https://www.linkedin.com/jobs/view/101",
	}, rows[1])
	assert.Equal(t, "102", rows[2][0])
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "https://www.linkedin.com/jobs/view/102", rows[2][13])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteCSVEmptyHasHeader(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(dir, "jobs", time.Now(), nil)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, model.Columns, rows[0])
}

func TestWriteCSVReplacesSameDay(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	_, err := WriteCSV(dir, "jobs", now, sampleRecords())
	require.NoError(t, err)

	path, err := WriteCSV(dir, "jobs", now, sampleRecords()[:1])
	require.NoError(t, err)
	assert.Len(t, readCSV(t, path), 2)
}

func TestWriteCSVBadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := WriteCSV(filepath.Join(blocker, "sub"), "jobs", time.Now(), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExportFailed))
}
