// Package export writes crawl results to a dated CSV file.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/model"
)

const dateLayout = "2006-01-02"

// FileName returns "<prefix>_<YYYY-MM-DD>.csv" for the day of t.
func FileName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(dateLayout) + ".csv"
}

// WriteCSV writes the header and one row per record to dir/FileName(prefix, now)
// and returns the path. The file appears only once it is complete; an
// existing export for the same day is replaced.
func WriteCSV(dir, prefix string, now time.Time, records []model.PostingRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to create output directory").
			WithDetails(dir)
	}
	path := filepath.Join(dir, FileName(prefix, now))

	tmp, err := os.CreateTemp(dir, "."+prefix+"-*.csv")
	if err != nil {
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to create temp file").
			WithDetails(dir)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := writeRows(tmp, records); err != nil {
		tmp.Close()
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to write csv").
			WithDetails(path)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to close csv").
			WithDetails(path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to set file mode").
			WithDetails(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.WrapError(err, errors.ErrCodeExportFailed, "failed to move csv into place").
			WithDetails(path)
	}
	return path, nil
}

func writeRows(f *os.File, records []model.PostingRecord) error {
	w := csv.NewWriter(f)
	if err := w.Write(model.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
