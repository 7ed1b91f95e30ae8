package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/engagehq/pulse/internal/domain/model"
)

// csvHeader is the persisted column set. Only merge inputs are written;
// score fields are derived and recomputed from weights on every load.
var csvHeader = []string{
	"Email", "User", "Role", "Avatar", "Slack Count", "Linear Count", "Working Hours",
}

// filePermission applies to the snapshot file and its parent directory.
const (
	filePermission = 0o644
	dirPermission  = 0o755
)

// CSVStore persists the merged table as a flat file, rewritten wholesale on
// every aggregation run. The file's modification time is the only freshness
// signal exposed upward.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the snapshot file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Write overwrites the snapshot with the given records. The write goes
// through a temp file and rename so readers never observe a partial table.
func (s *CSVStore) Write(_ context.Context, records []model.MergedRecord) error {
	const op = "csvstore.write"

	if err := os.MkdirAll(filepath.Dir(s.path), dirPermission); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".engagement-*.csv")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, r := range records {
		row := []string{
			r.Email,
			r.Name,
			string(r.Role),
			r.Avatar,
			strconv.Itoa(r.SlackCount),
			strconv.Itoa(r.LinearCount),
			strconv.FormatFloat(r.WorkingHours, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Chmod(tmp.Name(), filePermission); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load reads the persisted snapshot. A missing, empty, or malformed file
// surfaces as an empty result set: the presentation layer owns the
// empty-state messaging, the pipeline never crashes on a bad file.
func (s *CSVStore) Load(_ context.Context) []model.MergedRecord {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil || len(rows) < 1 {
		return nil
	}
	if !isHeader(rows[0]) {
		return nil
	}

	records := make([]model.MergedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil
		}
		slackCount, err := strconv.Atoi(row[4])
		if err != nil {
			return nil
		}
		linearCount, err := strconv.Atoi(row[5])
		if err != nil {
			return nil
		}
		hours, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return nil
		}
		records = append(records, model.MergedRecord{
			Email:        row[0],
			Name:         row[1],
			Role:         model.Role(row[2]),
			Avatar:       row[3],
			SlackCount:   slackCount,
			LinearCount:  linearCount,
			WorkingHours: hours,
		})
	}
	return records
}

// ModTime returns the snapshot file's modification time, the zero time if
// no snapshot exists yet.
func (s *CSVStore) ModTime() time.Time {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func isHeader(row []string) bool {
	if len(row) != len(csvHeader) {
		return false
	}
	for i, col := range csvHeader {
		if row[i] != col {
			return false
		}
	}
	return true
}
