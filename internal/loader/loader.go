// Package loader reads per-well monthly production CSV exports from a
// directory and merges them into one record set. Files are parsed
// concurrently; the merged output is deterministic regardless of which
// file finishes first.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hbpcheck/hbpcheck/internal/config"
	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

// ErrNoFiles is returned when the input directory contains no CSV files.
var ErrNoFiles = errors.New("no CSV files found in input directory")

const maxConcurrentFiles = 8

// Result is the merged output of one directory load.
type Result struct {
	Records []models.MonthlyRecord
	Sources []models.SourceFile
}

// Loader reads production CSVs according to the configured column names.
type Loader struct {
	cfg config.InputConfig
}

func New(cfg config.InputConfig) *Loader {
	return &Loader{cfg: cfg}
}

// LoadDir parses every *.csv file under the configured directory. Files are
// processed concurrently but the merged records and source listing are
// ordered by filename. Rows whose date cannot be parsed are skipped and
// counted per file; a file whose header lacks the date column fails the
// whole load.
func (l *Loader) LoadDir(ctx context.Context) (*Result, error) {
	pattern := filepath.Join(l.cfg.Dir, "*.csv")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", l.cfg.Dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, l.cfg.Dir)
	}
	sort.Strings(paths)

	type fileResult struct {
		records []models.MonthlyRecord
		source  models.SourceFile
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, source, err := l.loadFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			results[i] = fileResult{records: records, source: source}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Result{}
	for _, r := range results {
		merged.Records = append(merged.Records, r.records...)
		merged.Sources = append(merged.Sources, r.source)
	}
	return merged, nil
}

// loadFile parses one well's CSV export.
func (l *Loader) loadFile(path string) ([]models.MonthlyRecord, models.SourceFile, error) {
	wellID := l.deriveWellID(filepath.Base(path))
	source := models.SourceFile{
		WellID: wellID,
		Name:   filepath.Base(path),
		Path:   path,
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, source, err
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		source.Modified = info.ModTime()
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, source, fmt.Errorf("reading header: %w", err)
	}
	headers := normalizeHeaders(header)

	dateIdx := findColumn(headers, l.cfg.DateColumn)
	if dateIdx < 0 {
		return nil, source, fmt.Errorf("date column %q not found in header", l.cfg.DateColumn)
	}
	oilIdx := findColumn(headers, l.cfg.OilColumn)
	gasIdx := findColumn(headers, l.cfg.GasColumn)
	daysIdx := findColumn(headers, l.cfg.DaysColumn)
	statusIdx := findColumn(headers, l.cfg.StatusColumn)

	var records []models.MonthlyRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row, skip and keep going.
			source.RowsSkipped++
			continue
		}
		if dateIdx >= len(row) || strings.TrimSpace(row[dateIdx]) == "" {
			source.RowsSkipped++
			continue
		}
		month, err := utils.ParseDate(strings.TrimSpace(row[dateIdx]))
		if err != nil {
			source.RowsSkipped++
			continue
		}
		records = append(records, models.MonthlyRecord{
			WellID:       wellID,
			Month:        month,
			Oil:          parseFloat(field(row, oilIdx)),
			Gas:          parseFloat(field(row, gasIdx)),
			DaysProduced: parseInt(field(row, daysIdx)),
			Status:       field(row, statusIdx),
		})
		source.RowsLoaded++
	}
	return records, source, nil
}

// deriveWellID builds the well identifier from the file name. Exports named
// after the well's API sequence (nine leading digits) get the configured
// state prefix; anything else falls back to the bare file name.
func (l *Loader) deriveWellID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) >= 9 && isDigits(base[:9]) {
		return l.cfg.APIPrefix + base[:9]
	}
	return base
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// normalizeHeaders lowercases and trims column names and strips a UTF-8 BOM
// from the first column.
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// findColumn returns the index of the named column, or -1. Matching is
// case-insensitive.
func findColumn(headers []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1
	}
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some exports report days as "30.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return v
}
