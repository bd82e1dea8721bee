// Package timeline builds the unified monthly production timeline from raw
// per-well records. It normalizes record dates to the first of the month,
// fills any missing months across the full date range, and aggregates all
// wells active in each month into a single row.
package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

var (
	// ErrNotConfigured is returned when neither oil, gas, nor status
	// columns are configured — there is nothing to aggregate.
	ErrNotConfigured = errors.New("no oil, gas, or status columns configured")

	// ErrNoRecords is returned when zero records are supplied.
	ErrNoRecords = errors.New("no production records supplied")
)

// DataError reports a record whose month date is missing or unusable.
// It is fatal for the analysis run; the calling boundary decides whether
// to skip the offending file or abort.
type DataError struct {
	WellID string
	Err    error
}

func (e *DataError) Error() string {
	if e.WellID == "" {
		return fmt.Sprintf("bad record: %v", e.Err)
	}
	return fmt.Sprintf("bad record for well %s: %v", e.WellID, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// Build constructs a Timeline from raw monthly records. The returned
// timeline has exactly one row per calendar month from the earliest to the
// latest month present in the input, inclusive; months with no source
// records appear as placeholder rows with empty-default aggregates.
func Build(records []models.MonthlyRecord, cfg models.AnalysisConfig) (*models.Timeline, error) {
	if !cfg.UseOil && !cfg.UseGas && !cfg.UseStatus {
		return nil, ErrNotConfigured
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	buckets := make(map[time.Time][]models.MonthlyRecord)
	var first, last time.Time
	for _, rec := range records {
		if rec.Month.IsZero() {
			return nil, &DataError{WellID: rec.WellID, Err: errors.New("record has no month date")}
		}
		month := utils.FirstOfMonth(rec.Month)
		buckets[month] = append(buckets[month], rec)
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if last.IsZero() || month.After(last) {
			last = month
		}
	}

	rows := make([]models.TimelineRow, 0, utils.MonthsBetween(first, last))
	for month := first; !month.After(last); month = utils.NextMonth(month) {
		rows = append(rows, aggregateMonth(month, buckets[month], cfg))
	}

	return &models.Timeline{Config: cfg, Rows: rows}, nil
}

// Validate checks the timeline invariant: at least one row, every row dated
// on the first of its month, and consecutive rows exactly one month apart.
func Validate(t *models.Timeline) error {
	if t == nil || len(t.Rows) == 0 {
		return errors.New("timeline has no rows")
	}
	for i, row := range t.Rows {
		if row.Month.Day() != 1 {
			return fmt.Errorf("row %d is not dated on the first of the month: %s",
				i, utils.FormatDate(row.Month))
		}
		if i > 0 && !row.Month.Equal(utils.NextMonth(t.Rows[i-1].Month)) {
			return fmt.Errorf("month gap between rows %d and %d (%s to %s)",
				i-1, i, utils.FormatMonth(t.Rows[i-1].Month), utils.FormatMonth(row.Month))
		}
	}
	return nil
}

// aggregateMonth folds all records for one month into a single row.
// Aggregation is order-independent: sums for volumes and well counts,
// max for the boolean flags and producing days, min for non-producing days.
func aggregateMonth(month time.Time, recs []models.MonthlyRecord, cfg models.AnalysisConfig) models.TimelineRow {
	daysInMonth := utils.DaysInMonth(month)
	row := models.TimelineRow{
		Month:            month,
		DaysNotProducing: daysInMonth,
	}

	for _, rec := range recs {
		row.RecordCount++
		if cfg.UseOil {
			row.OilTotal += rec.Oil
		}
		if cfg.UseGas {
			row.GasTotal += rec.Gas
		}
		if recordActive(rec, cfg) {
			row.AnyActive = true
			row.NumActive++
		}
		if cfg.IsShutinCode(rec.Status) {
			row.AnyShutin = true
			row.NumShutin++
		}
		if cfg.UseDays {
			produced := clampDays(rec.DaysProduced, daysInMonth)
			if produced > row.DaysProducing {
				row.DaysProducing = produced
			}
			if idle := daysInMonth - produced; idle < row.DaysNotProducing {
				row.DaysNotProducing = idle
			}
		}
	}

	return row
}

// recordActive applies the production threshold test to one record.
// Only configured columns count; a value below its inclusive minimum
// contributes zero.
func recordActive(rec models.MonthlyRecord, cfg models.AnalysisConfig) bool {
	if !cfg.ConfiguredProduction() {
		return false
	}
	var total float64
	if cfg.UseOil && rec.Oil >= cfg.OilMin {
		total += rec.Oil
	}
	if cfg.UseGas && rec.Gas >= cfg.GasMin {
		total += rec.Gas
	}
	return total > 0
}

func clampDays(days, daysInMonth int) int {
	if days < 0 {
		return 0
	}
	if days > daysInMonth {
		return daysInMonth
	}
	return days
}
