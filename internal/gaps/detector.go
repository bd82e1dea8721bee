// Package gaps implements the gap-detection engine: three streak-finding
// algorithms over a monthly production timeline, plus summarization of the
// resulting intervals into day/month totals.
//
// All three algorithms are single linear scans with O(1) streak state and
// share one boundary-closing rule: a streak closes the first time a row
// fails the is-gap test, ending on the previous row's last calendar day;
// a streak still open when the scan ends closes on the final row's last
// calendar day.
package gaps

import (
	"errors"
	"fmt"
	"time"

	"github.com/hbpcheck/hbpcheck/internal/timeline"
	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

// ErrDaysNotConfigured is returned by ByProducingDays when the
// days-produced column was not configured.
var ErrDaysNotConfigured = errors.New("days-produced column not configured")

// Toggle is a three-state option: follow the configured default, force on,
// or force off.
type Toggle int

const (
	ToggleDefault Toggle = iota
	ToggleOn
	ToggleOff
)

// resolve returns the effective boolean given the default for this config.
func (t Toggle) resolve(def bool) bool {
	switch t {
	case ToggleOn:
		return true
	case ToggleOff:
		return false
	default:
		return def
	}
}

// Options controls a single detection run.
type Options struct {
	// ShutinAsProducing treats a month with a configured shut-in status
	// code as producing, so it cannot be part of a gap.
	ShutinAsProducing bool

	// ConsiderProduction additionally requires the production threshold to
	// be met for reported producing days to count (days-based detection)
	// or for a shut-in month to be reported (shut-in periods). Defaults to
	// on when oil or gas columns are configured.
	ConsiderProduction Toggle

	// DaysColumn and MonthsColumn, when non-empty, name annotation columns
	// for the running day/month counters attached to the result timeline.
	DaysColumn   string
	MonthsColumn string
}

// Result is the output of one detection run: the gap intervals found and a
// copy of the timeline carrying any requested running-counter columns. The
// detector never mutates the timeline it was built from.
type Result struct {
	Intervals []models.GapInterval
	Timeline  *models.Timeline
}

// Detector runs gap-detection algorithms over one validated timeline.
type Detector struct {
	tl *models.Timeline
}

// NewDetector validates the timeline invariant (consecutive months, rows on
// the first of the month) and returns a detector bound to it.
func NewDetector(tl *models.Timeline) (*Detector, error) {
	if err := timeline.Validate(tl); err != nil {
		return nil, fmt.Errorf("invalid timeline: %w", err)
	}
	return &Detector{tl: tl}, nil
}

// Timeline returns the timeline this detector operates on.
func (d *Detector) Timeline() *models.Timeline { return d.tl }

// ByProductionThreshold finds gaps in months where production did not meet
// the configured thresholds. Each gap month contributes its full calendar
// day count (whole-month attribution).
func (d *Detector) ByProductionThreshold(opts Options) *Result {
	cfg := d.tl.Config
	shutinCounts := opts.ShutinAsProducing && cfg.ConfiguredShutin()
	return d.scanWholeMonths(opts, func(row models.TimelineRow) bool {
		if row.AnyActive {
			return false
		}
		if shutinCounts && row.AnyShutin {
			return false
		}
		return true
	})
}

// ShutinPeriods finds periods covered by a shut-in status code that are not
// otherwise production-covered. Whole-month attribution, like
// ByProductionThreshold. With no shut-in codes configured the result is
// always empty.
func (d *Detector) ShutinPeriods(opts Options) *Result {
	cfg := d.tl.Config
	considerProduction := opts.ConsiderProduction.resolve(cfg.ConfiguredProduction())
	return d.scanWholeMonths(opts, func(row models.TimelineRow) bool {
		if !row.AnyShutin {
			return false
		}
		if considerProduction && row.AnyActive {
			return false
		}
		return true
	})
}

// scanWholeMonths is the shared whole-month streak scan. pred decides
// whether a row belongs to a gap.
func (d *Detector) scanWholeMonths(opts Options, pred func(models.TimelineRow) bool) *Result {
	var (
		intervals     []models.GapInterval
		runningDays   = make([]int, 0, len(d.tl.Rows))
		runningMonths = make([]int, 0, len(d.tl.Rows))
		daysCounter   int
		monthsCounter int
		gapStart      time.Time
		prevLastDay   time.Time
	)

	for _, row := range d.tl.Rows {
		lastDay := row.LastDay()
		if pred(row) {
			daysCounter += utils.DaysInMonth(row.Month)
			monthsCounter++
			if gapStart.IsZero() {
				gapStart = row.Month
			}
		} else {
			if !gapStart.IsZero() {
				intervals = append(intervals, models.GapInterval{Start: gapStart, End: prevLastDay})
			}
			daysCounter, monthsCounter = 0, 0
			gapStart = time.Time{}
		}
		runningDays = append(runningDays, daysCounter)
		runningMonths = append(runningMonths, monthsCounter)
		prevLastDay = lastDay
	}

	// The final row was part of a gap.
	if !gapStart.IsZero() {
		intervals = append(intervals, models.GapInterval{Start: gapStart, End: prevLastDay})
	}

	return &Result{
		Intervals: intervals,
		Timeline:  annotate(d.tl, opts, runningDays, runningMonths),
	}
}

// ByProducingDays finds gaps from the reported producing-day counts rather
// than the monthly active flag. A month with zero producing days is a whole
// gap month; a partially-producing month contributes its idle days to the
// adjacent gap under a worst-case consecutive-days assumption: trailing
// days when opening a gap, leading days when closing one.
func (d *Detector) ByProducingDays(opts Options) (*Result, error) {
	cfg := d.tl.Config
	if !cfg.UseDays {
		return nil, ErrDaysNotConfigured
	}
	shutinCounts := opts.ShutinAsProducing && cfg.ConfiguredShutin()
	considerProduction := opts.ConsiderProduction.resolve(cfg.ConfiguredProduction())

	var (
		intervals      []models.GapInterval
		runningDays    = make([]int, 0, len(d.tl.Rows))
		runningMonths  = make([]int, 0, len(d.tl.Rows))
		daysCounter    int
		monthsCounter  int
		gapStart       time.Time
		prevLastDay    time.Time
		closedMidMonth bool
	)

	for _, row := range d.tl.Rows {
		daysInMonth := utils.DaysInMonth(row.Month)
		lastDay := row.LastDay()
		daysProducing := row.DaysProducing
		daysNotProducing := row.DaysNotProducing
		switch {
		case shutinCounts && row.AnyShutin:
			// Affirmatively shut-in counts as producing the whole month.
			daysProducing = daysInMonth
			daysNotProducing = 0
		case considerProduction && !row.AnyActive:
			// Below the production threshold: no day counts as producing.
			daysProducing = 0
			daysNotProducing = daysInMonth
		}

		daysCounter += daysNotProducing
		switch {
		case daysProducing == 0:
			// No production all month.
			monthsCounter++
			if gapStart.IsZero() {
				gapStart = row.Month
			}
		case daysNotProducing > 0:
			// Partial production. Worst case: if opening a gap, the idle
			// days sit at the end of the month; if closing one, at the
			// start.
			if gapStart.IsZero() {
				gapStart = lastDay.AddDate(0, 0, -daysNotProducing+1)
			} else {
				end := row.Month.AddDate(0, 0, daysNotProducing-1)
				intervals = append(intervals, models.GapInterval{Start: gapStart, End: end})
				gapStart = time.Time{}
				closedMidMonth = true
			}
		default:
			// Full production all month.
			if !gapStart.IsZero() {
				intervals = append(intervals, models.GapInterval{Start: gapStart, End: prevLastDay})
			}
			daysCounter, monthsCounter = 0, 0
			gapStart = time.Time{}
		}
		runningDays = append(runningDays, daysCounter)
		runningMonths = append(runningMonths, monthsCounter)
		if closedMidMonth {
			// The leading idle days belonged to the gap just closed; a
			// later streak starts its counters fresh.
			daysCounter, monthsCounter = 0, 0
			closedMidMonth = false
		}
		prevLastDay = lastDay
	}

	if !gapStart.IsZero() {
		intervals = append(intervals, models.GapInterval{Start: gapStart, End: prevLastDay})
	}

	return &Result{
		Intervals: intervals,
		Timeline:  annotate(d.tl, opts, runningDays, runningMonths),
	}, nil
}

// annotate attaches the requested running-counter columns to a copy of the
// timeline. With no column names requested the original timeline is
// returned unchanged.
func annotate(tl *models.Timeline, opts Options, runningDays, runningMonths []int) *models.Timeline {
	var cols []models.AnnotationColumn
	if opts.DaysColumn != "" {
		cols = append(cols, models.AnnotationColumn{Name: opts.DaysColumn, Values: runningDays})
	}
	if opts.MonthsColumn != "" {
		cols = append(cols, models.AnnotationColumn{Name: opts.MonthsColumn, Values: runningMonths})
	}
	if len(cols) == 0 {
		return tl
	}
	return tl.WithAnnotations(cols...)
}
