package gaps

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hbpcheck/hbpcheck/internal/timeline"
	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthFixture is a compact fixture row for building test timelines.
type monthFixture struct {
	month  time.Time
	oil    float64
	days   int
	status string
}

func buildTimeline(t *testing.T, cfg models.AnalysisConfig, fixtures []monthFixture) *models.Timeline {
	t.Helper()
	records := make([]models.MonthlyRecord, 0, len(fixtures))
	for _, s := range fixtures {
		records = append(records, models.MonthlyRecord{
			WellID:       "05-001234567",
			Month:        s.month,
			Oil:          s.oil,
			DaysProduced: s.days,
			Status:       s.status,
		})
	}
	tl, err := timeline.Build(records, cfg)
	if err != nil {
		t.Fatalf("building fixture timeline: %v", err)
	}
	return tl
}

func newDetector(t *testing.T, tl *models.Timeline) *Detector {
	t.Helper()
	d, err := NewDetector(tl)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

func oilConfig() models.AnalysisConfig {
	return models.AnalysisConfig{UseOil: true, UseStatus: true, ShutinCodes: []string{"SI"}}
}

func oilDaysConfig() models.AnalysisConfig {
	cfg := oilConfig()
	cfg.UseDays = true
	return cfg
}

func intervals(pairs ...time.Time) []models.GapInterval {
	ivs := make([]models.GapInterval, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ivs = append(ivs, models.GapInterval{Start: pairs[i], End: pairs[i+1]})
	}
	return ivs
}

// Jan active, Feb inactive, Mar inactive, Apr active: one gap Feb 1 - Mar 31.
func TestByProductionThresholdSingleGap(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 100, status: "PR"},
		{month: date(2021, time.February, 1), status: "PR"},
		{month: date(2021, time.March, 1), status: "PR"},
		{month: date(2021, time.April, 1), oil: 100, status: "PR"},
	})
	res := newDetector(t, tl).ByProductionThreshold(Options{})

	want := intervals(date(2021, time.February, 1), date(2021, time.March, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Fatalf("intervals = %v, want %v", res.Intervals, want)
	}
	reports := Summarize(res.Intervals)
	if reports[0].TotalDays != 59 {
		t.Errorf("TotalDays = %d, want 59", reports[0].TotalDays)
	}
	if reports[0].TotalMonths != 2 {
		t.Errorf("TotalMonths = %d, want 2", reports[0].TotalMonths)
	}
}

// Jan inactive but shut-in, Feb active: gap only when shut-in gets no credit.
func TestByProductionThresholdShutinCredit(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), status: "SI"},
		{month: date(2021, time.February, 1), oil: 100, status: "PR"},
	})
	d := newDetector(t, tl)

	res := d.ByProductionThreshold(Options{ShutinAsProducing: true})
	if len(res.Intervals) != 0 {
		t.Errorf("with shut-in credit expected no gaps, got %v", res.Intervals)
	}

	res = d.ByProductionThreshold(Options{ShutinAsProducing: false})
	want := intervals(date(2021, time.January, 1), date(2021, time.January, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("without shut-in credit intervals = %v, want %v", res.Intervals, want)
	}
}

func TestByProductionThresholdGapAtStart(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), status: "PR"},
		{month: date(2021, time.February, 1), oil: 50, status: "PR"},
	})
	res := newDetector(t, tl).ByProductionThreshold(Options{})
	want := intervals(date(2021, time.January, 1), date(2021, time.January, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

func TestByProductionThresholdGapOpenAtEnd(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
		{month: date(2021, time.February, 1), status: "PR"},
		{month: date(2021, time.March, 1), status: "PR"},
	})
	res := newDetector(t, tl).ByProductionThreshold(Options{})
	// Still-open streak closes on the final row's last calendar day.
	want := intervals(date(2021, time.February, 1), date(2021, time.March, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

// A month with zero input records still appears and is a gap month.
func TestPlaceholderMonthIsGapMonth(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, days: 31, status: "PR"},
		// February has no source records at all.
		{month: date(2021, time.March, 1), oil: 50, days: 31, status: "PR"},
	})
	d := newDetector(t, tl)

	want := intervals(date(2021, time.February, 1), date(2021, time.February, 28))

	res := d.ByProductionThreshold(Options{})
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("threshold intervals = %v, want %v", res.Intervals, want)
	}

	daysRes, err := d.ByProducingDays(Options{})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	if !reflect.DeepEqual(daysRes.Intervals, want) {
		t.Errorf("days intervals = %v, want %v", daysRes.Intervals, want)
	}

	shutinRes := d.ShutinPeriods(Options{})
	if len(shutinRes.Intervals) != 0 {
		t.Errorf("placeholder month is not shut-in, got %v", shutinRes.Intervals)
	}
}

func TestByProductionThresholdIdempotent(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
		{month: date(2021, time.February, 1), status: "PR"},
		{month: date(2021, time.March, 1), oil: 50, status: "PR"},
		{month: date(2021, time.April, 1), status: "PR"},
	})
	d := newDetector(t, tl)
	first := d.ByProductionThreshold(Options{})
	second := d.ByProductionThreshold(Options{})
	if !reflect.DeepEqual(first.Intervals, second.Intervals) {
		t.Errorf("repeated runs differ: %v vs %v", first.Intervals, second.Intervals)
	}
}

// Intervals are disjoint, chronologically ordered, and their union with the
// complement covers the timeline at month granularity.
func TestByProductionThresholdIntervalProperties(t *testing.T) {
	fixtures := []monthFixture{
		{month: date(2020, time.November, 1), status: "PR"},
		{month: date(2020, time.December, 1), oil: 10, status: "PR"},
		{month: date(2021, time.January, 1), status: "PR"},
		{month: date(2021, time.February, 1), status: "PR"},
		{month: date(2021, time.March, 1), oil: 10, status: "PR"},
		{month: date(2021, time.April, 1), status: "PR"},
	}
	tl := buildTimeline(t, oilConfig(), fixtures)
	res := newDetector(t, tl).ByProductionThreshold(Options{})

	gapMonths := 0
	for i, iv := range res.Intervals {
		if iv.End.Before(iv.Start) {
			t.Errorf("interval %d inverted: %v", i, iv)
		}
		if iv.Start.Day() != 1 {
			t.Errorf("interval %d does not start on a month boundary: %v", i, iv.Start)
		}
		if !iv.End.Equal(utils.LastOfMonth(iv.End)) {
			t.Errorf("interval %d does not end on a month boundary: %v", i, iv.End)
		}
		if i > 0 && !res.Intervals[i-1].End.Before(iv.Start) {
			t.Errorf("intervals %d and %d overlap or are out of order", i-1, i)
		}
		gapMonths += utils.MonthsBetween(iv.Start, iv.End)
	}
	activeMonths := 0
	for _, row := range tl.Rows {
		if row.AnyActive {
			activeMonths++
		}
	}
	if gapMonths+activeMonths != len(tl.Rows) {
		t.Errorf("gap months (%d) + active months (%d) != total (%d)",
			gapMonths, activeMonths, len(tl.Rows))
	}
}

func TestRunningCounterAnnotations(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
		{month: date(2021, time.February, 1), status: "PR"},
		{month: date(2021, time.March, 1), status: "PR"},
		{month: date(2021, time.April, 1), oil: 50, status: "PR"},
	})
	res := newDetector(t, tl).ByProductionThreshold(Options{
		DaysColumn:   "days_nonprod",
		MonthsColumn: "months_nonprod",
	})

	if len(tl.Annotations) != 0 {
		t.Fatal("detector mutated the source timeline")
	}
	if len(res.Timeline.Annotations) != 2 {
		t.Fatalf("expected 2 annotation columns, got %d", len(res.Timeline.Annotations))
	}
	days := res.Timeline.Annotations[0]
	months := res.Timeline.Annotations[1]
	if days.Name != "days_nonprod" || months.Name != "months_nonprod" {
		t.Errorf("column names = %q, %q", days.Name, months.Name)
	}
	if want := []int{0, 28, 59, 0}; !reflect.DeepEqual(days.Values, want) {
		t.Errorf("running days = %v, want %v", days.Values, want)
	}
	if want := []int{0, 1, 2, 0}; !reflect.DeepEqual(months.Values, want) {
		t.Errorf("running months = %v, want %v", months.Values, want)
	}
}

func TestAnnotationsSkippedWithoutColumnNames(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
	})
	res := newDetector(t, tl).ByProductionThreshold(Options{})
	if len(res.Timeline.Annotations) != 0 {
		t.Errorf("unexpected annotations: %v", res.Timeline.Annotations)
	}
}

// Worst-case consecutive-days attribution: 21 producing days in March, zero
// in April, 7 in May. The gap is assumed to run from the tail of March
// through the head of May: 10 + 30 + 24 = 64 days.
func TestByProducingDaysWorstCase(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.February, 1), oil: 50, days: 28, status: "PR"},
		{month: date(2021, time.March, 1), oil: 50, days: 21, status: "PR"},
		{month: date(2021, time.April, 1), days: 0, status: "PR"},
		{month: date(2021, time.May, 1), oil: 50, days: 7, status: "PR"},
		{month: date(2021, time.June, 1), oil: 50, days: 30, status: "PR"},
	})
	res, err := newDetector(t, tl).ByProducingDays(Options{})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}

	want := intervals(date(2021, time.March, 22), date(2021, time.May, 24))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Fatalf("intervals = %v, want %v", res.Intervals, want)
	}
	reports := Summarize(res.Intervals)
	if reports[0].TotalDays != 64 {
		t.Errorf("TotalDays = %d, want 64", reports[0].TotalDays)
	}
	if reports[0].TotalMonths != 3 {
		t.Errorf("TotalMonths = %d, want 3", reports[0].TotalMonths)
	}
}

func TestByProducingDaysRunningCounters(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.March, 1), oil: 50, days: 21, status: "PR"},
		{month: date(2021, time.April, 1), days: 0, status: "PR"},
		{month: date(2021, time.May, 1), oil: 50, days: 7, status: "PR"},
		{month: date(2021, time.June, 1), oil: 50, days: 30, status: "PR"},
	})
	res, err := newDetector(t, tl).ByProducingDays(Options{
		DaysColumn:   "days_idle",
		MonthsColumn: "months_idle",
	})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	days := res.Timeline.Annotations[0].Values
	if want := []int{10, 40, 64, 0}; !reflect.DeepEqual(days, want) {
		t.Errorf("running days = %v, want %v", days, want)
	}
	months := res.Timeline.Annotations[1].Values
	if want := []int{0, 1, 1, 0}; !reflect.DeepEqual(months, want) {
		t.Errorf("running months = %v, want %v", months, want)
	}
}

// An isolated partial month between two fully-producing months yields a
// sub-month gap covering exactly its trailing idle days.
func TestByProducingDaysIsolatedPartialMonth(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.March, 1), oil: 50, days: 31, status: "PR"},
		{month: date(2021, time.April, 1), oil: 50, days: 20, status: "PR"},
		{month: date(2021, time.May, 1), oil: 50, days: 31, status: "PR"},
	})
	res, err := newDetector(t, tl).ByProducingDays(Options{})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	want := intervals(date(2021, time.April, 21), date(2021, time.April, 30))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

// A partial month that closes a gap resets streak state; a later streak
// must form its own disjoint interval rather than reusing the old start.
func TestByProducingDaysPartialCloseResetsStreak(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.January, 1), days: 0, status: "PR"},
		{month: date(2021, time.February, 1), oil: 50, days: 20, status: "PR"},
		{month: date(2021, time.March, 1), days: 0, status: "PR"},
		{month: date(2021, time.April, 1), oil: 50, days: 30, status: "PR"},
	})
	res, err := newDetector(t, tl).ByProducingDays(Options{})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	// Gap one: all of January plus February's 8 leading idle days.
	// Gap two: February's trailing idle days would have been claimed by the
	// first gap's close, so the second gap starts fresh in March.
	want := intervals(
		date(2021, time.January, 1), date(2021, time.February, 8),
		date(2021, time.March, 1), date(2021, time.March, 31),
	)
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Fatalf("intervals = %v, want %v", res.Intervals, want)
	}
	for i := 1; i < len(res.Intervals); i++ {
		if !res.Intervals[i-1].End.Before(res.Intervals[i].Start) {
			t.Error("intervals overlap after a partial-month close")
		}
	}
}

func TestByProducingDaysShutinForcesFullProduction(t *testing.T) {
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, days: 31, status: "PR"},
		{month: date(2021, time.February, 1), days: 3, status: "SI"},
		{month: date(2021, time.March, 1), oil: 50, days: 31, status: "PR"},
	})
	d := newDetector(t, tl)

	res, err := d.ByProducingDays(Options{ShutinAsProducing: true})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	if len(res.Intervals) != 0 {
		t.Errorf("shut-in month should count as fully producing, got %v", res.Intervals)
	}

	res, err = d.ByProducingDays(Options{ShutinAsProducing: false})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	// Without shut-in credit, February misses the production threshold and
	// counts as a whole gap month.
	want := intervals(date(2021, time.February, 1), date(2021, time.February, 28))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

func TestByProducingDaysConsiderProductionToggle(t *testing.T) {
	// June reports 25 producing days but zero volume.
	tl := buildTimeline(t, oilDaysConfig(), []monthFixture{
		{month: date(2021, time.May, 1), oil: 50, days: 31, status: "PR"},
		{month: date(2021, time.June, 1), days: 25, status: "PR"},
		{month: date(2021, time.July, 1), oil: 50, days: 31, status: "PR"},
	})
	d := newDetector(t, tl)

	// Default: oil is configured, so the threshold overrides reported days
	// and June is a whole gap month.
	res, err := d.ByProducingDays(Options{})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	want := intervals(date(2021, time.June, 1), date(2021, time.June, 30))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("default intervals = %v, want %v", res.Intervals, want)
	}

	// Forced off: the reported 25 days stand, leaving a 5-day partial gap.
	res, err = d.ByProducingDays(Options{ConsiderProduction: ToggleOff})
	if err != nil {
		t.Fatalf("ByProducingDays: %v", err)
	}
	want = intervals(date(2021, time.June, 26), date(2021, time.June, 30))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("forced-off intervals = %v, want %v", res.Intervals, want)
	}
}

func TestByProducingDaysRequiresDaysColumn(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
	})
	if _, err := newDetector(t, tl).ByProducingDays(Options{}); !errors.Is(err, ErrDaysNotConfigured) {
		t.Errorf("expected ErrDaysNotConfigured, got %v", err)
	}
}

func TestShutinPeriods(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "PR"},
		{month: date(2021, time.February, 1), status: "SI"},
		{month: date(2021, time.March, 1), status: "SI"},
		{month: date(2021, time.April, 1), oil: 50, status: "PR"},
	})
	res := newDetector(t, tl).ShutinPeriods(Options{})
	want := intervals(date(2021, time.February, 1), date(2021, time.March, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

// With production considered, a month that is both shut-in and producing is
// production-covered and never a shut-in period.
func TestShutinPeriodsConsiderProduction(t *testing.T) {
	tl := buildTimeline(t, oilConfig(), []monthFixture{
		{month: date(2021, time.January, 1), oil: 50, status: "SI"},
		{month: date(2021, time.February, 1), oil: 50, status: "PR"},
	})
	d := newDetector(t, tl)

	res := d.ShutinPeriods(Options{})
	if len(res.Intervals) != 0 {
		t.Errorf("production-covered month reported as shut-in: %v", res.Intervals)
	}

	res = d.ShutinPeriods(Options{ConsiderProduction: ToggleOff})
	want := intervals(date(2021, time.January, 1), date(2021, time.January, 31))
	if !reflect.DeepEqual(res.Intervals, want) {
		t.Errorf("intervals = %v, want %v", res.Intervals, want)
	}
}

func TestNewDetectorRejectsInvalidTimeline(t *testing.T) {
	tl := &models.Timeline{Rows: []models.TimelineRow{
		{Month: date(2021, time.January, 1)},
		{Month: date(2021, time.March, 1)},
	}}
	if _, err := NewDetector(tl); err == nil {
		t.Error("expected error for timeline with a missing month")
	}
}
