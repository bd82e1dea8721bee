// Package models defines the core data structures shared across hbpcheck.
package models

import (
	"time"

	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

// MonthlyRecord is one well's reported production for one calendar month,
// as loaded from a source spreadsheet. Records are read once and never
// mutated after loading.
type MonthlyRecord struct {
	WellID       string    `json:"well_id"`        // e.g., "05-123456789"
	Month        time.Time `json:"month"`          // any day within the month; normalized to the 1st
	Oil          float64   `json:"oil"`            // BBLs produced (0 when unreported)
	Gas          float64   `json:"gas"`            // MCF produced (0 when unreported)
	DaysProduced int       `json:"days_produced"`  // days actually producing (0 when unreported)
	Status       string    `json:"status"`         // regulatory status code, e.g. "PR", "SI"
}

// AnalysisConfig captures which source columns drive the analysis and how
// they are interpreted. It is built once from configuration, passed to the
// timeline builder, and retained on the Timeline for every detector call.
type AnalysisConfig struct {
	UseOil    bool `json:"use_oil"`
	UseGas    bool `json:"use_gas"`
	UseDays   bool `json:"use_days"`
	UseStatus bool `json:"use_status"`

	// Inclusive minimum thresholds; production below the threshold counts
	// as zero for the active test.
	OilMin float64 `json:"oil_min"` // BBLs
	GasMin float64 `json:"gas_min"` // MCF

	// Case-sensitive status codes treated as shut-in.
	ShutinCodes []string `json:"shutin_codes"`
}

// ConfiguredProduction reports whether oil and/or gas volumes are configured.
func (c AnalysisConfig) ConfiguredProduction() bool {
	return c.UseOil || c.UseGas
}

// ConfiguredShutin reports whether shut-in detection is configured.
func (c AnalysisConfig) ConfiguredShutin() bool {
	return c.UseStatus && len(c.ShutinCodes) > 0
}

// IsShutinCode reports whether status matches a configured shut-in code.
func (c AnalysisConfig) IsShutinCode(status string) bool {
	if !c.UseStatus {
		return false
	}
	for _, code := range c.ShutinCodes {
		if status == code {
			return true
		}
	}
	return false
}

// TimelineRow aggregates every well active in one calendar month.
type TimelineRow struct {
	Month            time.Time `json:"month"` // always the first of the month
	OilTotal         float64   `json:"oil_total"`
	GasTotal         float64   `json:"gas_total"`
	AnyActive        bool      `json:"any_active"`
	AnyShutin        bool      `json:"any_shutin"`
	NumActive        int       `json:"num_active"`
	NumShutin        int       `json:"num_shutin"`
	DaysProducing    int       `json:"days_producing"`     // max across wells
	DaysNotProducing int       `json:"days_not_producing"` // min across wells
	RecordCount      int       `json:"record_count"`       // source rows in this month
}

// LastDay returns the last calendar day of the row's month.
func (r TimelineRow) LastDay() time.Time {
	return utils.LastOfMonth(r.Month)
}

// AnnotationColumn is a named per-row counter series attached to a Timeline
// by a gap-detection run.
type AnnotationColumn struct {
	Name   string `json:"name"`
	Values []int  `json:"values"` // one value per Timeline row
}

// Timeline is an ordered sequence of one row per calendar month with no
// missing months, spanning the full range of the input records. Rows are
// fixed after construction; detector runs may attach annotation columns to
// a copy via WithAnnotations.
type Timeline struct {
	Config      AnalysisConfig     `json:"config"`
	Rows        []TimelineRow      `json:"rows"`
	Annotations []AnnotationColumn `json:"annotations,omitempty"`
}

// FirstMonth returns the first month of the timeline.
func (t *Timeline) FirstMonth() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[0].Month
}

// LastMonth returns the last month of the timeline.
func (t *Timeline) LastMonth() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[len(t.Rows)-1].Month
}

// WithAnnotations returns a copy of the timeline with the given columns
// appended. The row slice is shared (rows are immutable); the annotation
// list is copied so the receiver is never mutated.
func (t *Timeline) WithAnnotations(cols ...AnnotationColumn) *Timeline {
	annotated := &Timeline{
		Config: t.Config,
		Rows:   t.Rows,
	}
	annotated.Annotations = append(annotated.Annotations, t.Annotations...)
	annotated.Annotations = append(annotated.Annotations, cols...)
	return annotated
}

// GapInterval is an inclusive start/end date pair identifying one gap.
type GapInterval struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// GapReport is a GapInterval with its inclusive day and month totals.
type GapReport struct {
	GapInterval
	TotalDays   int `json:"total_days"`
	TotalMonths int `json:"total_months"`
}

// SourceFile records provenance for one loaded well spreadsheet, for the
// summary report's source listing.
type SourceFile struct {
	WellID      string    `json:"well_id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Modified    time.Time `json:"modified"`
	RowsLoaded  int       `json:"rows_loaded"`
	RowsSkipped int       `json:"rows_skipped"`
}
