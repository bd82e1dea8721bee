package report

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"

	"github.com/hbpcheck/hbpcheck/internal/config"
	"github.com/hbpcheck/hbpcheck/internal/gaps"
	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

const disclaimer = "Production is reported to the state on a month-by-month " +
	"basis, so any production within a month is treated as covering the " +
	"whole month. Real gaps and shut-in periods may therefore extend some " +
	"days into the preceding and following calendar months beyond what " +
	"these figures show. Verify against the operator's own records before " +
	"relying on any interval reported here."

// ════════════════════════════════════════════════════════════════════
// Report Writer — Orchestrates text, CSV, chart and zip outputs
// ════════════════════════════════════════════════════════════════════

// Analysis bundles everything one detection run produced, ready to render.
type Analysis struct {
	Timeline *models.Timeline
	RawGaps  []models.GapReport // gaps with shut-in counting as non-producing
	DayGaps  []models.GapReport // gaps with shut-in counting as production
	Shutins  []models.GapReport
	Sources  []models.SourceFile
}

// Writer renders an Analysis into the configured output directory. Each
// writer carries a unique run ID that is stamped into the text summary.
type Writer struct {
	cfg     config.ReportConfig
	version string
	runID   string
	now     func() time.Time
}

// NewWriter creates a report writer. version appears in the summary footer.
func NewWriter(cfg config.ReportConfig, version string) *Writer {
	return &Writer{
		cfg:     cfg,
		version: version,
		runID:   uuid.NewString(),
		now:     time.Now,
	}
}

// RunID returns the unique identifier stamped into this writer's outputs.
func (w *Writer) RunID() string { return w.runID }

// WriteAll renders every configured output file and returns their paths.
func (w *Writer) WriteAll(a *Analysis) ([]string, error) {
	if err := os.MkdirAll(w.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(w.cfg.OutputDir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write("production_summary.csv", func(out io.Writer) error {
		return w.writeTimelineCSV(out, a.Timeline)
	}); err != nil {
		return written, err
	}
	gapFiles := []struct {
		name    string
		reports []models.GapReport
	}{
		{"production_gaps_raw.csv", a.RawGaps},
		{"production_gaps.csv", a.DayGaps},
		{"shutin_periods.csv", a.Shutins},
	}
	for _, gf := range gapFiles {
		if err := write(gf.name, func(out io.Writer) error {
			return writeGapsCSV(out, gf.reports)
		}); err != nil {
			return written, err
		}
	}
	if err := write("production_gaps_summary.txt", func(out io.Writer) error {
		_, err := io.WriteString(out, w.Summary(a))
		return err
	}); err != nil {
		return written, err
	}
	if err := write("production_graph.svg", func(out io.Writer) error {
		_, err := io.WriteString(out, w.chart(a))
		return err
	}); err != nil {
		return written, err
	}
	if w.cfg.ZipSource && len(a.Sources) > 0 {
		if err := write("source.zip", func(out io.Writer) error {
			return zipSources(out, a.Sources)
		}); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Summary renders the plain-text gap summary: the three gap sections, the
// source file listing, and the disclaimer.
func (w *Writer) Summary(a *Analysis) string {
	var sb strings.Builder

	first, last := a.Timeline.FirstMonth(), a.Timeline.LastMonth()
	fmt.Fprintf(&sb, "Production from %s through %s...\n\n",
		utils.FormatMonth(first), utils.FormatMonth(last))

	threshold := w.cfg.ThresholdDays
	sb.WriteString(gaps.Format(a.RawGaps,
		"Gaps in production (raw):", threshold))
	sb.WriteString("\n\n")
	sb.WriteString(gaps.Format(a.DayGaps,
		"Gaps in production (with shut-ins counting as production):", threshold))
	shutinThreshold := w.cfg.ShutinThresholdDays
	if shutinThreshold == 0 {
		shutinThreshold = threshold
	}
	sb.WriteString("\n\n")
	sb.WriteString(gaps.Format(a.Shutins,
		"Periods of shut-in:", shutinThreshold))
	sb.WriteString("\n\n")

	sb.WriteString("Considering wells...\n")
	for _, src := range a.Sources {
		fmt.Fprintf(&sb, " -- %s\n", src.WellID)
		fmt.Fprintf(&sb, "      %d rows (%d skipped)    <%s>\n",
			src.RowsLoaded, src.RowsSkipped, src.Name)
	}

	sb.WriteString("\n\n")
	sb.WriteString(wrapText(disclaimer, 72))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Generated by hbpcheck, version %s\n", w.version)
	fmt.Fprintf(&sb, "Run ID: %s\n", w.runID)
	fmt.Fprintf(&sb, "Generated at: %s\n", w.now().UTC().Format(time.RFC3339))
	return sb.String()
}

// ConsoleGraph renders a terminal sparkline of total monthly oil volumes.
func ConsoleGraph(tl *models.Timeline) string {
	if tl == nil || len(tl.Rows) == 0 {
		return ""
	}
	data := make([]float64, len(tl.Rows))
	for i, row := range tl.Rows {
		data[i] = row.OilTotal
	}
	caption := fmt.Sprintf("Oil (BBL/month), %s through %s",
		utils.FormatMonth(tl.FirstMonth()), utils.FormatMonth(tl.LastMonth()))
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Caption(caption))
}

func (w *Writer) chart(a *Analysis) string {
	cfg := DefaultChartConfig()
	if w.cfg.ChartWidth > 0 {
		cfg.Width = w.cfg.ChartWidth
	}
	if w.cfg.ChartHeight > 0 {
		cfg.Height = w.cfg.ChartHeight
	}
	cfg.Title = fmt.Sprintf("Total Verified Production %s to %s",
		utils.FormatMonth(a.Timeline.FirstMonth()),
		utils.FormatMonth(a.Timeline.LastMonth()))
	intervals := make([]models.GapInterval, len(a.RawGaps))
	for i, r := range a.RawGaps {
		intervals[i] = r.GapInterval
	}
	return ProductionChart(a.Timeline, intervals, cfg)
}

// writeTimelineCSV dumps the normalized timeline with any annotation
// columns appended after the fixed columns.
func (w *Writer) writeTimelineCSV(out io.Writer, tl *models.Timeline) error {
	cw := csv.NewWriter(out)
	header := []string{
		"month", "oil_bbls", "gas_mcf",
		"wells_reporting", "wells_active", "wells_shutin",
		"days_produced_max", "days_not_produced_min",
	}
	for _, col := range tl.Annotations {
		header = append(header, col.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range tl.Rows {
		record := []string{
			utils.FormatMonth(row.Month),
			strconv.FormatFloat(row.OilTotal, 'f', -1, 64),
			strconv.FormatFloat(row.GasTotal, 'f', -1, 64),
			strconv.Itoa(row.RecordCount),
			strconv.Itoa(row.NumActive),
			strconv.Itoa(row.NumShutin),
			strconv.Itoa(row.DaysProducing),
			strconv.Itoa(row.DaysNotProducing),
		}
		for _, col := range tl.Annotations {
			record = append(record, strconv.Itoa(col.Values[i]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeGapsCSV(out io.Writer, reports []models.GapReport) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"start_date", "end_date", "total_days", "total_months"}); err != nil {
		return err
	}
	for _, r := range reports {
		record := []string{
			utils.FormatDate(r.Start),
			utils.FormatDate(r.End),
			strconv.Itoa(r.TotalDays),
			strconv.Itoa(r.TotalMonths),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// zipSources packages the original input files, each under its bare name.
func zipSources(out io.Writer, sources []models.SourceFile) error {
	zw := zip.NewWriter(out)
	for _, src := range sources {
		f, err := os.Open(src.Path)
		if err != nil {
			return err
		}
		entry, err := zw.Create(src.Name)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
	return zw.Close()
}

// wrapText rewraps a paragraph to the given line width.
func wrapText(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				sb.WriteByte('\n')
				lineLen = 0
			} else {
				sb.WriteByte(' ')
				lineLen++
			}
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
