// Package report renders the analysis outputs for hbpcheck: the fixed-width
// text summary, CSV exports of the timeline and gap tables, an SVG
// production chart with gap shading, and an optional zip of the source CSVs.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator — Pure Go, Zero Dependencies
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 1200)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 70)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	GapColor     string // gap span fill color (default: "#ef5350")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        1200,
		Height:       400,
		MarginTop:    40,
		MarginRight:  70,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		GapColor:     "#ef5350",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ════════════════════════════════════════════════════════════════════
// Production Chart
// ════════════════════════════════════════════════════════════════════

// ProductionChart generates an SVG chart of monthly oil and gas volumes
// with detected gap intervals shaded behind the series. Oil plots against
// the left axis, gas against the right, since MCF volumes usually dwarf
// BBLs on the same scale.
func ProductionChart(tl *models.Timeline, gaps []models.GapInterval, cfg ChartConfig) string {
	if tl == nil || len(tl.Rows) == 0 {
		return emptySVG(cfg, "No production data")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.GapColor == "" {
		cfg.GapColor = "#ef5350"
	}
	if cfg.Title == "" {
		cfg.Title = "Monthly Production"
	}

	px, py, pw, ph := cfg.plotArea()
	n := len(tl.Rows)

	maxOil, maxGas := 0.0, 0.0
	for _, row := range tl.Rows {
		if row.OilTotal > maxOil {
			maxOil = row.OilTotal
		}
		if row.GasTotal > maxGas {
			maxGas = row.GasTotal
		}
	}
	if maxOil < 0.001 {
		maxOil = 1
	}
	if maxGas < 0.001 {
		maxGas = 1
	}
	maxOil *= 1.05
	maxGas *= 1.05

	// Helper: month index to X coordinate. A single-row timeline pins to
	// the left edge.
	monthToX := func(i int) float64 {
		if n == 1 {
			return float64(px)
		}
		return float64(px) + float64(i)*float64(pw)/float64(n-1)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Gap spans go behind everything else.
	first := tl.FirstMonth()
	for _, gap := range gaps {
		startIdx := utils.MonthsBetween(first, utils.FirstOfMonth(gap.Start)) - 1
		endIdx := utils.MonthsBetween(first, utils.FirstOfMonth(gap.End)) - 1
		if endIdx < 0 || startIdx >= n {
			continue
		}
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx >= n {
			endIdx = n - 1
		}
		x1 := monthToX(startIdx)
		x2 := monthToX(endIdx)
		if x2 <= x1 {
			x2 = x1 + 2
		}
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%d" width="%.1f" height="%d" fill="%s" opacity="0.15"/>`,
			x1, py, x2-x1, ph, cfg.GapColor))
	}

	// Y-axis grid lines with oil labels left, gas labels right.
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.0f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, maxOil*float64(i)/float64(gridLines)))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s">%.0f</text>`,
			px+pw+5, y+4, cfg.FontSize, cfg.TextColor, maxGas*float64(i)/float64(gridLines)))
	}

	// Series lines.
	series := []struct {
		name   string
		color  string
		value  func(models.TimelineRow) float64
		maxVal float64
	}{
		{"Oil (BBL)", "#2e7d32", func(r models.TimelineRow) float64 { return r.OilTotal }, maxOil},
		{"Gas (MCF)", "#ff9800", func(r models.TimelineRow) float64 { return r.GasTotal }, maxGas},
	}
	for si, s := range series {
		var pathParts []string
		for i, row := range tl.Rows {
			v := s.value(row)
			if math.IsNaN(v) {
				continue
			}
			cy := float64(py+ph) - (v/s.maxVal)*float64(ph)
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, monthToX(i), cy))
		}
		if len(pathParts) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), s.color))
		}

		// Legend
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, s.color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.name)))
	}

	// X-axis month labels
	labelInterval := n / 8
	if labelInterval < 1 {
		labelInterval = 1
	}
	for i := 0; i < n; i += labelInterval {
		label := utils.FormatMonth(tl.Rows[i].Month)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-45,%.1f,%d)">%s</text>`,
			monthToX(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, monthToX(i), py+ph+18, label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
