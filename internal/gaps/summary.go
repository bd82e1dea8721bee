package gaps

import (
	"fmt"
	"strings"

	"github.com/hbpcheck/hbpcheck/pkg/models"
	"github.com/hbpcheck/hbpcheck/pkg/utils"
)

// Summarize converts gap intervals into reports carrying inclusive day and
// month totals. Empty input yields an empty (non-nil) report list.
func Summarize(intervals []models.GapInterval) []models.GapReport {
	reports := make([]models.GapReport, 0, len(intervals))
	for _, iv := range intervals {
		reports = append(reports, models.GapReport{
			GapInterval: iv,
			TotalDays:   utils.DaysBetween(iv.Start, iv.End),
			TotalMonths: utils.MonthsBetween(iv.Start, iv.End),
		})
	}
	return reports
}

// Format renders gap reports as fixed-width text under the given header,
// limited to gaps of at least thresholdDays. When no gap survives the
// threshold a single placeholder line is emitted instead.
func Format(reports []models.GapReport, header string, thresholdDays int) string {
	var lines []string
	for _, r := range reports {
		if r.TotalDays < thresholdDays {
			continue
		}
		left := fmt.Sprintf(" -- %d days (%d months)", r.TotalDays, r.TotalMonths)
		if pad := 26 - len(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		lines = append(lines, fmt.Sprintf("%s::  %s -- %s",
			left, utils.FormatDate(r.Start), utils.FormatDate(r.End)))
	}
	if len(lines) == 0 {
		lines = []string{" -- None that meet the threshold."}
	}
	return fmt.Sprintf("%s\n[[at least %d days in length]]\n%s",
		header, thresholdDays, strings.Join(lines, "\n"))
}
