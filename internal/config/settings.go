package config

import (
	"fmt"
	"os"
	"strings"
)

// SettingSource represents where an effective setting value comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus reports one effective setting for the status command.
type SettingStatus struct {
	Name   string        `json:"name"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// CheckSettings returns the effective values of the settings most likely to
// explain surprising results: where input is read from, where reports go,
// and which columns drive the analysis.
func CheckSettings(cfg *Config) []SettingStatus {
	return []SettingStatus{
		checkSetting("Input directory", cfg.Input.Dir, ".", "HBPCHECK_INPUT_DIR"),
		checkSetting("Output directory", cfg.Report.OutputDir, "CHECK_PRODUCTION", "HBPCHECK_REPORT_OUTPUT_DIR"),
		checkSetting("Date column", cfg.Input.DateColumn, "FirstOfMonth", "HBPCHECK_INPUT_DATE_COLUMN"),
		checkSetting("Oil column", cfg.Input.OilColumn, "OilProduced", "HBPCHECK_INPUT_OIL_COLUMN"),
		checkSetting("Gas column", cfg.Input.GasColumn, "GasProduced", "HBPCHECK_INPUT_GAS_COLUMN"),
		checkSetting("Days column", cfg.Input.DaysColumn, "DaysProduced", "HBPCHECK_INPUT_DAYS_COLUMN"),
		checkSetting("Status column", cfg.Input.StatusColumn, "WellStatus", "HBPCHECK_INPUT_STATUS_COLUMN"),
		checkSetting("Shut-in codes", strings.Join(cfg.Analysis.ShutinCodes, ","), "SI", "HBPCHECK_ANALYSIS_SHUTIN_CODES"),
		checkSetting("Gap threshold (days)", fmt.Sprintf("%d", cfg.Report.ThresholdDays), "365", "HBPCHECK_REPORT_THRESHOLD_DAYS"),
	}
}

// checkSetting decides where a value came from: the env var wins, a value
// differing from the default came from a config file, and everything else
// is the built-in default.
func checkSetting(name, value, def, envVar string) SettingStatus {
	status := SettingStatus{Name: name, Value: value}
	switch {
	case os.Getenv(envVar) != "":
		status.Source = SourceEnv
	case value != def:
		status.Source = SourceConfig
	default:
		status.Source = SourceDefault
	}
	return status
}
