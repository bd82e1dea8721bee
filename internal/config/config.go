package config

// Package config handles configuration loading for hbpcheck.
// It supports YAML config files with environment variable overrides.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hbpcheck/hbpcheck/pkg/models"
)

// Config represents the complete application configuration.
type Config struct {
	Input    InputConfig    `mapstructure:"input"    yaml:"input"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// InputConfig describes where the monthly production CSVs live and how
// their columns are named.
type InputConfig struct {
	Dir          string `mapstructure:"dir"           yaml:"dir"`
	DateColumn   string `mapstructure:"date_column"   yaml:"date_column"`
	OilColumn    string `mapstructure:"oil_column"    yaml:"oil_column"`
	GasColumn    string `mapstructure:"gas_column"    yaml:"gas_column"`
	DaysColumn   string `mapstructure:"days_column"   yaml:"days_column"`
	StatusColumn string `mapstructure:"status_column" yaml:"status_column"`
	APIPrefix    string `mapstructure:"api_prefix"    yaml:"api_prefix"` // e.g. "05-" for Colorado
}

// AnalysisConfig holds gap-detection settings.
type AnalysisConfig struct {
	UseOil            bool     `mapstructure:"use_oil"             yaml:"use_oil"`
	UseGas            bool     `mapstructure:"use_gas"             yaml:"use_gas"`
	UseDays           bool     `mapstructure:"use_days"            yaml:"use_days"`
	UseStatus         bool     `mapstructure:"use_status"          yaml:"use_status"`
	OilMin            float64  `mapstructure:"oil_min"             yaml:"oil_min"` // BBLs per month
	GasMin            float64  `mapstructure:"gas_min"             yaml:"gas_min"` // MCF per month
	ShutinCodes       []string `mapstructure:"shutin_codes"        yaml:"shutin_codes"`
	ShutinAsProducing bool     `mapstructure:"shutin_as_producing" yaml:"shutin_as_producing"`
}

// ReportConfig holds output settings. ThresholdDays filters the production
// gap sections of the summary; ShutinThresholdDays filters the shut-in
// section separately.
type ReportConfig struct {
	OutputDir           string `mapstructure:"output_dir"            yaml:"output_dir"`
	ThresholdDays       int    `mapstructure:"threshold_days"        yaml:"threshold_days"`
	ShutinThresholdDays int    `mapstructure:"shutin_threshold_days" yaml:"shutin_threshold_days"`
	ChartWidth    int    `mapstructure:"chart_width"    yaml:"chart_width"`
	ChartHeight   int    `mapstructure:"chart_height"   yaml:"chart_height"`
	ConsoleGraph  bool   `mapstructure:"console_graph"  yaml:"console_graph"`
	ZipSource     bool   `mapstructure:"zip_source"     yaml:"zip_source"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// DetectorConfig maps the analysis section onto the column configuration
// the timeline builder and detector consume.
func (c *Config) DetectorConfig() models.AnalysisConfig {
	return models.AnalysisConfig{
		UseOil:      c.Analysis.UseOil,
		UseGas:      c.Analysis.UseGas,
		UseDays:     c.Analysis.UseDays,
		UseStatus:   c.Analysis.UseStatus,
		OilMin:      c.Analysis.OilMin,
		GasMin:      c.Analysis.GasMin,
		ShutinCodes: c.Analysis.ShutinCodes,
	}
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.hbpcheck/config.yaml (home directory)
//  3. /etc/hbpcheck/config.yaml (system)
//
// Environment variables override config file values.
// Format: HBPCHECK_<SECTION>_<KEY>, e.g., HBPCHECK_INPUT_DIR
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".hbpcheck"))
	v.AddConfigPath("/etc/hbpcheck")

	v.SetEnvPrefix("HBPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("HBPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Input defaults match the Colorado ECMC production export format.
	v.SetDefault("input.dir", ".")
	v.SetDefault("input.date_column", "FirstOfMonth")
	v.SetDefault("input.oil_column", "OilProduced")
	v.SetDefault("input.gas_column", "GasProduced")
	v.SetDefault("input.days_column", "DaysProduced")
	v.SetDefault("input.status_column", "WellStatus")
	v.SetDefault("input.api_prefix", "05-")

	// Analysis defaults
	v.SetDefault("analysis.use_oil", true)
	v.SetDefault("analysis.use_gas", true)
	v.SetDefault("analysis.use_days", true)
	v.SetDefault("analysis.use_status", true)
	v.SetDefault("analysis.oil_min", 0.0)
	v.SetDefault("analysis.gas_min", 0.0)
	v.SetDefault("analysis.shutin_codes", []string{"SI"})
	v.SetDefault("analysis.shutin_as_producing", true)

	// Report defaults
	v.SetDefault("report.output_dir", "CHECK_PRODUCTION")
	v.SetDefault("report.threshold_days", 365)
	v.SetDefault("report.shutin_threshold_days", 365)
	v.SetDefault("report.chart_width", 1200)
	v.SetDefault("report.chart_height", 400)
	v.SetDefault("report.console_graph", true)
	v.SetDefault("report.zip_source", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads path settings from environment variables.
func overrideFromEnv(cfg *Config) {
	if dir := os.Getenv("HBPCHECK_INPUT_DIR"); dir != "" {
		cfg.Input.Dir = dir
	}
	if dir := os.Getenv("HBPCHECK_REPORT_OUTPUT_DIR"); dir != "" {
		cfg.Report.OutputDir = dir
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
