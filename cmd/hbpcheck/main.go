// hbpcheck — held-by-production checker for monthly well production records.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hbpcheck/hbpcheck/internal/config"
	"github.com/hbpcheck/hbpcheck/internal/gaps"
	"github.com/hbpcheck/hbpcheck/internal/loader"
	"github.com/hbpcheck/hbpcheck/internal/report"
	"github.com/hbpcheck/hbpcheck/internal/timeline"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hbpcheck",
	Short: "hbpcheck — find gaps in monthly well production records",
	Long: `hbpcheck (held-by-production checker)
Reads monthly production CSV exports for one or more wells, normalizes
them onto a single gap-free monthly timeline, and reports every period
of ceased production and shut-in, with text, CSV and SVG chart outputs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Optional .env for local overrides, missing file is fine.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hbpcheck %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Check Command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Analyze production CSVs and report gaps",
	Long: `Load every per-well CSV in the input directory, build the combined
monthly timeline, and write the gap summary, CSV tables and production
chart to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.Input.Dir = dir
		}
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.Report.OutputDir = out
		}
		if days, _ := cmd.Flags().GetInt("min-gap-days"); days > 0 {
			cfg.Report.ThresholdDays = days
		}
		if days, _ := cmd.Flags().GetInt("min-shutin-days"); days > 0 {
			cfg.Report.ShutinThresholdDays = days
		}
		if zip, _ := cmd.Flags().GetBool("zip"); zip {
			cfg.Report.ZipSource = true
		}
		if noCredit, _ := cmd.Flags().GetBool("no-shutin-credit"); noCredit {
			cfg.Analysis.ShutinAsProducing = false
		}

		fmt.Printf("🔍 Checking production in %s\n", cfg.Input.Dir)

		res, err := loader.New(cfg.Input).LoadDir(cmd.Context())
		if err != nil {
			return err
		}
		for _, src := range res.Sources {
			fmt.Printf("   %-14s %s (%d rows, %d skipped)\n",
				src.WellID, src.Name, src.RowsLoaded, src.RowsSkipped)
		}

		analysis, err := analyze(res)
		if err != nil {
			return err
		}

		w := report.NewWriter(cfg.Report, version)
		written, err := w.WriteAll(analysis)
		if err != nil {
			return err
		}

		if cfg.Report.ConsoleGraph {
			fmt.Println()
			fmt.Println(report.ConsoleGraph(analysis.Timeline))
		}

		fmt.Println()
		fmt.Printf("✅ Run %s complete, %d gap(s) found\n", w.RunID(), len(analysis.DayGaps))
		for _, path := range written {
			fmt.Printf("   wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("dir", "", "input directory of production CSVs")
	checkCmd.Flags().String("out", "", "output directory for reports")
	checkCmd.Flags().Int("min-gap-days", 0, "only report production gaps of at least this many days")
	checkCmd.Flags().Int("min-shutin-days", 0, "only report shut-in periods of at least this many days")
	checkCmd.Flags().Bool("zip", false, "add source CSVs to a zip in the output directory")
	checkCmd.Flags().Bool("no-shutin-credit", false, "do not count shut-in months as production")
}

// analyze runs the three detection passes over one load result and bundles
// their output for the report writer. The annotation columns of all passes
// end up on a single timeline copy.
func analyze(res *loader.Result) (*report.Analysis, error) {
	tl, err := timeline.Build(res.Records, cfg.DetectorConfig())
	if err != nil {
		return nil, err
	}
	d, err := gaps.NewDetector(tl)
	if err != nil {
		return nil, err
	}

	raw := d.ByProductionThreshold(gaps.Options{
		ShutinAsProducing: false,
		DaysColumn:        "days_nonprod_raw",
		MonthsColumn:      "months_nonprod_raw",
	})

	// The second pass normally gives shut-in months production credit. It
	// uses the reported producing-day counts when the days column is
	// configured.
	dayOpts := gaps.Options{
		ShutinAsProducing: cfg.Analysis.ShutinAsProducing,
		DaysColumn:        "days_nonprod",
		MonthsColumn:      "months_nonprod",
	}
	var days *gaps.Result
	if cfg.Analysis.UseDays {
		days, err = d.ByProducingDays(dayOpts)
		if err != nil {
			return nil, err
		}
	} else {
		days = d.ByProductionThreshold(dayOpts)
	}

	shutins := d.ShutinPeriods(gaps.Options{
		DaysColumn:   "days_shutin",
		MonthsColumn: "months_shutin",
	})

	cols := append(raw.Timeline.Annotations, days.Timeline.Annotations...)
	cols = append(cols, shutins.Timeline.Annotations...)

	return &report.Analysis{
		Timeline: tl.WithAnnotations(cols...),
		RawGaps:  gaps.Summarize(raw.Intervals),
		DayGaps:  gaps.Summarize(days.Intervals),
		Shutins:  gaps.Summarize(shutins.Intervals),
		Sources:  res.Sources,
	}, nil
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  hbpcheck — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Settings:")
		for _, s := range config.CheckSettings(cfg) {
			fmt.Printf("    %-22s %-20s (%s)\n", s.Name+":", s.Value, s.Source)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
