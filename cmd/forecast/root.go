package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/infra/chart"
	"github.com/yanqian/twin-dashboard/internal/infra/spreadsheet"
)

type forecastOptions struct {
	mode       string
	metric     string
	start      int
	volatility float64
	trend      float64
	behavior   string
	seed       uint64
	chartPath  string
	xlsxPath   string
	insights   bool
	pretty     bool
}

type forecastOutput struct {
	Mode     prediction.Mode                               `json:"mode"`
	Series   map[prediction.Metric]prediction.Series       `json:"series"`
	Trends   map[prediction.Metric]prediction.TrendSummary `json:"trends"`
	Insights []prediction.Insight                          `json:"insights,omitempty"`
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &forecastOptions{}
	rootCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Generate synthetic digital twin forecasts",
		Long: `forecast runs the dashboard's random-walk generator offline and prints
the series (and the insights derived from them) as JSON.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForecast(cmd, opts, out)
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.Flags()
	flags.StringVar(&opts.mode, "mode", "tomorrow", "Forecast horizon: tomorrow or 7days")
	flags.StringVar(&opts.metric, "metric", "all", "Metric to generate: health, energy, cognitive, stress or all")
	flags.IntVar(&opts.start, "start", 0, "Starting score (default: the dashboard default for the metric)")
	flags.Float64Var(&opts.volatility, "volatility", 0, "Walk volatility (default: per-metric)")
	flags.Float64Var(&opts.trend, "trend", 0, "Walk trend (default: derived from --behavior)")
	flags.StringVar(&opts.behavior, "behavior", "stable", "Behavior label applied to every metric: improving, declining or stable")
	flags.Uint64Var(&opts.seed, "seed", 0, "Random seed for reproducible output (0 = random)")
	flags.StringVar(&opts.chartPath, "chart", "", "Write a PNG chart of a single --metric to this path")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "Also write the series, trends and insights as an .xlsx workbook")
	flags.BoolVar(&opts.insights, "insights", true, "Include derived insights")
	flags.BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(newSampleCmd(out))
	return rootCmd
}

func runForecast(cmd *cobra.Command, opts *forecastOptions, out io.Writer) error {
	mode, ok := prediction.ParseMode(opts.mode)
	if !ok {
		return fmt.Errorf("invalid mode: %s (must be tomorrow or 7days)", opts.mode)
	}
	label, ok := prediction.ParseBehaviorLabel(opts.behavior)
	if !ok {
		return fmt.Errorf("invalid behavior: %s (must be improving, declining or stable)", opts.behavior)
	}
	metrics := prediction.Metrics
	if opts.metric != "all" {
		metric, ok := prediction.ParseMetric(opts.metric)
		if !ok {
			return fmt.Errorf("invalid metric: %s", opts.metric)
		}
		metrics = []prediction.Metric{metric}
	}
	if opts.chartPath != "" && len(metrics) != 1 {
		return fmt.Errorf("--chart needs a single --metric")
	}
	if cmd.Flags().Changed("start") && (opts.start < 0 || opts.start > 100) {
		return fmt.Errorf("--start must be between 0 and 100")
	}

	genOpts := []prediction.Option{}
	if opts.seed != 0 {
		genOpts = append(genOpts, prediction.WithSource(prediction.NewSeededSource(opts.seed)))
	}
	gen := prediction.NewGenerator(genOpts...)

	defaults := prediction.DefaultScores()
	result := forecastOutput{
		Mode:   mode,
		Series: make(map[prediction.Metric]prediction.Series, len(metrics)),
		Trends: make(map[prediction.Metric]prediction.TrendSummary, len(metrics)),
	}
	for _, metric := range metrics {
		params := prediction.ParamsFor(metric, label)
		start := float64(defaults.Value(metric))
		if cmd.Flags().Changed("start") {
			start = float64(opts.start)
		}
		if cmd.Flags().Changed("volatility") {
			params.Volatility = opts.volatility
		}
		if cmd.Flags().Changed("trend") {
			params.Trend = opts.trend
		}
		series := gen.GenerateSeries(start, params.Volatility, params.Trend, mode)
		result.Series[metric] = series
		result.Trends[metric] = prediction.Trend(metric, series)
	}
	if opts.insights {
		result.Insights = gen.DeriveInsights(result.Series, mode)
	}

	if opts.chartPath != "" {
		metric := metrics[0]
		img, err := chart.NewRenderer().Render(fmt.Sprintf("%s forecast", metric), metric, mode, result.Series[metric])
		if err != nil {
			return fmt.Errorf("chart rendering failed: %w", err)
		}
		if err := os.WriteFile(opts.chartPath, img, 0o644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		if err := writeWorkbook(opts.xlsxPath, result); err != nil {
			return err
		}
	}
	return writeJSON(out, result, opts.pretty)
}

func writeWorkbook(path string, result forecastOutput) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	err = spreadsheet.WriteForecast(file, prediction.Forecast{
		Mode:     result.Mode,
		Series:   result.Series,
		Trends:   result.Trends,
		Insights: result.Insights,
	})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func newSampleCmd(out io.Writer) *cobra.Command {
	var (
		deviceID string
		seed     uint64
		pretty   bool
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a synthetic health upload payload",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var rng healthdata.RandomSource
			if seed != 0 {
				rng = prediction.NewSeededSource(seed)
			}
			return writeJSON(out, healthdata.GenerateSample(deviceID, rng, time.Now()), pretty)
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", healthdata.DefaultDeviceID, "Device identifier")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 = random)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func writeJSON(out io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return nil
}
