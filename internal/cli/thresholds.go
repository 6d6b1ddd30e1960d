package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/vinhng/gatewatch/internal/core/config"
	"github.com/vinhng/gatewatch/internal/monitor"
)

var setThresholdsCmd = &cobra.Command{
	Use:   "set-thresholds [name=value]...",
	Short: "Update alert thresholds on a running gateway",
	Long: `Update one or more alert thresholds without restarting. Names:
max_connections, max_processing_jobs, max_heap_growth_percent, max_inactive_ratio.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSetThresholds,
}

var clearHistoryCmd = &cobra.Command{
	Use:   "clear-history",
	Short: "Clear the monitor's sample history on a running gateway",
	Run:   runClearHistory,
}

func init() {
	rootCmd.AddCommand(setThresholdsCmd)
	rootCmd.AddCommand(clearHistoryCmd)
}

func runSetThresholds(cmd *cobra.Command, args []string) {
	patch, err := parsePatch(args)
	if err != nil {
		fmt.Printf("Invalid threshold: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var merged monitor.Thresholds
	resp, err := resty.New().R().
		SetBody(patch).
		SetResult(&merged).
		Put(fmt.Sprintf("http://localhost:%d/status/thresholds", cfg.Server.Port))
	if err != nil {
		slog.Error("Failed to reach gateway", "error", err)
		os.Exit(1)
	}
	if resp.IsError() {
		slog.Error("Gateway returned an error", "status", resp.StatusCode(), "body", resp.String())
		os.Exit(1)
	}

	fmt.Printf("Thresholds now: connections=%d jobs=%d heap_growth=%.0f%% inactive_ratio=%.2f\n",
		merged.MaxConnections, merged.MaxProcessingJobs, merged.MaxHeapGrowthPercent, merged.MaxInactiveRatio)
}

func runClearHistory(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	resp, err := resty.New().R().
		Delete(fmt.Sprintf("http://localhost:%d/status/history", cfg.Server.Port))
	if err != nil {
		slog.Error("Failed to reach gateway", "error", err)
		os.Exit(1)
	}
	if resp.IsError() {
		slog.Error("Gateway returned an error", "status", resp.StatusCode(), "body", resp.String())
		os.Exit(1)
	}

	fmt.Println("Sample history cleared.")
}

func parsePatch(args []string) (monitor.ThresholdPatch, error) {
	var patch monitor.ThresholdPatch
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return patch, fmt.Errorf("expected name=value, got %q", arg)
		}

		switch name {
		case "max_connections":
			n, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("%s: %w", name, err)
			}
			patch.MaxConnections = &n
		case "max_processing_jobs":
			n, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("%s: %w", name, err)
			}
			patch.MaxProcessingJobs = &n
		case "max_heap_growth_percent":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return patch, fmt.Errorf("%s: %w", name, err)
			}
			patch.MaxHeapGrowthPercent = &f
		case "max_inactive_ratio":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return patch, fmt.Errorf("%s: %w", name, err)
			}
			patch.MaxInactiveRatio = &f
		default:
			return patch, fmt.Errorf("unknown threshold %q", name)
		}
	}
	return patch, nil
}
