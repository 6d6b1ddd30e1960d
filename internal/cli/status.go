package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/vinhng/gatewatch/internal/core/config"
	"github.com/vinhng/gatewatch/internal/monitor"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resource report of a running gateway",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var report monitor.Report
	resp, err := resty.New().R().
		SetResult(&report).
		Get(fmt.Sprintf("http://localhost:%d/status", cfg.Server.Port))
	if err != nil {
		slog.Error("Failed to reach gateway", "error", err)
		os.Exit(1)
	}
	if resp.IsError() {
		slog.Error("Gateway returned an error", "status", resp.StatusCode(), "body", resp.String())
		os.Exit(1)
	}

	if report.Status == monitor.ReportStatusNoData {
		fmt.Println("No samples yet.")
		return
	}

	s := report.Summary
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "METRIC\tLATEST\tAVERAGE\tTREND")
	_, _ = fmt.Fprintf(w, "active connections\t%d\t%.1f\t%+d\n",
		s.Latest.Connections.ActiveConnections, s.Averages.ActiveConnections, s.Trend.ActiveConnections)
	_, _ = fmt.Fprintf(w, "inactive connections\t%d\t%.1f\t-\n",
		s.Latest.Connections.InactiveConnections, s.Averages.InactiveConnections)
	_, _ = fmt.Fprintf(w, "processing jobs\t%d\t%.1f\t%+d\n",
		s.Latest.Connections.ProcessingJobs, s.Averages.ProcessingJobs, s.Trend.ProcessingJobs)
	_, _ = fmt.Fprintf(w, "heap used (MB)\t%.1f\t%.1f\t%+.1f\n",
		float64(s.Latest.Memory.HeapUsed)/(1<<20), s.Averages.HeapUsed/(1<<20), float64(s.Trend.HeapUsedBytes)/(1<<20))
	_ = w.Flush()

	fmt.Printf("\n%d snapshots over %s\n", s.SnapshotCount, s.MonitoringDuration.Round(0))
}
