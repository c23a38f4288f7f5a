// Package export writes the end-of-test result Snapshot to CSV and console,
// per the external-interfaces contract (§6.3): a read-only view of the
// metrics snapshot, never mutating it.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loadgen/internal/result"
)

var numberPrinter = message.NewPrinter(language.AmericanEnglish)

// PrimaryCSVPath builds the `<name>_<yyyyMMdd_HHmmss>.csv` output path
// inside dir for snap, per spec §6.3.
func PrimaryCSVPath(dir string, snap result.Snapshot) string {
	stamp := snap.StartTime.Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", snap.Name, stamp))
}

// WritePrimaryCSV writes the two-column (Metric, Value) primary report.
func WritePrimaryCSV(path string, snap result.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exporterIOError: creating %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := [][]string{
		{"Metric", "Value"},
		{"Start Time", snap.StartTime.Format(time.RFC3339)},
		{"End Time", snap.EndTime.Format(time.RFC3339)},
		{"Duration (ms)", fmt.Sprintf("%d", snap.DurationMs)},
		{"Duration (s)", numberPrinter.Sprintf("%.2f", float64(snap.DurationMs)/1000.0)},
		{"Total Requests", fmt.Sprintf("%d", snap.TotalRequests)},
		{"Success Count", fmt.Sprintf("%d", snap.SuccessCount)},
		{"Failure Count", fmt.Sprintf("%d", snap.FailureCount)},
		{"Timeout Count", fmt.Sprintf("%d", snap.TimeoutCount)},
		{"Skipped Count", fmt.Sprintf("%d", snap.SkippedCount)},
		{"Success Rate", numberPrinter.Sprintf("%.4f", snap.SuccessRate)},
		{"Average TPS", numberPrinter.Sprintf("%.2f", snap.AverageTps)},
		{"Max TPS", numberPrinter.Sprintf("%.2f", snap.MaxTps)},
		{"Min Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.Min)},
		{"Median Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.Median)},
		{"P90 Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.P90)},
		{"P95 Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.P95)},
		{"P99 Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.P99)},
		{"Max Response Time (ms)", fmt.Sprintf("%.0f", snap.ResponseTime.Max)},
		{"Min Rate Limiter Wait (ms)", fmt.Sprintf("%.0f", snap.RateLimiterWait.Min)},
		{"Median Rate Limiter Wait (ms)", fmt.Sprintf("%.0f", snap.RateLimiterWait.Median)},
		{"P90 Rate Limiter Wait (ms)", fmt.Sprintf("%.0f", snap.RateLimiterWait.P90)},
		{"P99 Rate Limiter Wait (ms)", fmt.Sprintf("%.0f", snap.RateLimiterWait.P99)},
		{"Max Rate Limiter Wait (ms)", fmt.Sprintf("%.0f", snap.RateLimiterWait.Max)},
	}

	codes := make([]int, 0, len(snap.StatusCodeCounts))
	for code := range snap.StatusCodeCounts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		rows = append(rows, []string{fmt.Sprintf("Status Code %d", code), fmt.Sprintf("%d", snap.StatusCodeCounts[code])})
	}

	rows = append(rows,
		[]string{"Max CPU (%)", numberPrinter.Sprintf("%.2f", snap.MaxCpuPct)},
		[]string{"Max Memory Used (MB)", numberPrinter.Sprintf("%.2f", float64(snap.MaxTotalMemUsed)/(1024*1024))},
	)

	return w.WriteAll(rows)
}

// WriteTpsSamplesCSV writes `tps_samples.csv`.
func WriteTpsSamplesCSV(path string, snap result.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exporterIOError: creating %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := [][]string{{"Timestamp", "Elapsed (ms)", "TPS"}}
	for _, s := range snap.TpsSamples {
		elapsed := s.TimestampMs - snap.StartTime.UnixMilli()
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.TimestampMs),
			fmt.Sprintf("%d", elapsed),
			numberPrinter.Sprintf("%.2f", s.Tps),
		})
	}
	return w.WriteAll(rows)
}

// WriteResourceSnapshotsCSV writes `resource_snapshots.csv`.
func WriteResourceSnapshotsCSV(path string, snap result.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exporterIOError: creating %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	rows := [][]string{{
		"Timestamp", "Elapsed (ms)", "CPU (%)", "Heap Used (MB)", "Heap Committed (MB)",
		"Non-Heap Used (MB)", "Total Memory (MB)", "Free Memory (MB)",
		"Active Threads", "Total Threads", "Daemon Threads",
	}}
	const mb = 1024 * 1024
	for _, s := range snap.ResourceSnapshots {
		elapsed := s.TimestampMs - snap.StartTime.UnixMilli()
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.TimestampMs),
			fmt.Sprintf("%d", elapsed),
			numberPrinter.Sprintf("%.2f", s.CpuPct),
			numberPrinter.Sprintf("%.2f", float64(s.HeapUsedBytes)/mb),
			numberPrinter.Sprintf("%.2f", float64(s.HeapCommittedBytes)/mb),
			numberPrinter.Sprintf("%.2f", float64(s.NonHeapUsedBytes)/mb),
			numberPrinter.Sprintf("%.2f", float64(s.TotalMemBytes)/mb),
			numberPrinter.Sprintf("%.2f", float64(s.FreeMemBytes)/mb),
			fmt.Sprintf("%d", s.ActiveThreads),
			fmt.Sprintf("%d", s.TotalThreads),
			fmt.Sprintf("%d", s.DaemonThreads),
		})
	}
	return w.WriteAll(rows)
}
