package export

import (
	"fmt"
	"io"

	"loadgen/internal/result"
)

// WriteConsoleSummary prints the free-form Stopped summary spec §6.3
// requires at minimum: duration, request counts, success rate, average
// TPS, p95 response time, max CPU%, max memory.
func WriteConsoleSummary(w io.Writer, snap result.Snapshot) {
	fmt.Fprintf(w, "Load test %q complete\n", snap.Name)
	fmt.Fprintf(w, "  duration:        %.2fs\n", float64(snap.DurationMs)/1000.0)
	fmt.Fprintf(w, "  total requests:  %d\n", snap.TotalRequests)
	fmt.Fprintf(w, "  success:         %d\n", snap.SuccessCount)
	fmt.Fprintf(w, "  failure:         %d\n", snap.FailureCount)
	fmt.Fprintf(w, "  success rate:    %.4f\n", snap.SuccessRate)
	fmt.Fprintf(w, "  average tps:     %.2f\n", snap.AverageTps)
	fmt.Fprintf(w, "  p95 latency:     %.0fms\n", snap.ResponseTime.P95)
	fmt.Fprintf(w, "  max cpu:         %.2f%%\n", snap.MaxCpuPct)
	fmt.Fprintf(w, "  max memory:      %.2fMB\n", float64(snap.MaxTotalMemUsed)/(1024*1024))
}
