package metrics

import (
	"context"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// maxResourceSnapshots bounds the retained snapshot list at spec §3's
// default of 7200.
const maxResourceSnapshots = 7200

// ResourceSnapshot is one periodic sample of process resource usage.
type ResourceSnapshot struct {
	TimestampMs      int64
	CpuPct           float64
	HeapUsedBytes    uint64
	HeapCommittedBytes uint64
	NonHeapUsedBytes uint64
	TotalMemBytes    uint64
	FreeMemBytes     uint64
	ActiveThreads    int
	TotalThreads     int
	DaemonThreads    int
}

// ResourceMonitor runs a single daemon goroutine that samples CPU%, memory,
// and goroutine/thread counts on a fixed interval, grounded on the
// teacher's gopsutil-backed middleware sampler.
type ResourceMonitor struct {
	proc     *process.Process
	interval time.Duration
	logger   *zap.Logger

	mu           sync.Mutex
	snapshots    []ResourceSnapshot
	maxCpuPct    float64
	maxTotalMem  uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewResourceMonitor builds a monitor sampling the current process at the
// given interval (default 1s if non-positive).
func NewResourceMonitor(interval time.Duration, logger *zap.Logger) (*ResourceMonitor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ResourceMonitor{proc: proc, interval: interval, logger: logger}, nil
}

// Start begins periodic sampling in a background goroutine; Stop halts it.
func (m *ResourceMonitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleOnce()
			}
		}
	}()
}

// Stop halts the sampling goroutine and blocks until it exits.
func (m *ResourceMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *ResourceMonitor) sampleOnce() {
	cpuPct := 0.0
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	if cpuPct < 0 || math.IsNaN(cpuPct) {
		cpuPct = 0
	}

	var memInfo *process.MemoryInfoStat
	if m.proc != nil {
		memInfo, _ = m.proc.MemoryInfo()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	numGoroutine := runtime.NumGoroutine()

	snap := ResourceSnapshot{
		TimestampMs:      time.Now().UnixMilli(),
		CpuPct:           cpuPct,
		HeapUsedBytes:    memStats.HeapAlloc,
		HeapCommittedBytes: memStats.HeapSys,
		NonHeapUsedBytes: memStats.StackSys + memStats.MSpanSys + memStats.MCacheSys,
		ActiveThreads:    numGoroutine,
		TotalThreads:     numGoroutine,
		DaemonThreads:    0,
	}
	if memInfo != nil {
		snap.TotalMemBytes = memInfo.RSS
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.CpuPct > m.maxCpuPct {
		m.maxCpuPct = snap.CpuPct
	}
	if snap.TotalMemBytes > m.maxTotalMem {
		m.maxTotalMem = snap.TotalMemBytes
	}
	m.snapshots = append(m.snapshots, snap)
	if len(m.snapshots) > maxResourceSnapshots {
		m.snapshots = m.snapshots[len(m.snapshots)-maxResourceSnapshots:]
	}
}

// Snapshots returns a defensive copy of the retained sample list.
func (m *ResourceMonitor) Snapshots() []ResourceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ResourceSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

func (m *ResourceMonitor) MaxCpuPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxCpuPct
}

func (m *ResourceMonitor) MaxTotalMemUsed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxTotalMem
}

func (m *ResourceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = nil
	m.maxCpuPct = 0
	m.maxTotalMem = 0
}
