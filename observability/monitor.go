package observability

import (
	"chat-rooms/contract"
	"runtime"
	"sync"
	"time"
)

// Snapshot aggregates the last sampled metrics for /debug/stats.
type Snapshot struct {
	SampledAt time.Time         `json:"sampled_at"`
	Process   ProcessStats      `json:"process"`
	Bus       contract.BusStats `json:"bus"`
}

// Monitor keeps the latest snapshot, written by the monitor worker and read by HTTP handlers.
type Monitor struct {
	mu     sync.RWMutex
	latest Snapshot
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) Record(process ProcessStats, bus contract.BusStats, at time.Time) {
	process.Goroutines = runtime.NumGoroutine()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = Snapshot{SampledAt: at, Process: process, Bus: bus}
}

func (m *Monitor) GetLatest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
