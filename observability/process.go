package observability

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

type ProcessStats struct {
	PID        int32   `json:"pid"`
	Status     string  `json:"status"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
}

// SelfProcess returns a handle on the running server process.
func SelfProcess() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
}

// SampleProcess retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func SampleProcess(p *process.Process) (ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return ProcessStats{}, err
	}
	return ProcessStats{
		PID:        p.Pid,
		Status:     status,
		RSSBytes:   memInfo.RSS,
		CPUPercent: cpuPercent,
	}, nil
}
