package workers

import (
	"chat-rooms/contract"
	"chat-rooms/mocks"
	"chat-rooms/observability"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMonitorWorker_RecordsSnapshots(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockIEventBus(ctrl)
	monitor := observability.NewMonitor()
	worker := NewMonitorWorker(logs.GetLoggerFromLevel(slog.LevelDebug), bus, monitor, 10*time.Millisecond)
	worker.sample = func() (observability.ProcessStats, error) {
		return observability.ProcessStats{PID: 42, RSSBytes: 1024}, nil
	}

	busStats := contract.BusStats{Channels: 2, Receivers: 3, Capacity: 1024}
	bus.EXPECT().Stats().Return(busStats).MinTimes(1)

	// When the worker runs for a few ticks
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))

	// Then the monitor holds the last sample
	latest := monitor.GetLatest()
	req.Equal(int32(42), latest.Process.PID)
	req.Equal(uint64(1024), latest.Process.RSSBytes)
	req.Positive(latest.Process.Goroutines)
	req.Equal(busStats, latest.Bus)
	req.False(latest.SampledAt.IsZero())
}

func TestMonitorWorker_KeepsBusStatsWhenProcessSamplingFails(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockIEventBus(ctrl)
	monitor := observability.NewMonitor()
	worker := NewMonitorWorker(logs.GetLoggerFromLevel(slog.LevelDebug), bus, monitor, time.Hour)

	bus.EXPECT().Stats().Return(contract.BusStats{Channels: 1})
	worker.collect(func() (observability.ProcessStats, error) {
		return observability.ProcessStats{}, fmt.Errorf("no procfs")
	})

	req.Equal(1, monitor.GetLatest().Bus.Channels)
}

func TestSampleSelfProcess(t *testing.T) {
	req := require.New(t)
	p, err := observability.SelfProcess()
	req.NoError(err)
	stats, err := observability.SampleProcess(p)
	req.NoError(err)
	req.Positive(stats.RSSBytes)
}
