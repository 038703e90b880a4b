package workers

import (
	"chat-rooms/contract"
	"chat-rooms/observability"
	"context"
	"log/slog"
	"time"
)

// MonitorWorker periodically samples the process and the event bus.
// Reading the bus stats only takes short read locks, so sampling never
// slows down publishers.
type MonitorWorker struct {
	log            *slog.Logger
	bus            contract.IEventBus
	monitor        *observability.Monitor
	metricInterval time.Duration
	sample         func() (observability.ProcessStats, error)
}

func NewMonitorWorker(
	log *slog.Logger,
	bus contract.IEventBus,
	monitor *observability.Monitor,
	metricInterval time.Duration,
) *MonitorWorker {
	return &MonitorWorker{log: log, bus: bus, monitor: monitor, metricInterval: metricInterval}
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	sample := w.sample
	if sample == nil {
		p, err := observability.SelfProcess()
		if err != nil {
			return err
		}
		sample = func() (observability.ProcessStats, error) {
			return observability.SampleProcess(p)
		}
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping monitor")
			return nil
		case <-ticker.C:
			w.collect(sample)
		}
	}
}

func (w *MonitorWorker) collect(sample func() (observability.ProcessStats, error)) {
	stats, err := sample()
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
	}
	busStats := w.bus.Stats()
	w.monitor.Record(stats, busStats, time.Now().UTC())
	w.log.Debug("Stats sampled",
		"rss_bytes", stats.RSSBytes,
		"cpu_percent", stats.CPUPercent,
		"channels", busStats.Channels,
		"receivers", busStats.Receivers,
		"dropped", busStats.Dropped,
		"lagged", busStats.Lagged,
	)
}

