package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

// HealthWorker samples the server process itself at a fixed interval
// and logs cpu/ram usage. Purely observational.
type HealthWorker struct {
	log      *slog.Logger
	interval time.Duration
}

func NewHealthWorker(log *slog.Logger, interval time.Duration) *HealthWorker {
	return &HealthWorker{log: log, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health worker")
			return nil
		case <-ticker.C:
			cpu, err := p.CPUPercent()
			if err != nil {
				w.log.Error("Error while finding process cpu usage", "err", err)
				continue
			}
			ram, err := p.MemoryPercent()
			if err != nil {
				w.log.Error("Error while finding process ram usage", "err", err)
				continue
			}
			w.log.Debug("Process health", "cpu_percent", cpu, "ram_percent", ram)
		}
	}
}
