package app

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// HealthReport is served on /healthz
type HealthReport struct {
	Status     string  `json:"status"`
	Store      string  `json:"store"`
	Uptime     int64   `json:"uptime"`
	Goroutines int     `json:"goroutines"`
	MemRSS     uint64  `json:"mem_rss"`
	CPUPercent float64 `json:"cpu_percent"`
}

// Health pings the store and samples the process. The report is "down"
// only when the store is unreachable.
func (a *Application) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     "up",
		Store:      "up",
		Uptime:     int64(time.Since(a.started).Seconds()),
		Goroutines: runtime.NumGoroutine(),
	}

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.store.Ping(pctx); err != nil {
		zap.L().Warn("store ping failed", zap.String("namespace", "health"), zap.Error(err))
		report.Status = "down"
		report.Store = "down"
	}

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return report
	}
	if mem, err := p.MemoryInfo(); err == nil {
		report.MemRSS = mem.RSS
	}
	if cpu, err := p.CPUPercent(); err == nil {
		report.CPUPercent = cpu
	}
	return report
}

func (a *Application) HealthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		report := a.Health(c.Request().Context())
		code := http.StatusOK
		if report.Status != "up" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, report)
	}
}
