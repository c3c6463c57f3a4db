package httpapi

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/R3E-Network/light_api/internal/httputil"
)

type healthResponse struct {
	Status        string         `json:"status"`
	Database      string         `json:"database"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Process       *processHealth `json:"process,omitempty"`
}

type processHealth struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

var (
	selfOnce sync.Once
	self     *process.Process
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		Database:      "ok",
		UptimeSeconds: int64(time.Since(h.deps.StartedAt).Seconds()),
		Process:       processStats(r.Context()),
	}

	status := http.StatusOK
	if h.deps.DB != nil {
		if err := h.deps.DB.PingContext(r.Context()); err != nil {
			h.deps.Logger.WithContext(r.Context()).WithError(err).Warn("health check: database unavailable")
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	httputil.WriteJSON(w, status, resp)
}

// processStats reports resource usage of this process; nil when the platform
// does not expose it.
func processStats(ctx context.Context) *processHealth {
	selfOnce.Do(func() {
		self, _ = process.NewProcess(int32(os.Getpid()))
	})
	if self == nil {
		return nil
	}

	stats := &processHealth{}
	if mem, err := self.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	if cpu, err := self.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	return stats
}
