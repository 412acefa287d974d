package api

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"txnetl/internal/api/render"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status          string  `json:"status"`
	CPUPercent      float64 `json:"cpu_usage_percent"`
	CPUCount        int     `json:"cpu_count"`
	MemoryPercent   float64 `json:"memory_usage_percent"`
	DiskUsedPercent float64 `json:"disk_usage_percent"`
}

// handleHealth reports host resource usage. The CPU sample blocks for one
// second; sampling errors degrade the field to zero rather than failing the
// whole check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{Status: "ok"}

	if pct, err := cpu.PercentWithContext(r.Context(), time.Second, false); err == nil && len(pct) > 0 {
		status.CPUPercent = pct[0]
	} else if err != nil {
		s.log.Warn("cpu sample", "error", err)
	}
	if n, err := cpu.Counts(true); err == nil {
		status.CPUCount = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		status.DiskUsedPercent = du.UsedPercent
	}

	render.JSON(w, status)
}
