package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// healthReport is the GET /health response body.
type healthReport struct {
	Status     string            `json:"status"`
	Dependencies map[string]bool `json:"dependencies"`
	Resources  resourceReport    `json:"resources,omitempty"`
}

type resourceReport struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
}

// Health handles GET /health, probing the database, storage backend, and
// transcoder binaries and reporting process resource usage alongside, per
// ArthurCRodrigues-transcode-worker's gopsutil-backed health surface.
func (h *Handlers) Health(c *gin.Context) {
	deps := map[string]bool{}

	deps["database"] = h.pingDatabase(c)
	deps["storage"] = h.pingStorage(c)

	caps := h.Kernel().Transcoder().Probe(c.Request.Context())
	deps["transcoder"] = caps.TranscoderAvailable && caps.ProbeAvailable

	healthy := true
	for _, ok := range deps {
		if !ok {
			healthy = false
		}
	}

	report := healthReport{Dependencies: deps}
	if healthy {
		report.Status = "ok"
	} else {
		report.Status = "degraded"
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report.Resources.CPUPercent = percents[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		report.Resources.MemoryPercent = vmem.UsedPercent
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (h *Handlers) pingDatabase(c *gin.Context) bool {
	db := h.Kernel().DB()
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(c.Request.Context()) == nil
}

func (h *Handlers) pingStorage(c *gin.Context) bool {
	store := h.Kernel().Storage()
	if store == nil {
		return false
	}
	_, _, err := store.Put(c.Request.Context(), ".health", []byte("ok"))
	return err == nil
}
