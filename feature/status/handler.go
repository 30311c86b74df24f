package status

import (
	"system-mirror/core/monitor"
	"system-mirror/core/provider"
	"system-mirror/core/workqueue"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report is the body of GET /stats.
type Report struct {
	Providers []provider.Stats `json:"providers"`
	Queue     workqueue.Stats  `json:"queue"`
}

// Handler handles HTTP requests for monitor status.
type Handler struct {
	monitor *monitor.Monitor
}

// NewHandler creates a new HTTP handler.
func NewHandler(m *monitor.Monitor) *Handler {
	return &Handler{monitor: m}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/stats", h.HandleStats)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HandleStats returns provider and worker pool counters.
// @Summary Monitor Stats
// @Description Get cycle counters of every provider and the state of the enrichment worker pool.
// @Tags status
// @Produce json
// @Success 200 {object} status.Report "Stats"
// @Router /stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(Report{
		Providers: h.monitor.Stats(),
		Queue:     h.monitor.Queue().Stats(),
	})
}
