package thread

import (
	"strconv"

	"system-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for threads.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new HTTP handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers the thread routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/processes/:pid/threads", h.HandleListThreads)
}

// HandleListThreads returns the threads of a process.
// @Summary List Threads
// @Description List the threads of a process. The first request for a pid starts tracking it.
// @Tags threads
// @Produce json
// @Param pid path int true "Process ID"
// @Success 200 {array} thread.Entry "Threads"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /processes/{pid}/threads [get]
func (h *Handler) HandleListThreads(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.manager.logger, c)

	pid, err := strconv.ParseInt(c.Params("pid"), 10, 32)
	if err != nil || pid <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid pid",
		})
	}

	entries, err := h.manager.List(c.Context(), int32(pid))
	if err != nil {
		l.Debug("Thread enumeration failed", zap.Int64("pid", pid), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(entries)
}
