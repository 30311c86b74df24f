package process

import (
	"strconv"

	"system-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for processes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the process routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/processes")
	group.Get("/", h.HandleListProcesses)
	group.Get("/max", h.HandleGetMaximums)
	group.Get("/:pid", h.HandleGetProcess)
}

// HandleListProcesses returns the mirrored processes.
// @Summary List Processes
// @Description List every live process with its counters and enrichment.
// @Tags processes
// @Produce json
// @Param sort query string false "Sort order (pid, cpu, io)" default(pid)
// @Param limit query int false "Maximum number of processes" default(0)
// @Success 200 {array} process.Entry "Processes"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /processes [get]
func (h *Handler) HandleListProcesses(c *fiber.Ctx) error {
	order := c.Query("sort", SortPID)
	switch order {
	case SortPID, SortCPU, SortIO:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sort must be one of pid, cpu, io",
		})
	}

	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}

	return c.JSON(h.service.List(order, limit))
}

// HandleGetProcess returns a single process.
// @Summary Get Process
// @Description Get one live process by pid. Pseudo processes use negative pids.
// @Tags processes
// @Produce json
// @Param pid path int true "Process ID"
// @Success 200 {object} process.Entry "Process"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /processes/{pid} [get]
func (h *Handler) HandleGetProcess(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.service.logger, c)

	pid, err := strconv.ParseInt(c.Params("pid"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid pid",
		})
	}

	entry, ok := h.service.Get(int32(pid))
	if !ok {
		l.Debug("Process not found", zap.Int64("pid", pid))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "process not found",
		})
	}

	return c.JSON(entry)
}

// HandleGetMaximums returns the busiest processes of the last cycle.
// @Summary Get Busiest Processes
// @Description Get the process with the highest CPU usage and the one with the most I/O in the last cycle.
// @Tags processes
// @Produce json
// @Success 200 {object} process.Maximums "Maximums"
// @Router /processes/max [get]
func (h *Handler) HandleGetMaximums(c *fiber.Ctx) error {
	return c.JSON(h.service.Maximums())
}
