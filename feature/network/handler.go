package network

import (
	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for connections.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the network routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/connections", h.HandleListConnections)
}

// HandleListConnections returns the mirrored sockets.
// @Summary List Connections
// @Description List live TCP and UDP sockets with their owning process and resolved remote host.
// @Tags network
// @Produce json
// @Param pid query int false "Only sockets of this process"
// @Param protocol query string false "Only this protocol (tcp, tcp6, udp, udp6)"
// @Param status query string false "Only this state (e.g. ESTABLISHED, LISTEN)"
// @Success 200 {array} network.Entry "Connections"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /connections [get]
func (h *Handler) HandleListConnections(c *fiber.Ctx) error {
	pid := c.QueryInt("pid", 0)
	if pid < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid pid",
		})
	}

	protocol := c.Query("protocol")
	switch protocol {
	case "", "tcp", "tcp6", "udp", "udp6":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "protocol must be one of tcp, tcp6, udp, udp6",
		})
	}

	return c.JSON(h.service.List(Filter{
		PID:      int32(pid),
		Protocol: protocol,
		Status:   c.Query("status"),
	}))
}
