package journal

import (
	"time"

	"system-mirror/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxLimit = 1000

// Handler handles HTTP requests for the journal.
type Handler struct {
	journal *Journal
}

// NewHandler creates a new HTTP handler.
func NewHandler(journal *Journal) *Handler {
	return &Handler{journal: journal}
}

// RegisterRoutes registers the journal routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/journal", h.HandleHistory)
}

// HandleHistory returns journal records, newest first.
// @Summary Journal History
// @Description List added and removed records of mirrored items.
// @Tags journal
// @Produce json
// @Param provider query string false "Provider name (process, network)"
// @Param key query string false "Item key (e.g. a pid)"
// @Param kind query string false "Record kind (added, removed)"
// @Param session query string false "Only records of this session; 'current' selects the running one"
// @Param since query string false "RFC 3339 timestamp"
// @Param limit query int false "Maximum number of records" default(100)
// @Success 200 {array} journal.Record "Records"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /journal [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.journal.logger, c)

	q := Query{
		Provider: c.Query("provider"),
		Key:      c.Query("key"),
		Kind:     c.Query("kind"),
		Session:  c.Query("session"),
		Limit:    c.QueryInt("limit", 100),
	}
	if q.Session == "current" {
		q.Session = h.journal.Session()
	}
	if q.Kind != "" && q.Kind != KindAdded && q.Kind != KindRemoved {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "kind must be added or removed",
		})
	}
	if q.Limit <= 0 || q.Limit > maxLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 1000",
		})
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "since must be an RFC 3339 timestamp",
			})
		}
		q.Since = t
	}

	records, err := h.journal.History(c.Context(), q)
	if err != nil {
		l.Error("Journal query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(records)
}
