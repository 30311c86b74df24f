package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the response header carrying the request id.
const Header = "X-Request-ID"

// New returns a middleware that assigns every request an id, stores it in
// c.Locals("request_id") and echoes it in the response header. A valid id sent
// by the client is reused.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(Header, id)
		return c.Next()
	}
}
