package thread

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	manager *Manager
	handler *Handler
	enabled bool
}

// NewFeature creates a new thread feature around manager.
func NewFeature(manager *Manager, enabled bool) *Feature {
	return &Feature{manager: manager, handler: NewHandler(manager), enabled: enabled}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "thread"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
