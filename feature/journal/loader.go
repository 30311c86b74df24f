package journal

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates a new journal feature. A nil journal disables it.
func NewFeature(j *Journal) *Feature {
	f := &Feature{enabled: j != nil}
	if j != nil {
		f.handler = NewHandler(j)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "journal"
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
