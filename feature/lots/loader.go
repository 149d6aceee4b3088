package lots

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the lots feature serving the given auctions.
func NewFeature(service *Service, auctions []string) *Feature {
	return &Feature{service: service, handler: NewHandler(service, auctions)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "lots"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return len(f.handler.auctions) > 0
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
