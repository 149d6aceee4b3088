package lots

import (
	"errors"

	"lot-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const defaultRunLimit = 20

// Handler handles HTTP requests for lot datasets.
type Handler struct {
	service  *Service
	auctions map[string]struct{}
}

// NewHandler creates a new HTTP handler serving the given auctions.
func NewHandler(service *Service, auctions []string) *Handler {
	known := make(map[string]struct{}, len(auctions))
	for _, a := range auctions {
		known[a] = struct{}{}
	}
	return &Handler{service: service, auctions: known}
}

// RegisterRoutes registers the lot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/auctions")
	group.Get("/:auction/lots", h.requireAuction, h.HandleListLots)
	group.Get("/:auction/runs", h.requireAuction, h.HandleListRuns)
	group.Get("/:auction/runs/:id", h.requireAuction, h.HandleGetRun)
}

func (h *Handler) requireAuction(c *fiber.Ctx) error {
	if _, ok := h.auctions[c.Params("auction")]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown auction",
		})
	}
	return c.Next()
}

// HandleListLots returns the current dataset of an auction.
// The auction name outlives the request as a cache key and is copied.
func (h *Handler) HandleListLots(c *fiber.Ctx) error {
	auction := utils.CopyString(c.Params("auction"))
	l := logger.WithAuction(logger.WithRayID(h.service.logger, c), auction)

	lots, err := h.service.ListLots(c.Context(), auction)
	if err != nil {
		l.Error("Failed to list lots", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"auction": auction,
		"count":   len(lots),
		"lots":    lots,
	})
}

// HandleListRuns returns the latest runs of an auction, newest first.
// The limit query parameter bounds the result (default 20).
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	auction := utils.CopyString(c.Params("auction"))
	l := logger.WithAuction(logger.WithRayID(h.service.logger, c), auction)

	limit := c.QueryInt("limit", defaultRunLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be positive",
		})
	}

	runs, err := h.service.ListRuns(c.Context(), auction, limit)
	if err != nil {
		l.Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"auction": auction,
		"runs":    runs,
	})
}

// HandleGetRun returns one run with its per-lot changes.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	auction := utils.CopyString(c.Params("auction"))
	l := logger.WithAuction(logger.WithRayID(h.service.logger, c), auction)

	run, changes, err := h.service.GetRun(c.Context(), auction, c.Params("id"))
	if errors.Is(err, ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Error("Failed to load run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"run":     run,
		"changes": changes,
	})
}
