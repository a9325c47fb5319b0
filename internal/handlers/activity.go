package handlers

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"inkchain/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AddressResolver resolves a profile identifier to a wallet address.
type AddressResolver interface {
	Resolve(ctx context.Context, identifier string) (common.Address, error)
}

// ActivityProvider produces one page of a wallet's activity feed.
type ActivityProvider interface {
	GetActivities(ctx context.Context, wallet common.Address, limit, offset int) ([]models.ActivityItem, error)
}

// ActivityHandler serves the profile activity feed.
type ActivityHandler struct {
	resolver   AddressResolver
	activities ActivityProvider
}

func NewActivityHandler(resolver AddressResolver, activities ActivityProvider) *ActivityHandler {
	return &ActivityHandler{resolver: resolver, activities: activities}
}

// List handles GET /api/profiles/:identifier/activities. "Load more" in the
// UI re-invokes this with an advancing offset.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Profile identifier is required",
		})
	}

	limit := c.QueryInt("limit", defaultPageSize)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > maxPageSize || offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid pagination parameters",
		})
	}

	wallet, err := h.resolver.Resolve(c.Context(), identifier)
	if err != nil {
		var resErr *models.ResolutionError
		if errors.As(err, &resErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown profile identifier",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve profile",
		})
	}

	items, err := h.activities.GetActivities(c.Context(), wallet, limit, offset)
	if err != nil {
		var totalErr *models.TotalUnavailableError
		if errors.As(err, &totalErr) {
			// Distinct from an empty feed: the UI renders "could not
			// load", not "no activity yet".
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Activity feed is temporarily unavailable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load activities",
		})
	}

	return c.JSON(fiber.Map{
		"wallet":     wallet.Hex(),
		"activities": items,
		"count":      len(items),
		"limit":      limit,
		"offset":     offset,
	})
}
