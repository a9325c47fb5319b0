package handlers

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"inkchain/internal/models"
)

// BookmarkReader reads a wallet's persisted bookmark list from the ledger.
type BookmarkReader interface {
	GetBookmarks(ctx context.Context, owner common.Address) ([]models.Bookmark, error)
}

// BookmarkResolver runs bookmark records through the resolution pipeline.
type BookmarkResolver interface {
	ResolveBookmarks(ctx context.Context, bookmarks []models.Bookmark) ([]models.ContentDescriptor, []string, error)
}

// BookmarkHandler serves the bookmarks view.
type BookmarkHandler struct {
	resolver AddressResolver
	store    BookmarkReader
	pipeline BookmarkResolver
}

func NewBookmarkHandler(resolver AddressResolver, store BookmarkReader, pipeline BookmarkResolver) *BookmarkHandler {
	return &BookmarkHandler{resolver: resolver, store: store, pipeline: pipeline}
}

// ListForProfile handles GET /api/profiles/:identifier/bookmarks: reads the
// on-chain bookmark list and resolves every entry to its content.
func (h *BookmarkHandler) ListForProfile(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Profile identifier is required",
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

	bookmarks, err := h.store.GetBookmarks(c.Context(), wallet)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Bookmark store is temporarily unavailable",
		})
	}

	return h.respond(c, bookmarks)
}

type resolveBookmarksRequest struct {
	Bookmarks []models.Bookmark `json:"bookmarks"`
}

// Resolve handles POST /api/bookmarks/resolve for callers that already hold
// the bookmark records.
func (h *BookmarkHandler) Resolve(c *fiber.Ctx) error {
	var req resolveBookmarksRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	return h.respond(c, req.Bookmarks)
}

// respond runs the pipeline and renders partial success explicitly: the
// resolved items plus how many entries failed and why.
func (h *BookmarkHandler) respond(c *fiber.Ctx, bookmarks []models.Bookmark) error {
	items, failures, err := h.pipeline.ResolveBookmarks(c.Context(), bookmarks)
	if err != nil {
		var totalErr *models.TotalUnavailableError
		if errors.As(err, &totalErr) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":    "Bookmarks are temporarily unavailable",
				"failures": failures,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve bookmarks",
		})
	}

	return c.JSON(fiber.Map{
		"items":    items,
		"count":    len(items),
		"failed":   len(failures),
		"failures": failures,
	})
}
