package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkchain/internal/metrics"
	"inkchain/internal/models"
)

// ContentResolver is the dispatcher surface the pipeline consumes.
type ContentResolver interface {
	ResolveContent(ctx context.Context, contentID string) (*models.ContentDescriptor, error)
}

// BookmarkService resolves a user's bookmark list into content descriptors.
// Bookmarks are processed one at a time on purpose: the burst of requests
// against a possibly rate-limited node stays bounded no matter how many
// bookmarks a user has.
type BookmarkService struct {
	resolver    ContentResolver
	perItemTime time.Duration
}

func NewBookmarkService(resolver ContentResolver, perItemTime time.Duration) *BookmarkService {
	return &BookmarkService{resolver: resolver, perItemTime: perItemTime}
}

// ResolveBookmarks resolves every active bookmark, collecting successes and
// failure diagnostics separately. A failed bookmark never aborts its
// siblings. The returned error is non-nil only when every attempted
// bookmark failed, so the UI can tell "all broken" from "empty list".
func (s *BookmarkService) ResolveBookmarks(ctx context.Context, bookmarks []models.Bookmark) ([]models.ContentDescriptor, []string, error) {
	resolved := make([]models.ContentDescriptor, 0, len(bookmarks))
	var failures []string

	attempted := 0
	transportFailed := 0
	for _, bm := range bookmarks {
		if !bm.Active {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, failures, err
		}
		attempted++
		metrics.BookmarkResolutions.Inc()

		if bm.Kind != "" && !kindMatchesPrefix(bm.Kind, bm.ContentID) {
			// Routing still follows the prefix; surfacing the drift keeps
			// mis-tagged legacy records observable.
			slog.Debug("bookmark kind tag disagrees with id prefix",
				"content_id", bm.ContentID, "kind", bm.Kind)
		}

		item, err := s.resolveOne(ctx, bm.ContentID)
		if err != nil {
			metrics.BookmarkResolutionFailures.Inc()
			failures = append(failures, fmt.Sprintf("%s: %v", bm.ContentID, err))
			var queryErr *models.SourceQueryError
			if errors.As(err, &queryErr) {
				transportFailed++
			}
			continue
		}
		resolved = append(resolved, *item)
	}

	// A list of dead links is still a valid (empty) result; only a list
	// where every registry call itself failed counts as unavailable.
	if attempted > 0 && len(resolved) == 0 && transportFailed == attempted {
		return nil, failures, &models.TotalUnavailableError{Failed: attempted}
	}
	return resolved, failures, nil
}

func (s *BookmarkService) resolveOne(ctx context.Context, contentID string) (*models.ContentDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.perItemTime)
	defer cancel()
	return s.resolver.ResolveContent(ctx, contentID)
}

func kindMatchesPrefix(kind, contentID string) bool {
	switch {
	case strings.HasPrefix(contentID, prefixCommunity):
		return kind == "community"
	case strings.HasPrefix(contentID, prefixPortfolio):
		return kind == "portfolio"
	default:
		return kind == "native" || kind == "article"
	}
}
