package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"inkchain/internal/chain"
	"inkchain/internal/models"
)

// Narrow views of the three registry read surfaces. Each registry has its
// own id space and record schema; the adapters below flatten them into the
// one descriptor shape the UI consumes.
type nativeReader interface {
	GetArticle(ctx context.Context, id *big.Int) (chain.NativeArticle, error)
}

type communityReader interface {
	GetCurated(ctx context.Context, id *big.Int) (chain.CommunityArticle, error)
}

type portfolioReader interface {
	GetItem(ctx context.Context, id *big.Int) (chain.PortfolioItem, error)
}

// ContentService routes an opaque bookmark content id to the registry that
// owns it. Routing is decided by the id's prefix, never by the advisory
// kind tag stored on the bookmark record; the prefix travels with the id.
type ContentService struct {
	native    nativeReader
	community communityReader
	portfolio portfolioReader
}

func NewContentService(native nativeReader, community communityReader, portfolio portfolioReader) *ContentService {
	return &ContentService{native: native, community: community, portfolio: portfolio}
}

const (
	prefixNative    = "native_"
	prefixCommunity = "community_"
	prefixPortfolio = "portfolio_"
)

// ResolveContent resolves one content id to its descriptor. An id with no
// recognized prefix belongs to the native registry, whole string as the id.
// A registry record without a title is a placeholder and reports NotFound,
// not a half-populated descriptor.
func (s *ContentService) ResolveContent(ctx context.Context, contentID string) (*models.ContentDescriptor, error) {
	switch {
	case strings.HasPrefix(contentID, prefixNative):
		return s.resolveNative(ctx, contentID, strings.TrimPrefix(contentID, prefixNative))
	case strings.HasPrefix(contentID, prefixCommunity):
		return s.resolveCommunity(ctx, contentID, strings.TrimPrefix(contentID, prefixCommunity))
	case strings.HasPrefix(contentID, prefixPortfolio):
		return s.resolvePortfolio(ctx, contentID, strings.TrimPrefix(contentID, prefixPortfolio))
	default:
		return s.resolveNative(ctx, contentID, contentID)
	}
}

func (s *ContentService) resolveNative(ctx context.Context, contentID, localID string) (*models.ContentDescriptor, error) {
	id, err := parseLocalID(contentID, localID)
	if err != nil {
		return nil, err
	}
	article, err := s.native.GetArticle(ctx, id)
	if err != nil {
		return nil, &models.SourceQueryError{Source: string(models.SourceNative), Err: err}
	}
	if article.Title == "" {
		return nil, &models.NotFoundError{ContentID: contentID}
	}
	return adaptNative(article), nil
}

func (s *ContentService) resolveCommunity(ctx context.Context, contentID, localID string) (*models.ContentDescriptor, error) {
	id, err := parseLocalID(contentID, localID)
	if err != nil {
		return nil, err
	}
	article, err := s.community.GetCurated(ctx, id)
	if err != nil {
		return nil, &models.SourceQueryError{Source: string(models.SourceCommunity), Err: err}
	}
	if article.Headline == "" {
		return nil, &models.NotFoundError{ContentID: contentID}
	}
	return adaptCommunity(article), nil
}

func (s *ContentService) resolvePortfolio(ctx context.Context, contentID, localID string) (*models.ContentDescriptor, error) {
	id, err := parseLocalID(contentID, localID)
	if err != nil {
		return nil, err
	}
	item, err := s.portfolio.GetItem(ctx, id)
	if err != nil {
		return nil, &models.SourceQueryError{Source: string(models.SourcePortfolio), Err: err}
	}
	if item.Name == "" {
		return nil, &models.NotFoundError{ContentID: contentID}
	}
	return adaptPortfolio(item), nil
}

func parseLocalID(contentID, localID string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(localID, 10)
	if !ok || id.Sign() < 0 {
		return nil, &models.NotFoundError{ContentID: contentID}
	}
	return id, nil
}

// One adapter per registry: each owns its registry's field names,
// author-label formatting and location handling.

func adaptNative(a chain.NativeArticle) *models.ContentDescriptor {
	return &models.ContentDescriptor{
		Title:     a.Title,
		Summary:   a.Summary,
		Author:    shortHex(a.Author.Hex()),
		CreatedAt: a.CreatedAt,
		Category:  a.Category,
		Location:  a.Location,
		Tags:      a.Tags,
		Source:    models.SourceNative,
	}
}

func adaptCommunity(a chain.CommunityArticle) *models.ContentDescriptor {
	// Geo is stored as one "City, Country" string; only the city is kept
	// as the location.
	location := a.Geo
	if city, _, found := strings.Cut(a.Geo, ","); found {
		location = strings.TrimSpace(city)
	}
	return &models.ContentDescriptor{
		Title:     a.Headline,
		Summary:   a.Excerpt,
		Author:    a.Curator,
		CreatedAt: a.PublishedAt,
		Category:  a.Topic,
		Location:  location,
		Source:    models.SourceCommunity,
	}
}

func adaptPortfolio(p chain.PortfolioItem) *models.ContentDescriptor {
	location := p.City
	if p.Country != "" {
		if location != "" {
			location = fmt.Sprintf("%s, %s", p.City, p.Country)
		} else {
			location = p.Country
		}
	}
	return &models.ContentDescriptor{
		Title:     p.Name,
		Summary:   p.Description,
		Author:    shortHex(p.Owner.Hex()),
		CreatedAt: p.AddedAt,
		Category:  p.Discipline,
		Location:  location,
		Source:    models.SourcePortfolio,
	}
}

func shortHex(hex string) string {
	if len(hex) <= 10 {
		return hex
	}
	return hex[:6] + "..." + hex[len(hex)-4:]
}
