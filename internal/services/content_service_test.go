package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"inkchain/internal/chain"
	"inkchain/internal/models"
)

type fakeNative struct {
	articles map[string]chain.NativeArticle
	err      error
	lastID   string
}

func (f *fakeNative) GetArticle(ctx context.Context, id *big.Int) (chain.NativeArticle, error) {
	f.lastID = id.String()
	if f.err != nil {
		return chain.NativeArticle{}, f.err
	}
	return f.articles[id.String()], nil
}

type fakeCommunity struct {
	articles map[string]chain.CommunityArticle
	err      error
	lastID   string
}

func (f *fakeCommunity) GetCurated(ctx context.Context, id *big.Int) (chain.CommunityArticle, error) {
	f.lastID = id.String()
	if f.err != nil {
		return chain.CommunityArticle{}, f.err
	}
	return f.articles[id.String()], nil
}

type fakePortfolio struct {
	items  map[string]chain.PortfolioItem
	err    error
	lastID string
}

func (f *fakePortfolio) GetItem(ctx context.Context, id *big.Int) (chain.PortfolioItem, error) {
	f.lastID = id.String()
	if f.err != nil {
		return chain.PortfolioItem{}, f.err
	}
	return f.items[id.String()], nil
}

var contentTime = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func newContentFixture() (*ContentService, *fakeNative, *fakeCommunity, *fakePortfolio) {
	native := &fakeNative{articles: map[string]chain.NativeArticle{
		"7": {Title: "Native Piece", Summary: "s", Author: testWallet, CreatedAt: contentTime, Category: "essay", Tags: []string{"a"}},
	}}
	community := &fakeCommunity{articles: map[string]chain.CommunityArticle{
		"42": {Headline: "Curated Piece", Excerpt: "e", Curator: "ada", PublishedAt: contentTime, Topic: "tech", Geo: "Lisbon, Portugal"},
	}}
	portfolio := &fakePortfolio{items: map[string]chain.PortfolioItem{
		"3": {Name: "Portfolio Piece", Description: "d", Owner: testWallet, AddedAt: contentTime, Discipline: "design", City: "Oslo", Country: "Norway"},
	}}
	return NewContentService(native, community, portfolio), native, community, portfolio
}

func TestResolveContentPrefixRouting(t *testing.T) {
	svc, native, community, portfolio := newContentFixture()

	cases := []struct {
		contentID string
		source    models.ContentSource
		title     string
		localID   *string
	}{
		{"native_7", models.SourceNative, "Native Piece", &native.lastID},
		{"community_42", models.SourceCommunity, "Curated Piece", &community.lastID},
		{"portfolio_3", models.SourcePortfolio, "Portfolio Piece", &portfolio.lastID},
	}

	for _, tc := range cases {
		desc, err := svc.ResolveContent(context.Background(), tc.contentID)
		if err != nil {
			t.Fatalf("ResolveContent(%s) failed: %v", tc.contentID, err)
		}
		if desc.Source != tc.source {
			t.Errorf("%s routed to %s, want %s", tc.contentID, desc.Source, tc.source)
		}
		if desc.Title != tc.title {
			t.Errorf("%s resolved title %q, want %q", tc.contentID, desc.Title, tc.title)
		}
	}

	// Exactly the prefix is stripped before the registry sees the id
	if native.lastID != "7" {
		t.Errorf("Native registry called with %q, want 7", native.lastID)
	}
	if community.lastID != "42" {
		t.Errorf("Community registry called with %q, want 42", community.lastID)
	}
	if portfolio.lastID != "3" {
		t.Errorf("Portfolio registry called with %q, want 3", portfolio.lastID)
	}
}

func TestResolveContentDefaultRegistry(t *testing.T) {
	svc, native, _, _ := newContentFixture()

	// No recognized prefix: whole string goes to the native registry
	if _, err := svc.ResolveContent(context.Background(), "7"); err != nil {
		t.Fatalf("ResolveContent failed: %v", err)
	}
	if native.lastID != "7" {
		t.Errorf("Default route called native registry with %q, want 7", native.lastID)
	}
}

func TestResolveContentNotFound(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	// Registry returns its zero record: placeholder, not a half-populated item
	_, err := svc.ResolveContent(context.Background(), "community_999")
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestResolveContentMalformedLocalID(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	_, err := svc.ResolveContent(context.Background(), "community_notanumber")
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError for malformed id, got %v", err)
	}
}

func TestResolveContentTransportFailure(t *testing.T) {
	svc, _, community, _ := newContentFixture()
	community.err = errors.New("connection refused")

	_, err := svc.ResolveContent(context.Background(), "community_42")
	var queryErr *models.SourceQueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("Expected SourceQueryError, got %v", err)
	}
}

func TestAdapterFieldMapping(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	community, err := svc.ResolveContent(context.Background(), "community_42")
	if err != nil {
		t.Fatalf("ResolveContent failed: %v", err)
	}
	if community.Location != "Lisbon" {
		t.Errorf("Community geo must be split to the city, got %q", community.Location)
	}
	if community.Author != "ada" {
		t.Errorf("Community author label must be the curator name, got %q", community.Author)
	}

	portfolio, err := svc.ResolveContent(context.Background(), "portfolio_3")
	if err != nil {
		t.Fatalf("ResolveContent failed: %v", err)
	}
	if portfolio.Location != "Oslo, Norway" {
		t.Errorf("Portfolio location must join city and country, got %q", portfolio.Location)
	}
	if portfolio.Author == testWallet.Hex() {
		t.Error("Portfolio author label must be shortened, not the full address")
	}

	native, err := svc.ResolveContent(context.Background(), "native_7")
	if err != nil {
		t.Fatalf("ResolveContent failed: %v", err)
	}
	if native.Author == testWallet.Hex() {
		t.Error("Native author label must be shortened, not the full address")
	}
	if !native.CreatedAt.Equal(contentTime) {
		t.Errorf("Native creation time lost in adaptation: %v", native.CreatedAt)
	}
}
