package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"inkchain/internal/jobs"
	"inkchain/internal/models"
)

var testWallet = common.HexToAddress("0x00000000000000000000000000000000000000AA")

type fakeResolver struct {
	wallet common.Address
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, identifier string) (common.Address, error) {
	if f.err != nil {
		return common.Address{}, f.err
	}
	return f.wallet, nil
}

type fakeActivities struct {
	items      []models.ActivityItem
	err        error
	gotLimit   int
	gotOffset  int
	gotWallet  common.Address
	wasInvoked bool
}

func (f *fakeActivities) GetActivities(ctx context.Context, wallet common.Address, limit, offset int) ([]models.ActivityItem, error) {
	f.wasInvoked = true
	f.gotWallet = wallet
	f.gotLimit = limit
	f.gotOffset = offset
	return f.items, f.err
}

type fakeBookmarkStore struct {
	bookmarks []models.Bookmark
	err       error
}

func (f *fakeBookmarkStore) GetBookmarks(ctx context.Context, owner common.Address) ([]models.Bookmark, error) {
	return f.bookmarks, f.err
}

type fakePipeline struct {
	items    []models.ContentDescriptor
	failures []string
	err      error
}

func (f *fakePipeline) ResolveBookmarks(ctx context.Context, bookmarks []models.Bookmark) ([]models.ContentDescriptor, []string, error) {
	return f.items, f.failures, f.err
}

type fakeChainHealth struct {
	status jobs.ChainStatus
}

func (f *fakeChainHealth) Status() jobs.ChainStatus { return f.status }

func activityApp(resolver *fakeResolver, activities *fakeActivities) *fiber.App {
	app := fiber.New()
	h := NewActivityHandler(resolver, activities)
	app.Get("/api/profiles/:identifier/activities", h.List)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestActivityListSuccess(t *testing.T) {
	activities := &fakeActivities{items: []models.ActivityItem{
		{ID: "0xabc-0", Type: models.ActivityGreeting, Label: "Sent a greeting", Timestamp: time.Now()},
	}}
	app := activityApp(&fakeResolver{wallet: testWallet}, activities)

	req := httptest.NewRequest("GET", "/api/profiles/7-alice/activities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["wallet"] != testWallet.Hex() {
		t.Errorf("Expected wallet %s, got %v", testWallet.Hex(), body["wallet"])
	}
	if body["count"].(float64) != 1 {
		t.Errorf("Expected count 1, got %v", body["count"])
	}
	if activities.gotLimit != 20 || activities.gotOffset != 0 {
		t.Errorf("Expected default pagination 20/0, got %d/%d", activities.gotLimit, activities.gotOffset)
	}
}

func TestActivityListPaginationParams(t *testing.T) {
	activities := &fakeActivities{}
	app := activityApp(&fakeResolver{wallet: testWallet}, activities)

	req := httptest.NewRequest("GET", "/api/profiles/7/activities?limit=50&offset=100", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if activities.gotLimit != 50 || activities.gotOffset != 100 {
		t.Errorf("Pagination not forwarded, got %d/%d", activities.gotLimit, activities.gotOffset)
	}
}

func TestActivityListRejectsBadPagination(t *testing.T) {
	cases := []string{"limit=0", "limit=101", "offset=-1", "limit=-5"}
	for _, qs := range cases {
		activities := &fakeActivities{}
		app := activityApp(&fakeResolver{wallet: testWallet}, activities)

		req := httptest.NewRequest("GET", "/api/profiles/7/activities?"+qs, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed for %q: %v", qs, err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("Expected 400 for %q, got %d", qs, resp.StatusCode)
		}
		if activities.wasInvoked {
			t.Errorf("Service must not be called for invalid pagination %q", qs)
		}
	}
}

func TestActivityListUnknownProfile(t *testing.T) {
	resolver := &fakeResolver{err: &models.ResolutionError{Identifier: "bogus"}}
	app := activityApp(resolver, &fakeActivities{})

	req := httptest.NewRequest("GET", "/api/profiles/bogus/activities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for unresolvable profile, got %d", resp.StatusCode)
	}
}

func TestActivityListTotalUnavailable(t *testing.T) {
	activities := &fakeActivities{err: &models.TotalUnavailableError{Failed: 9}}
	app := activityApp(&fakeResolver{wallet: testWallet}, activities)

	req := httptest.NewRequest("GET", "/api/profiles/7/activities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("Expected 503 when every source failed, got %d", resp.StatusCode)
	}
}

func TestActivityListInternalError(t *testing.T) {
	activities := &fakeActivities{err: errors.New("boom")}
	app := activityApp(&fakeResolver{wallet: testWallet}, activities)

	req := httptest.NewRequest("GET", "/api/profiles/7/activities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
}

func bookmarkApp(resolver *fakeResolver, store *fakeBookmarkStore, pipeline *fakePipeline) *fiber.App {
	app := fiber.New()
	h := NewBookmarkHandler(resolver, store, pipeline)
	app.Get("/api/profiles/:identifier/bookmarks", h.ListForProfile)
	app.Post("/api/bookmarks/resolve", h.Resolve)
	return app
}

func TestBookmarkListPartialSuccess(t *testing.T) {
	store := &fakeBookmarkStore{bookmarks: []models.Bookmark{
		{ContentID: "native_1", Active: true},
		{ContentID: "community_42", Active: true},
	}}
	pipeline := &fakePipeline{
		items:    []models.ContentDescriptor{{Title: "Kept", Source: models.SourceNative}},
		failures: []string{`community_42: content "community_42" not found`},
	}
	app := bookmarkApp(&fakeResolver{wallet: testWallet}, store, pipeline)

	req := httptest.NewRequest("GET", "/api/profiles/7/bookmarks", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Partial failure must still be 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["count"].(float64) != 1 {
		t.Errorf("Expected count 1, got %v", body["count"])
	}
	if body["failed"].(float64) != 1 {
		t.Errorf("Expected failed 1, got %v", body["failed"])
	}
}

func TestBookmarkListStoreUnavailable(t *testing.T) {
	store := &fakeBookmarkStore{err: errors.New("rpc timeout")}
	app := bookmarkApp(&fakeResolver{wallet: testWallet}, store, &fakePipeline{})

	req := httptest.NewRequest("GET", "/api/profiles/7/bookmarks", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("Expected 503 when the store is down, got %d", resp.StatusCode)
	}
}

func TestBookmarkResolveEndpoint(t *testing.T) {
	pipeline := &fakePipeline{
		items: []models.ContentDescriptor{{Title: "Posted", Source: models.SourceCommunity}},
	}
	app := bookmarkApp(&fakeResolver{wallet: testWallet}, &fakeBookmarkStore{}, pipeline)

	payload := `{"bookmarks":[{"content_id":"community_42","active":true}]}`
	req := httptest.NewRequest("POST", "/api/bookmarks/resolve", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["count"].(float64) != 1 {
		t.Errorf("Expected count 1, got %v", body["count"])
	}
}

func TestBookmarkResolveInvalidBody(t *testing.T) {
	app := bookmarkApp(&fakeResolver{wallet: testWallet}, &fakeBookmarkStore{}, &fakePipeline{})

	req := httptest.NewRequest("POST", "/api/bookmarks/resolve", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestBookmarkResolveTotalUnavailable(t *testing.T) {
	pipeline := &fakePipeline{
		failures: []string{"native_1: source native: timeout"},
		err:      &models.TotalUnavailableError{Failed: 1},
	}
	app := bookmarkApp(&fakeResolver{wallet: testWallet}, &fakeBookmarkStore{}, pipeline)

	payload := `{"bookmarks":[{"content_id":"native_1","active":true}]}`
	req := httptest.NewRequest("POST", "/api/bookmarks/resolve", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if _, ok := body["failures"]; !ok {
		t.Error("503 response must still carry failure diagnostics")
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(&fakeChainHealth{status: jobs.ChainStatus{Reachable: true, HeadBlock: 123}})
	app.Get("/health", h.Handle)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
}

func TestHealthEndpointDegraded(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(&fakeChainHealth{status: jobs.ChainStatus{Reachable: false, LastError: "dial tcp: refused"}})
	app.Get("/health", h.Handle)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["status"] != "degraded" {
		t.Errorf("Expected degraded status when the chain is unreachable, got %v", body["status"])
	}
}
