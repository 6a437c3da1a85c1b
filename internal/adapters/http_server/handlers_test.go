package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "guestreviews/internal/adapters/http_server"
	"guestreviews/internal/app"
	"guestreviews/internal/domain"
	"guestreviews/internal/testutil"
)

func pstr(s string) *string { return &s }

type fixture struct {
	srv    *httptest.Server
	repo   *testutil.MemRepo
	places *testutil.StubPlaces
}

// newFixture serves the full router over a MemRepo holding one listing with a
// place id, one without, and three reviews.
func newFixture(t *testing.T, withPlaces bool) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := testutil.NewMemRepo()
	repo.AddListing(domain.Listing{Name: "Loft A", GooglePlaceID: pstr("place-a"), ImageURL: pstr("https://img/a.jpg")})
	repo.AddListing(domain.Listing{Name: "Loft B"})

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, rv := range []domain.Review{
		{HostawayID: 7, GuestName: "Ana", Channel: domain.ChannelHostaway, SubmittedAt: day, OverallRating: 9, ListingID: 1,
			CategoryRatings: []domain.CategoryRating{{Category: "cleanliness", Rating: 8}, {Category: "communication", Rating: 10}}},
		{HostawayID: 8, GuestName: "Bob", Channel: domain.ChannelHostaway, SubmittedAt: day.AddDate(0, 0, 1), OverallRating: 6, ListingID: 2},
		{HostawayID: 1700000000, GuestName: "Cid", Channel: domain.ChannelGoogle, SubmittedAt: day.AddDate(0, 0, 2), OverallRating: 8, ListingID: 1},
	} {
		_, _, err := repo.InsertReview(ctx, rv)
		require.NoError(t, err)
	}

	f := &fixture{repo: repo}
	var places domain.PlacesClient
	if withPlaces {
		f.places = &testutil.StubPlaces{Reviews: []domain.PlaceReview{
			{AuthorName: "Dee", Rating: 5, Text: "Perfect", Time: 1700000500},
			{AuthorName: "Cid", Rating: 4, Time: 1700000000},
		}}
		places = f.places
	}

	s := httpserver.New(5 * time.Second)
	s.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo),
		A: app.NewApprovalService(repo),
		I: app.NewIngestionService(repo, places, nil, 0),
	})
	f.srv = httptest.NewServer(s.Mux())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body io.Reader, hdr map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, body)
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func requireProblem(t *testing.T, resp *http.Response, status int) problem {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	p := decode[problem](t, resp)
	require.Equal(t, status, p.Status)
	return p
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, false)
	resp := f.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHostawayReviews_BareEntities(t *testing.T) {
	f := newFixture(t, false)
	resp := f.do(t, http.MethodGet, "/api/reviews/hostaway", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[[]map[string]any](t, resp)
	require.Len(t, got, 2)
	assert.Equal(t, float64(8), got[0]["hostaway_id"], "newest first")
	assert.Equal(t, "hostaway", got[1]["channel"])
	assert.Equal(t, false, got[1]["is_approved"])
	assert.NotContains(t, got[0], "listing")
	assert.NotContains(t, got[0], "category_ratings")
}

func TestListReviews_FiltersAndAttachments(t *testing.T) {
	f := newFixture(t, false)

	resp := f.do(t, http.MethodGet, "/api/reviews?listing_id=1&min_rating=9", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[[]struct {
		HostawayID int64 `json:"hostaway_id"`
		Listing    struct {
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		} `json:"listing"`
		CategoryRatings []struct {
			Category string `json:"category"`
			Rating   int    `json:"rating"`
		} `json:"category_ratings"`
	}](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].HostawayID)
	assert.Equal(t, "Loft A", got[0].Listing.Name)
	assert.Equal(t, "https://img/a.jpg", got[0].Listing.ImageURL)
	assert.Len(t, got[0].CategoryRatings, 2)

	resp = f.do(t, http.MethodGet, "/api/reviews?channel=google&start_date=2024-01-02", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)
}

func TestListReviews_BadFilter(t *testing.T) {
	f := newFixture(t, false)
	for _, q := range []string{"listing_id=abc", "min_rating=high", "min_rating=NaN", "min_rating=Inf", "min_rating=-inf", "start_date=yesterday"} {
		t.Run(q, func(t *testing.T) {
			requireProblem(t, f.do(t, http.MethodGet, "/api/reviews?"+q, nil, nil), http.StatusBadRequest)
		})
	}
}

func TestReviewStats(t *testing.T) {
	f := newFixture(t, false)
	resp := f.do(t, http.MethodGet, "/api/reviews/stats", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	st := decode[struct {
		TotalReviews     int     `json:"total_reviews"`
		AverageRating    float64 `json:"average_rating"`
		ApprovedReviews  int     `json:"approved_reviews"`
		CategoryAverages []struct {
			Category string  `json:"category"`
			Label    string  `json:"label"`
			Average  float64 `json:"average"`
		} `json:"category_averages"`
	}](t, resp)
	assert.Equal(t, 3, st.TotalReviews)
	assert.Equal(t, 7.7, st.AverageRating)
	assert.Equal(t, 0, st.ApprovedReviews)
	require.Len(t, st.CategoryAverages, 2)
	assert.Equal(t, "Cleanliness", st.CategoryAverages[0].Label)
}

func TestListings_ETagNotModified(t *testing.T) {
	f := newFixture(t, false)

	resp := f.do(t, http.MethodGet, "/api/listings", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	ls := decode[[]struct {
		ID            int64   `json:"id"`
		Name          string  `json:"name"`
		GooglePlaceID *string `json:"google_place_id"`
	}](t, resp)
	require.Len(t, ls, 2)
	assert.Equal(t, "place-a", *ls[0].GooglePlaceID)
	assert.Nil(t, ls[1].GooglePlaceID)

	resp = f.do(t, http.MethodGet, "/api/listings", nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Equal(t, etag, resp.Header.Get("ETag"))
}

func TestGetListing(t *testing.T) {
	f := newFixture(t, false)

	resp := f.do(t, http.MethodGet, "/api/listings/1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, resp)
	assert.Equal(t, "Loft A", got["name"])
	assert.NotContains(t, got, "google_place_id")

	p := requireProblem(t, f.do(t, http.MethodGet, "/api/listings/99", nil, nil), http.StatusNotFound)
	assert.Equal(t, "Listing not found", p.Detail)

	requireProblem(t, f.do(t, http.MethodGet, "/api/listings/abc", nil, nil), http.StatusBadRequest)
}

func TestApproveReview_ControlsPublicFeed(t *testing.T) {
	f := newFixture(t, false)

	resp := f.do(t, http.MethodGet, "/api/reviews/public/1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	resp = f.do(t, http.MethodPatch, "/api/reviews/1/approve?is_approved=true", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rv := decode[map[string]any](t, resp)
	assert.Equal(t, true, rv["is_approved"])
	assert.NotContains(t, rv, "listing")

	resp = f.do(t, http.MethodGet, "/api/reviews/public/1", nil, nil)
	pub := decode[[]map[string]any](t, resp)
	require.Len(t, pub, 1)
	assert.Equal(t, float64(7), pub[0]["hostaway_id"])

	resp = f.do(t, http.MethodPatch, "/api/reviews/1/approve", strings.NewReader(`{"is_approved": false}`),
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode[map[string]any](t, resp)["is_approved"])

	resp = f.do(t, http.MethodGet, "/api/reviews/public/1", nil, nil)
	assert.Empty(t, decode[[]map[string]any](t, resp))
}

func TestApproveReview_Errors(t *testing.T) {
	f := newFixture(t, false)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"missing flag", "/api/reviews/1/approve", "", http.StatusBadRequest},
		{"bad flag", "/api/reviews/1/approve?is_approved=maybe", "", http.StatusBadRequest},
		{"bad body", "/api/reviews/1/approve", "{", http.StatusBadRequest},
		{"bad id", "/api/reviews/x/approve?is_approved=true", "", http.StatusBadRequest},
		{"unknown review", "/api/reviews/999/approve?is_approved=true", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			requireProblem(t, f.do(t, http.MethodPatch, tc.path, body, nil), tc.status)
		})
	}
}

func TestSyncGoogle_NotConfigured(t *testing.T) {
	f := newFixture(t, false)
	p := requireProblem(t, f.do(t, http.MethodPost, "/api/google/sync/1", nil, nil), http.StatusInternalServerError)
	assert.Equal(t, "Google API key is not configured", p.Detail)
}

func TestSyncGoogle(t *testing.T) {
	f := newFixture(t, true)

	resp := f.do(t, http.MethodPost, "/api/google/sync/1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, resp)
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, float64(1), got["new_reviews_added"], "the 1700000000 review is already stored")

	requireProblem(t, f.do(t, http.MethodPost, "/api/google/sync/2", nil, nil), http.StatusBadRequest)
	requireProblem(t, f.do(t, http.MethodPost, "/api/google/sync/99", nil, nil), http.StatusNotFound)
}

func TestSyncGoogle_UpstreamStatus(t *testing.T) {
	f := newFixture(t, true)
	f.places.Err = &domain.UpstreamError{Service: "google_places", Status: http.StatusTooManyRequests, Body: "slow down"}

	p := requireProblem(t, f.do(t, http.MethodPost, "/api/google/sync/1", nil, nil), http.StatusTooManyRequests)
	assert.Equal(t, "Failed to fetch from Google: slow down", p.Detail)
}
