//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guestreviews/internal/adapters/google"
	"guestreviews/internal/adapters/hostaway"
	httpserver "guestreviews/internal/adapters/http_server"
	"guestreviews/internal/app"
	"guestreviews/internal/domain"
	"guestreviews/internal/testutil"
)

const seed = `{"status":"success","result":[
  {"id":7453,"type":"guest-to-host","status":"published","rating":null,"publicReview":"Spotless and quiet.",
   "reviewCategory":[{"category":"cleanliness","rating":10},{"category":"communication","rating":9},{"category":"respect_house_rules","rating":8}],
   "submittedAt":"2024-01-02 10:00:00","guestName":"Ana","listingName":"2B N1 A - 29 Shoreditch Heights"},
  {"id":7454,"type":"host-to-guest","status":"published","rating":10,"publicReview":"Lovely guest.",
   "reviewCategory":[],"submittedAt":"2024-01-03 10:00:00","guestName":"Host","listingName":"2B N1 A - 29 Shoreditch Heights"}
]}`

// fakePlaces serves a details payload with two reviews.
func fakePlaces(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("place_id") != "ChIJ-shoreditch" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"result": map[string]any{"reviews": []map[string]any{
				{"author_name": "Dee", "rating": 5, "text": "Perfect", "time": 1700000500},
				{"author_name": "", "rating": 4, "text": "Good", "time": 1700000000},
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func send(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(method, url, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

type reviewBody struct {
	ID            int64   `json:"id"`
	HostawayID    int64   `json:"hostaway_id"`
	GuestName     string  `json:"guest_name"`
	Channel       string  `json:"channel"`
	OverallRating float64 `json:"overall_rating"`
	IsApproved    bool    `json:"is_approved"`
	Listing       *struct {
		Name string `json:"name"`
	} `json:"listing"`
	CategoryRatings []struct {
		Category string `json:"category"`
		Rating   int    `json:"rating"`
	} `json:"category_ratings"`
}

// ---------- the test ----------
func TestHTTP_EndToEnd_SeedApproveSync(t *testing.T) {
	repo, _ := testutil.StartMySQL(t)
	ctx := context.Background()

	recs, err := hostaway.Decode(strings.NewReader(seed))
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	places, err := google.New(fakePlaces(t).URL, "test-key", 100, 5*time.Second)
	if err != nil {
		t.Fatalf("google.New: %v", err)
	}
	ing := app.NewIngestionService(repo, places, nil, 0)

	for i := 0; i < 2; i++ {
		sum, err := ing.SeedHostaway(ctx, recs)
		if err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
		if want := 1 - i; sum.Added != want {
			t.Fatalf("seed run %d added %d, want %d", i, sum.Added, want)
		}
	}

	s := httpserver.New(5 * time.Second)
	s.MountHandlers(&httpserver.Handlers{
		Q: app.NewQueryService(repo),
		A: app.NewApprovalService(repo),
		I: ing,
	})
	ts := httptest.NewServer(s.Mux())
	defer ts.Close()

	// seeded review is normalized
	var feed []reviewBody
	getJSON(t, ts.URL+"/api/reviews", &feed)
	if len(feed) != 1 {
		t.Fatalf("expected 1 review, got %d", len(feed))
	}
	rv := feed[0]
	if rv.HostawayID != 7453 || rv.OverallRating != 9.0 || rv.Channel != "hostaway" || rv.IsApproved {
		t.Fatalf("unexpected review: %+v", rv)
	}
	if rv.Listing == nil || rv.Listing.Name != "2B N1 A - 29 Shoreditch Heights" || len(rv.CategoryRatings) != 3 {
		t.Fatalf("attachments missing: %+v", rv)
	}

	var listings []struct {
		ID int64 `json:"id"`
	}
	getJSON(t, ts.URL+"/api/listings", &listings)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	listingID := listings[0].ID

	// sync before linking a place id
	if res := send(t, http.MethodPost, fmt.Sprintf("%s/api/google/sync/%d", ts.URL, listingID)); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("sync without place id: status %d", res.StatusCode)
	}
	if _, err := repo.UpdateListingMeta(ctx, listingID, domain.ListingMeta{GooglePlaceID: strPtr("ChIJ-shoreditch")}); err != nil {
		t.Fatalf("link: %v", err)
	}

	var sync struct {
		Status          string `json:"status"`
		NewReviewsAdded int    `json:"new_reviews_added"`
	}
	res := send(t, http.MethodPost, fmt.Sprintf("%s/api/google/sync/%d", ts.URL, listingID))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("sync: status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(&sync); err != nil {
		t.Fatalf("decode sync: %v", err)
	}
	if sync.Status != "success" || sync.NewReviewsAdded != 2 {
		t.Fatalf("unexpected sync result: %+v", sync)
	}
	res = send(t, http.MethodPost, fmt.Sprintf("%s/api/google/sync/%d", ts.URL, listingID))
	_ = json.NewDecoder(res.Body).Decode(&sync)
	if sync.NewReviewsAdded != 0 {
		t.Fatalf("second sync added %d", sync.NewReviewsAdded)
	}

	var googleFeed []reviewBody
	getJSON(t, ts.URL+"/api/reviews?channel=google&min_rating=10", &googleFeed)
	if len(googleFeed) != 1 || googleFeed[0].GuestName != "Dee" {
		t.Fatalf("unexpected google feed: %+v", googleFeed)
	}

	// nothing is public until approved
	var public []reviewBody
	getJSON(t, fmt.Sprintf("%s/api/reviews/public/%d", ts.URL, listingID), &public)
	if len(public) != 0 {
		t.Fatalf("expected empty public feed, got %d", len(public))
	}
	if res := send(t, http.MethodPatch, fmt.Sprintf("%s/api/reviews/%d/approve?is_approved=true", ts.URL, rv.ID)); res.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", res.StatusCode)
	}
	getJSON(t, fmt.Sprintf("%s/api/reviews/public/%d", ts.URL, listingID), &public)
	if len(public) != 1 || public[0].ID != rv.ID || !public[0].IsApproved {
		t.Fatalf("unexpected public feed: %+v", public)
	}
}

func strPtr(s string) *string { return &s }
