package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guestreviews/internal/app"
	"guestreviews/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	A *app.ApprovalService
	I *app.IngestionService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/reviews/hostaway", h.hostawayReviews)
		r.Get("/reviews", h.listReviews)
		r.Get("/reviews/stats", h.reviewStats)
		r.Get("/reviews/public/{listingID}", h.publicReviews)
		r.Patch("/reviews/{id}/approve", h.approveReview)
		r.Get("/listings", h.listListings)
		r.Get("/listings/{id}", h.getListing)
		r.Post("/google/sync/{listingID}", h.syncGoogle)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError renders service errors. Typed errors keep their status and
// detail; anything else is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Status >= 500 {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		}
		writeProblem(w, de.Status, http.StatusText(de.Status), de.Detail)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "not found")
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "internal error")
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// respondGET writes v with a weak ETag and answers 304 when the client
// already has this version.
func respondGET(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

var startDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseStartDate(s string) (time.Time, error) {
	for _, layout := range startDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("start_date must be an ISO-8601 date or timestamp")
}

// parseFilter reads the dashboard query parameters; all are optional.
func parseFilter(r *http.Request) (domain.ReviewFilter, error) {
	q := r.URL.Query()
	var f domain.ReviewFilter

	if v := strings.TrimSpace(q.Get("listing_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("listing_id must be an integer")
		}
		f.ListingID = &id
	}
	f.Channel = strings.TrimSpace(q.Get("channel"))
	if v := strings.TrimSpace(q.Get("min_rating")); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
			return f, errors.New("min_rating must be a number")
		}
		f.MinRating = &m
	}
	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		t, err := parseStartDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	return f, nil
}

func (h *Handlers) hostawayReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.HostawayReviews(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondGET(w, r, toReviews(rs))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	rs, err := h.Q.ListReviews(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondGET(w, r, toReviewReads(rs))
}

func (h *Handlers) reviewStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	st, err := h.Q.Stats(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondGET(w, r, toStats(st))
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "listingID")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "listing_id must be a number")
		return
	}
	rs, err := h.Q.PublicReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondGET(w, r, toReviewReads(rs))
}

// approveReview takes is_approved from the query string, or from a JSON body.
func (h *Handlers) approveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	var approved *bool
	if v := r.URL.Query().Get("is_approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid is_approved", "is_approved must be true or false")
			return
		}
		approved = &b
	} else if r.Body != nil && r.ContentLength != 0 {
		var body struct {
			IsApproved *bool `json:"is_approved"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON like {\"is_approved\": true}")
			return
		}
		approved = body.IsApproved
	}
	if approved == nil {
		writeProblem(w, http.StatusBadRequest, "Missing is_approved", "is_approved is required")
		return
	}

	rv, err := h.A.SetApproval(r.Context(), id, *approved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReview(rv))
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Q.ListListings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]listingDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListing(l))
	}
	respondGET(w, r, out)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondGET(w, r, toListingSummary(l))
}

func (h *Handlers) syncGoogle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "listingID")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "listing_id must be a number")
		return
	}
	res, err := h.I.SyncGoogle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncDTO{Status: res.Status, NewReviewsAdded: res.NewReviewsAdded})
}
