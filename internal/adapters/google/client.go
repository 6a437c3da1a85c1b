// Package google pulls place reviews from the Google Places details API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"guestreviews/internal/adapters/observability"
	"guestreviews/internal/domain"
)

const (
	DefaultBase = "https://maps.googleapis.com/maps/api/place"
	service     = "google_places"
	endpoint    = "details"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if base == "" {
		base = DefaultBase
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Reviews []struct {
			AuthorName string  `json:"author_name"`
			Rating     float64 `json:"rating"`
			Text       string  `json:"text"`
			Time       int64   `json:"time"`
		} `json:"reviews"`
	} `json:"result"`
}

// PlaceReviews makes exactly one details call for placeID. Failures of the
// call itself come back as *domain.UpstreamError; nothing is retried.
func (c *Client) PlaceReviews(ctx context.Context, placeID string) ([]domain.PlaceReview, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "reviews")
	q.Set("key", c.key)

	var out detailsResponse
	if err := c.get(ctx, c.base+"/details/json?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	switch out.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		body := out.Status
		if out.ErrorMessage != "" {
			body += ": " + out.ErrorMessage
		}
		return nil, &domain.UpstreamError{Service: service, Status: http.StatusBadGateway, Body: body}
	}

	reviews := make([]domain.PlaceReview, 0, len(out.Result.Reviews))
	for _, r := range out.Result.Reviews {
		reviews = append(reviews, domain.PlaceReview{
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Text:       r.Text,
			Time:       r.Time,
		})
	}
	return reviews, nil
}

// get performs one GET with client-side rate limiting and decodes JSON into out.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guestreviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		observability.ObserveExternal(service, endpoint, status, time.Since(start))
		return &domain.UpstreamError{Service: service, Status: status, Err: redactKey(err, c.key)}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.UpstreamError{Service: service, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode places response: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// redactKey keeps the API key out of *url.Error messages, which embed the URL.
func redactKey(err error, key string) error {
	var ue *url.Error
	if errors.As(err, &ue) && key != "" {
		return errors.New(strings.ReplaceAll(ue.Error(), key, "REDACTED"))
	}
	return err
}
