package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"guestreviews/internal/domain"
)

// hostawayTimeLayout is the submittedAt format of the Hostaway payload.
const hostawayTimeLayout = "2006-01-02 15:04:05"

const (
	googleScale       = 2.0 // Google rates 1-5, the canonical scale is 1-10
	googleDefaultUser = "Google User"
)

var validate = validator.New()

func isGuestReview(rec domain.HostawayRecord) bool {
	return rec.Type == domain.GuestToHost
}

// hostawayOverall picks the explicit top-level rating when present and falls
// back to the mean of the category ratings (0 when there are none).
func hostawayOverall(rec domain.HostawayRecord) float64 {
	if rec.Rating != nil {
		return *rec.Rating
	}
	return meanCategoryRating(rec.Categories)
}

func meanCategoryRating(cs []domain.HostawayCategory) float64 {
	if len(cs) == 0 {
		return 0.0
	}
	total := 0
	for _, c := range cs {
		total += c.Rating
	}
	return float64(total) / float64(len(cs))
}

func googleOverall(sourceRating float64) float64 {
	return sourceRating * googleScale
}

func parseSubmittedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(hostawayTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("submittedAt %q: unsupported format", s)
	}
	return t.UTC(), nil
}

// normalizeHostaway maps a guest-authored Hostaway record onto the canonical
// Review. ListingID is left for the caller to resolve.
func normalizeHostaway(rec domain.HostawayRecord) (domain.Review, error) {
	if err := validate.Struct(rec); err != nil {
		return domain.Review{}, err
	}
	submitted, err := parseSubmittedAt(rec.SubmittedAt)
	if err != nil {
		return domain.Review{}, err
	}

	channel := strings.TrimSpace(rec.ChannelName)
	if channel == "" {
		channel = domain.ChannelHostaway
	}

	cats := make([]domain.CategoryRating, 0, len(rec.Categories))
	for _, c := range rec.Categories {
		cats = append(cats, domain.CategoryRating{Category: c.Category, Rating: c.Rating})
	}

	return domain.Review{
		HostawayID:      rec.ID,
		GuestName:       rec.GuestName,
		ReviewText:      rec.PublicReview,
		Channel:         channel,
		SubmittedAt:     submitted,
		OverallRating:   hostawayOverall(rec),
		IsApproved:      false,
		CategoryRatings: cats,
	}, nil
}

// normalizeGoogle maps a Places review. Its unix timestamp doubles as the
// dedup key since Places exposes no stable review id.
func normalizeGoogle(p domain.PlaceReview, listingID int64) domain.Review {
	name := strings.TrimSpace(p.AuthorName)
	if name == "" {
		name = googleDefaultUser
	}
	return domain.Review{
		HostawayID:      p.Time,
		GuestName:       name,
		ReviewText:      p.Text,
		Channel:         domain.ChannelGoogle,
		SubmittedAt:     time.Unix(p.Time, 0).UTC(),
		OverallRating:   googleOverall(p.Rating),
		IsApproved:      false,
		ListingID:       listingID,
		CategoryRatings: []domain.CategoryRating{},
	}
}
