package httpserver

import (
	"time"

	"guestreviews/internal/domain"
)

type listingSummary struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

type listingDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	GooglePlaceID *string `json:"google_place_id"`
	ImageURL      *string `json:"image_url"`
}

type categoryDTO struct {
	Category string `json:"category"`
	Rating   int    `json:"rating"`
}

// reviewDTO is the bare review entity.
type reviewDTO struct {
	ID            int64     `json:"id"`
	HostawayID    int64     `json:"hostaway_id"`
	GuestName     string    `json:"guest_name"`
	ReviewText    string    `json:"review_text"`
	Channel       string    `json:"channel"`
	SubmittedAt   time.Time `json:"submitted_at"`
	OverallRating float64   `json:"overall_rating"`
	IsApproved    bool      `json:"is_approved"`
	ListingID     int64     `json:"listing_id"`
}

// reviewReadDTO adds the listing summary and category ratings.
type reviewReadDTO struct {
	reviewDTO
	Listing         *listingSummary `json:"listing"`
	CategoryRatings []categoryDTO   `json:"category_ratings"`
}

type categoryAverageDTO struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Average  float64 `json:"average"`
}

type statsDTO struct {
	TotalReviews     int                  `json:"total_reviews"`
	AverageRating    float64              `json:"average_rating"`
	ApprovedReviews  int                  `json:"approved_reviews"`
	CategoryAverages []categoryAverageDTO `json:"category_averages"`
}

type syncDTO struct {
	Status          string `json:"status"`
	NewReviewsAdded int    `json:"new_reviews_added"`
}

func toListing(l domain.Listing) listingDTO {
	return listingDTO{ID: l.ID, Name: l.Name, GooglePlaceID: l.GooglePlaceID, ImageURL: l.ImageURL}
}

func toListingSummary(l domain.Listing) listingSummary {
	return listingSummary{ID: l.ID, Name: l.Name, ImageURL: l.ImageURL}
}

func toReview(rv domain.Review) reviewDTO {
	return reviewDTO{
		ID:            rv.ID,
		HostawayID:    rv.HostawayID,
		GuestName:     rv.GuestName,
		ReviewText:    rv.ReviewText,
		Channel:       rv.Channel,
		SubmittedAt:   rv.SubmittedAt.UTC(),
		OverallRating: rv.OverallRating,
		IsApproved:    rv.IsApproved,
		ListingID:     rv.ListingID,
	}
}

func toReviewRead(rv domain.Review) reviewReadDTO {
	out := reviewReadDTO{reviewDTO: toReview(rv), CategoryRatings: make([]categoryDTO, 0, len(rv.CategoryRatings))}
	if rv.Listing != nil {
		s := toListingSummary(*rv.Listing)
		out.Listing = &s
	}
	for _, c := range rv.CategoryRatings {
		out.CategoryRatings = append(out.CategoryRatings, categoryDTO{Category: c.Category, Rating: c.Rating})
	}
	return out
}

func toReviews(rs []domain.Review) []reviewDTO {
	out := make([]reviewDTO, 0, len(rs))
	for _, rv := range rs {
		out = append(out, toReview(rv))
	}
	return out
}

func toReviewReads(rs []domain.Review) []reviewReadDTO {
	out := make([]reviewReadDTO, 0, len(rs))
	for _, rv := range rs {
		out = append(out, toReviewRead(rv))
	}
	return out
}

func toStats(st domain.ReviewStats) statsDTO {
	out := statsDTO{
		TotalReviews:     st.TotalReviews,
		AverageRating:    st.AverageRating,
		ApprovedReviews:  st.ApprovedReviews,
		CategoryAverages: make([]categoryAverageDTO, 0, len(st.CategoryAverages)),
	}
	for _, c := range st.CategoryAverages {
		out.CategoryAverages = append(out.CategoryAverages, categoryAverageDTO{Category: c.Category, Label: c.Label, Average: c.Average})
	}
	return out
}
