package domain

import (
	"context"
	"time"
)

type ReviewRepository interface {
	// Write paths
	FindOrCreateListing(ctx context.Context, name string) (Listing, error)
	UpdateListingMeta(ctx context.Context, id int64, m ListingMeta) (Listing, error)
	ReviewExists(ctx context.Context, hostawayID int64) (bool, error)
	// InsertReview stores r and its category ratings atomically. It reports
	// inserted=false, without error, when hostaway_id is already taken.
	InsertReview(ctx context.Context, r Review) (id int64, inserted bool, err error)
	SetApproval(ctx context.Context, id int64, approved bool) (Review, error)

	// Read paths
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)
	GetReview(ctx context.Context, id int64) (Review, error)
	ListReviews(ctx context.Context, f ReviewFilter) ([]Review, error)
	ListPublicReviews(ctx context.Context, listingID int64) ([]Review, error)
}

type PlacesClient interface {
	PlaceReviews(ctx context.Context, placeID string) ([]PlaceReview, error)
}

// SyncLocker guards a key for the duration of one sync. acquired=false means
// someone else holds it.
type SyncLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

// ReviewFilter narrows the dashboard feed. Nil/empty fields impose no constraint.
type ReviewFilter struct {
	ListingID *int64
	Channel   string
	MinRating *float64
	StartDate *time.Time
}

type IngestSummary struct {
	Seen        int
	Added       int
	Duplicates  int
	SkippedType int
	Invalid     int
}

type SyncResult struct {
	Status          string
	NewReviewsAdded int
}

type CategoryAverage struct {
	Category string
	Label    string
	Average  float64
}

type ReviewStats struct {
	TotalReviews     int
	AverageRating    float64
	ApprovedReviews  int
	CategoryAverages []CategoryAverage
}
