package app

import (
	"context"
	"errors"

	"guestreviews/internal/domain"
)

type QueryService struct {
	repo domain.ReviewRepository
}

func NewQueryService(r domain.ReviewRepository) *QueryService {
	return &QueryService{repo: r}
}

func (s *QueryService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.ListListings(ctx)
}

func (s *QueryService) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Listing{}, domain.NotFound("Listing not found", err)
	}
	return l, err
}

// ListReviews is the dashboard feed: newest first, listing and categories attached.
func (s *QueryService) ListReviews(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	return s.repo.ListReviews(ctx, f)
}

func (s *QueryService) HostawayReviews(ctx context.Context) ([]domain.Review, error) {
	return s.repo.ListReviews(ctx, domain.ReviewFilter{Channel: domain.ChannelHostaway})
}

// PublicReviews returns only approved reviews of one listing. An unknown
// listing simply has none.
func (s *QueryService) PublicReviews(ctx context.Context, listingID int64) ([]domain.Review, error) {
	rs, err := s.repo.ListPublicReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}
	out := rs[:0]
	for _, rv := range rs {
		if rv.IsApproved && rv.ListingID == listingID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (s *QueryService) Stats(ctx context.Context, f domain.ReviewFilter) (domain.ReviewStats, error) {
	rs, err := s.repo.ListReviews(ctx, f)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	return computeStats(rs), nil
}
