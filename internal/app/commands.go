package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"guestreviews/internal/adapters/observability"
	"guestreviews/internal/domain"
)

const (
	outcomeAdded     = "added"
	outcomeDuplicate = "duplicate"
	outcomeSkipped   = "skipped"
	outcomeInvalid   = "invalid"
)

type IngestionService struct {
	repo    domain.ReviewRepository
	places  domain.PlacesClient // nil when no API key is configured
	lock    domain.SyncLocker   // nil disables the sync guard
	lockTTL time.Duration
}

func NewIngestionService(r domain.ReviewRepository, p domain.PlacesClient, l domain.SyncLocker, lockTTL time.Duration) *IngestionService {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &IngestionService{repo: r, places: p, lock: l, lockTTL: lockTTL}
}

// SeedHostaway ingests a Hostaway batch in order. Every review is committed on
// its own, so an interrupted run can be repeated without creating duplicates.
func (s *IngestionService) SeedHostaway(ctx context.Context, recs []domain.HostawayRecord) (domain.IngestSummary, error) {
	var sum domain.IngestSummary
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Seen++

		if !isGuestReview(rec) {
			sum.SkippedType++
			observability.ObserveIngest(domain.ChannelHostaway, outcomeSkipped)
			continue
		}

		rv, err := normalizeHostaway(rec)
		if err != nil {
			sum.Invalid++
			observability.ObserveIngest(domain.ChannelHostaway, outcomeInvalid)
			log.Warn().Err(err).Int64("hostaway_id", rec.ID).Msg("skipping invalid hostaway record")
			continue
		}

		exists, err := s.repo.ReviewExists(ctx, rv.HostawayID)
		if err != nil {
			return sum, fmt.Errorf("check review %d: %w", rv.HostawayID, err)
		}
		if exists {
			sum.Duplicates++
			observability.ObserveIngest(rv.Channel, outcomeDuplicate)
			log.Debug().Int64("hostaway_id", rv.HostawayID).Msg("review already ingested")
			continue
		}

		listing, err := s.repo.FindOrCreateListing(ctx, rec.ListingName)
		if err != nil {
			return sum, err
		}
		rv.ListingID = listing.ID

		_, inserted, err := s.repo.InsertReview(ctx, rv)
		if err != nil {
			return sum, err
		}
		if !inserted {
			sum.Duplicates++
			observability.ObserveIngest(rv.Channel, outcomeDuplicate)
			continue
		}
		sum.Added++
		observability.ObserveIngest(rv.Channel, outcomeAdded)
	}

	log.Info().
		Int("seen", sum.Seen).
		Int("added", sum.Added).
		Int("duplicates", sum.Duplicates).
		Int("skipped_type", sum.SkippedType).
		Int("invalid", sum.Invalid).
		Msg("hostaway seed finished")
	return sum, nil
}

// SyncGoogle pulls the Places reviews of one listing and stores the new ones.
func (s *IngestionService) SyncGoogle(ctx context.Context, listingID int64) (domain.SyncResult, error) {
	if s.places == nil {
		return domain.SyncResult{}, domain.Configuration("Google API key is not configured")
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SyncResult{}, domain.NotFound("Listing not found", err)
		}
		return domain.SyncResult{}, domain.Internal(err.Error(), err)
	}
	if listing.GooglePlaceID == nil || *listing.GooglePlaceID == "" {
		return domain.SyncResult{}, domain.BadRequest("Listing has no Google Place ID", nil)
	}

	if s.lock != nil {
		release, ok, err := s.lock.Acquire(ctx, fmt.Sprintf("sync:google:%d", listingID), s.lockTTL)
		switch {
		case err != nil:
			log.Warn().Err(err).Int64("listing_id", listingID).Msg("sync lock unavailable, continuing unguarded")
		case !ok:
			return domain.SyncResult{}, domain.Conflict("A Google sync for this listing is already running")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Int64("listing_id", listingID).Msg("sync lock release failed")
				}
			}()
		}
	}

	reviews, err := s.places.PlaceReviews(ctx, *listing.GooglePlaceID)
	if err != nil {
		var up *domain.UpstreamError
		if errors.As(err, &up) {
			detail := up.Body
			if detail == "" && up.Err != nil {
				detail = up.Err.Error()
			}
			return domain.SyncResult{}, domain.Gateway(up.Status, "Failed to fetch from Google: "+detail, err)
		}
		return domain.SyncResult{}, domain.Internal(err.Error(), err)
	}

	added := 0
	for _, p := range reviews {
		// the timestamp is the dedup key; without one the review cannot be stored
		if p.Time <= 0 {
			observability.ObserveIngest(domain.ChannelGoogle, outcomeInvalid)
			log.Warn().Int64("listing_id", listing.ID).Str("author", p.AuthorName).Msg("skipping google review without timestamp")
			continue
		}
		exists, err := s.repo.ReviewExists(ctx, p.Time)
		if err != nil {
			return domain.SyncResult{}, domain.Internal(err.Error(), err)
		}
		if exists {
			observability.ObserveIngest(domain.ChannelGoogle, outcomeDuplicate)
			continue
		}
		_, inserted, err := s.repo.InsertReview(ctx, normalizeGoogle(p, listing.ID))
		if err != nil {
			return domain.SyncResult{}, domain.Internal(err.Error(), err)
		}
		if !inserted {
			observability.ObserveIngest(domain.ChannelGoogle, outcomeDuplicate)
			continue
		}
		added++
		observability.ObserveIngest(domain.ChannelGoogle, outcomeAdded)
	}

	log.Info().
		Int64("listing_id", listing.ID).
		Int("fetched", len(reviews)).
		Int("added", added).
		Msg("google sync finished")
	return domain.SyncResult{Status: "success", NewReviewsAdded: added}, nil
}
