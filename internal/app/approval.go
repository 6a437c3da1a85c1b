package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"guestreviews/internal/domain"
)

// ApprovalService is the manager-facing toggle deciding public visibility.
type ApprovalService struct {
	repo domain.ReviewRepository
}

func NewApprovalService(r domain.ReviewRepository) *ApprovalService {
	return &ApprovalService{repo: r}
}

func (s *ApprovalService) SetApproval(ctx context.Context, id int64, approved bool) (domain.Review, error) {
	rv, err := s.repo.SetApproval(ctx, id, approved)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Review{}, domain.NotFound("Review not found", err)
	}
	if err != nil {
		return domain.Review{}, err
	}
	log.Info().Int64("review_id", id).Bool("is_approved", approved).Msg("review approval updated")
	return rv, nil
}
