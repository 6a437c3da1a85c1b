// Package testutil holds in-memory stand-ins for the store used by unit tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"guestreviews/internal/domain"
)

// MemRepo is an in-memory domain.ReviewRepository with the same dedup and
// ordering rules as the MySQL store.
type MemRepo struct {
	mu         sync.Mutex
	listings   []domain.Listing
	reviews    []domain.Review
	nextCatID  int64
	InsertErr  error // returned by InsertReview when set
	InsertCall int
}

func NewMemRepo() *MemRepo { return &MemRepo{} }

// AddListing stores l as-is and assigns an id when l.ID is zero.
func (m *MemRepo) AddListing(l domain.Listing) domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == 0 {
		l.ID = int64(len(m.listings) + 1)
	}
	m.listings = append(m.listings, l)
	return l
}

// Counts returns the number of reviews and category ratings stored.
func (m *MemRepo) Counts() (reviews, categories int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rv := range m.reviews {
		categories += len(rv.CategoryRatings)
	}
	return len(m.reviews), categories
}

func (m *MemRepo) listingByID(id int64) (domain.Listing, bool) {
	for _, l := range m.listings {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Listing{}, false
}

func (m *MemRepo) FindOrCreateListing(_ context.Context, name string) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.listings {
		if l.Name == name {
			return l, nil
		}
	}
	l := domain.Listing{ID: int64(len(m.listings) + 1), Name: name}
	m.listings = append(m.listings, l)
	return l, nil
}

func (m *MemRepo) UpdateListingMeta(_ context.Context, id int64, meta domain.ListingMeta) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.listings {
		if m.listings[i].ID != id {
			continue
		}
		if meta.GooglePlaceID != nil {
			m.listings[i].GooglePlaceID = meta.GooglePlaceID
		}
		if meta.ImageURL != nil {
			m.listings[i].ImageURL = meta.ImageURL
		}
		return m.listings[i], nil
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (m *MemRepo) ReviewExists(_ context.Context, hostawayID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rv := range m.reviews {
		if rv.HostawayID == hostawayID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemRepo) InsertReview(_ context.Context, rv domain.Review) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCall++
	if m.InsertErr != nil {
		return 0, false, m.InsertErr
	}
	for _, ex := range m.reviews {
		if ex.HostawayID == rv.HostawayID {
			return 0, false, nil
		}
	}
	if _, ok := m.listingByID(rv.ListingID); !ok {
		return 0, false, domain.ErrNotFound
	}
	rv.ID = int64(len(m.reviews) + 1)
	rv.Listing = nil
	cats := make([]domain.CategoryRating, 0, len(rv.CategoryRatings))
	for _, c := range rv.CategoryRatings {
		m.nextCatID++
		c.ID = m.nextCatID
		c.ReviewID = rv.ID
		cats = append(cats, c)
	}
	rv.CategoryRatings = cats
	m.reviews = append(m.reviews, rv)
	return rv.ID, true, nil
}

func (m *MemRepo) SetApproval(_ context.Context, id int64, approved bool) (domain.Review, error) {
	m.mu.Lock()
	for i := range m.reviews {
		if m.reviews[i].ID == id {
			m.reviews[i].IsApproved = approved
			m.mu.Unlock()
			return m.GetReview(context.Background(), id)
		}
	}
	m.mu.Unlock()
	return domain.Review{}, domain.ErrNotFound
}

func (m *MemRepo) GetListing(_ context.Context, id int64) (domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.listingByID(id); ok {
		return l, nil
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (m *MemRepo) ListListings(_ context.Context) ([]domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Listing{}, m.listings...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemRepo) GetReview(_ context.Context, id int64) (domain.Review, error) {
	rs := m.filter(func(rv domain.Review) bool { return rv.ID == id })
	if len(rs) == 0 {
		return domain.Review{}, domain.ErrNotFound
	}
	return rs[0], nil
}

func (m *MemRepo) ListReviews(_ context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	return m.filter(func(rv domain.Review) bool {
		if f.ListingID != nil && rv.ListingID != *f.ListingID {
			return false
		}
		if f.Channel != "" && rv.Channel != f.Channel {
			return false
		}
		if f.MinRating != nil && rv.OverallRating < *f.MinRating {
			return false
		}
		if f.StartDate != nil && rv.SubmittedAt.Before(*f.StartDate) {
			return false
		}
		return true
	}), nil
}

func (m *MemRepo) ListPublicReviews(_ context.Context, listingID int64) ([]domain.Review, error) {
	return m.filter(func(rv domain.Review) bool {
		return rv.IsApproved && rv.ListingID == listingID
	}), nil
}

// filter copies matching reviews, attaches their listing and orders them
// newest first.
func (m *MemRepo) filter(keep func(domain.Review) bool) []domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Review{}
	for _, rv := range m.reviews {
		if !keep(rv) {
			continue
		}
		if l, ok := m.listingByID(rv.ListingID); ok {
			lc := l
			rv.Listing = &lc
		}
		rv.CategoryRatings = append([]domain.CategoryRating{}, rv.CategoryRatings...)
		out = append(out, rv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// StubPlaces is a domain.PlacesClient returning canned reviews or an error.
type StubPlaces struct {
	Reviews []domain.PlaceReview
	Err     error
	Calls   int
	PlaceID string
}

func (s *StubPlaces) PlaceReviews(_ context.Context, placeID string) ([]domain.PlaceReview, error) {
	s.Calls++
	s.PlaceID = placeID
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Reviews, nil
}
