package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"guestreviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Repo is the MySQL Data Store. The DSN must carry parseTime=true.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) FindOrCreateListing(ctx context.Context, name string) (domain.Listing, error) {
	res, err := r.db.ExecContext(ctx, findOrCreateListingSQL, name)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("find or create listing %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Listing{}, err
	}
	return r.GetListing(ctx, id)
}

func (r *Repo) UpdateListingMeta(ctx context.Context, id int64, m domain.ListingMeta) (domain.Listing, error) {
	if _, err := r.db.ExecContext(ctx, updateListingMetaSQL, valStr(m.GooglePlaceID), valStr(m.ImageURL), id); err != nil {
		return domain.Listing{}, err
	}
	return r.GetListing(ctx, id)
}

func (r *Repo) ReviewExists(ctx context.Context, hostawayID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, reviewExistsSQL, hostawayID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertReviewSQL,
		rv.HostawayID,
		rv.GuestName,
		rv.ReviewText,
		rv.Channel,
		rv.SubmittedAt.UTC(),
		rv.OverallRating,
		rv.IsApproved,
		rv.ListingID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert review %d: %w", rv.HostawayID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}

	if len(rv.CategoryRatings) > 0 {
		values := make([]string, 0, len(rv.CategoryRatings))
		args := make([]any, 0, len(rv.CategoryRatings)*3)
		for _, c := range rv.CategoryRatings {
			values = append(values, "(?,?,?)")
			args = append(args, c.Category, c.Rating, id)
		}
		if _, err := tx.ExecContext(ctx, insertCategoryPrefix+strings.Join(values, ","), args...); err != nil {
			return 0, false, fmt.Errorf("insert categories for review %d: %w", rv.HostawayID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Repo) SetApproval(ctx context.Context, id int64, approved bool) (domain.Review, error) {
	if _, err := r.db.ExecContext(ctx, setApprovalSQL, approved, id); err != nil {
		return domain.Review{}, err
	}
	// Affected rows is 0 for an unchanged flag too, so existence is checked by reading back.
	return r.GetReview(ctx, id)
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	var (
		l              domain.Listing
		placeID, image sql.NullString
	)
	err := r.db.QueryRowContext(ctx, getListingSQL, id).Scan(&l.ID, &l.Name, &placeID, &image)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	l.GooglePlaceID = nullStr(placeID)
	l.ImageURL = nullStr(image)
	return l, nil
}

func (r *Repo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listListingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		var (
			l              domain.Listing
			placeID, image sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &placeID, &image); err != nil {
			return nil, err
		}
		l.GooglePlaceID = nullStr(placeID)
		l.ImageURL = nullStr(image)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	rs, err := r.queryReviews(ctx, selectReviewsSQL+"WHERE r.id = ?", id)
	if err != nil {
		return domain.Review{}, err
	}
	if len(rs) == 0 {
		return domain.Review{}, domain.ErrNotFound
	}
	return rs[0], nil
}

func (r *Repo) ListReviews(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	var (
		conds []string
		args  []any
	)
	if f.ListingID != nil {
		conds = append(conds, "r.listing_id = ?")
		args = append(args, *f.ListingID)
	}
	if f.Channel != "" {
		conds = append(conds, "r.channel = ?")
		args = append(args, f.Channel)
	}
	if f.MinRating != nil {
		conds = append(conds, "r.overall_rating >= ?")
		args = append(args, *f.MinRating)
	}
	if f.StartDate != nil {
		conds = append(conds, "r.submitted_at >= ?")
		args = append(args, f.StartDate.UTC())
	}

	q := selectReviewsSQL
	if len(conds) > 0 {
		q += "WHERE " + strings.Join(conds, " AND ")
	}
	return r.queryReviews(ctx, q+reviewsOrderSQL, args...)
}

func (r *Repo) ListPublicReviews(ctx context.Context, listingID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx,
		selectReviewsSQL+"WHERE r.listing_id = ? AND r.is_approved = TRUE"+reviewsOrderSQL,
		listingID,
	)
}

// queryReviews runs a selectReviewsSQL based query and attaches the category
// ratings of every returned review with one extra IN query.
func (r *Repo) queryReviews(ctx context.Context, q string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var (
			rv             domain.Review
			l              domain.Listing
			placeID, image sql.NullString
		)
		if err := rows.Scan(
			&rv.ID,
			&rv.HostawayID,
			&rv.GuestName,
			&rv.ReviewText,
			&rv.Channel,
			&rv.SubmittedAt,
			&rv.OverallRating,
			&rv.IsApproved,
			&rv.ListingID,
			&l.Name,
			&placeID,
			&image,
		); err != nil {
			return nil, err
		}
		l.ID = rv.ListingID
		l.GooglePlaceID = nullStr(placeID)
		l.ImageURL = nullStr(image)
		rv.Listing = &l
		rv.CategoryRatings = []domain.CategoryRating{}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	return out, r.attachCategories(ctx, out)
}

func (r *Repo) attachCategories(ctx context.Context, rs []domain.Review) error {
	idx := make(map[int64]int, len(rs))
	marks := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs))
	for i, rv := range rs {
		idx[rv.ID] = i
		marks = append(marks, "?")
		args = append(args, rv.ID)
	}

	rows, err := r.db.QueryContext(ctx, selectCategoriesPrefix+strings.Join(marks, ",")+") ORDER BY id", args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.CategoryRating
		if err := rows.Scan(&c.ID, &c.Category, &c.Rating, &c.ReviewID); err != nil {
			return err
		}
		if i, ok := idx[c.ReviewID]; ok {
			rs[i].CategoryRatings = append(rs[i].CategoryRatings, c)
		}
	}
	return rows.Err()
}
