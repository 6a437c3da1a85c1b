package mysql

// LAST_INSERT_ID(id) makes the driver report the existing row's id on a name hit.
const findOrCreateListingSQL = `
INSERT INTO listings (name)
VALUES (?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

// Affected rows is 1 for a new review and 0 when hostaway_id already exists.
const insertReviewSQL = `
INSERT INTO reviews
  (hostaway_id, guest_name, review_text, channel, submitted_at, overall_rating, is_approved, listing_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = id
`

const insertCategoryPrefix = "INSERT INTO review_category_ratings (category, rating, review_id) VALUES "

const updateListingMetaSQL = `
UPDATE listings
SET google_place_id = COALESCE(?, google_place_id),
    image_url       = COALESCE(?, image_url)
WHERE id = ?
`

const setApprovalSQL = `UPDATE reviews SET is_approved = ? WHERE id = ?`

const reviewExistsSQL = `SELECT 1 FROM reviews WHERE hostaway_id = ? LIMIT 1`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getListingSQL = `
SELECT id, name, google_place_id, image_url
FROM listings
WHERE id = ?
`

const listListingsSQL = `
SELECT id, name, google_place_id, image_url
FROM listings
ORDER BY id
`

// Every review read joins its listing so callers never need a second trip.
const selectReviewsSQL = `
SELECT
  r.id,
  r.hostaway_id,
  r.guest_name,
  r.review_text,
  r.channel,
  r.submitted_at,
  r.overall_rating,
  r.is_approved,
  r.listing_id,
  l.name,
  l.google_place_id,
  l.image_url
FROM reviews r
JOIN listings l ON l.id = r.listing_id
`

const reviewsOrderSQL = "\nORDER BY r.submitted_at DESC, r.id DESC"

const selectCategoriesPrefix = `
SELECT id, category, rating, review_id
FROM review_category_ratings
WHERE review_id IN (`
