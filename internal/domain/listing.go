package domain

type Listing struct {
	ID            int64
	Name          string
	GooglePlaceID *string
	ImageURL      *string
}

// ListingMeta carries the optional listing fields maintained by operators.
// A nil field is left unchanged.
type ListingMeta struct {
	GooglePlaceID *string
	ImageURL      *string
}
