package domain

// GuestToHost marks a Hostaway record written by a guest about the stay.
const GuestToHost = "guest-to-host"

// HostawayRecord is one entry of the Hostaway reviews payload.
type HostawayRecord struct {
	ID           int64              `json:"id" validate:"required"`
	Type         string             `json:"type"`
	Status       string             `json:"status"`
	Rating       *float64           `json:"rating"`
	PublicReview string             `json:"publicReview"`
	Categories   []HostawayCategory `json:"reviewCategory" validate:"dive"`
	SubmittedAt  string             `json:"submittedAt" validate:"required"`
	GuestName    string             `json:"guestName" validate:"required"`
	ListingName  string             `json:"listingName" validate:"required"`
	ChannelName  string             `json:"channelName"`
}

type HostawayCategory struct {
	Category string `json:"category" validate:"required"`
	Rating   int    `json:"rating"`
}

// PlaceReview is a review as returned by the Google Places details endpoint.
// Rating is on Google's 1-5 scale; Time is unix seconds.
type PlaceReview struct {
	AuthorName string
	Rating     float64
	Text       string
	Time       int64
}
