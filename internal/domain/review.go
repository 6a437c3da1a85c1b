package domain

import "time"

const (
	ChannelHostaway = "hostaway"
	ChannelGoogle   = "google"
)

type Review struct {
	ID              int64
	HostawayID      int64 // global dedup key across every channel
	GuestName       string
	ReviewText      string
	Channel         string
	SubmittedAt     time.Time
	OverallRating   float64 // always on the 1-10 scale
	IsApproved      bool
	ListingID       int64
	Listing         *Listing
	CategoryRatings []CategoryRating
}

type CategoryRating struct {
	ID       int64
	Category string
	Rating   int // source scale
	ReviewID int64
}
