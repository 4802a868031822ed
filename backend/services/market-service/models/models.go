package models

import "time"

type Listing struct {
	ID           string    `json:"id"`
	CommodityID  string    `json:"commodity_id"`
	SellerID     string    `json:"seller_id"`
	Description  string    `json:"description"`
	State        string    `json:"state"` // FOR_SALE, SOLD, RESERVE_NOT_MET
	ReservePrice float64   `json:"reserve_price"`
	OfferCount   int       `json:"offer_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateListingRequest struct {
	CommodityID  string  `json:"commodity_id"`
	SellerID     string  `json:"seller_id"`
	Description  string  `json:"description"`
	ReservePrice float64 `json:"reserve_price"`
}

type MakeOfferRequest struct {
	MemberID string  `json:"member_id"`
	BidPrice float64 `json:"bid_price"`
}

type CloseBiddingResult struct {
	ListingID string `json:"listing_id"`
	State     string `json:"state"`
}
