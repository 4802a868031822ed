package models

import "time"

// Transfer is one recorded relay-hop attempt, successful or failed.
type Transfer struct {
	ID            string    `json:"id"`
	Hop           string    `json:"hop"`
	SourceID      string    `json:"source_id"`
	DestinationID string    `json:"destination_id"`
	CommodityID   string    `json:"commodity_id"`
	Quantity      int64     `json:"quantity"`
	Status        string    `json:"status"` // Pending, Transfer Successful, Transfer failed
	CameFrom      string    `json:"came_from,omitempty"`
	SendingTo     string    `json:"sending_to,omitempty"`
	PriceOfCom    float64   `json:"price_of_com"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TransferRequest struct {
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	CommodityID   string `json:"commodity_id"`
	Quantity      int64  `json:"quantity"`
}

// Commodity mirrors the on-chain commodity record.
type Commodity struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	OwnerID        string  `json:"owner_id"`
	CameFrom       string  `json:"came_from"`
	SendingTo      string  `json:"sending_to"`
	PriceOfCom     float64 `json:"price_of_com"`
	TransferStatus string  `json:"transfer_status"`
}
