package chaincode

// Listing sale states
const (
	StateForSale       = "FOR_SALE"
	StateSold          = "SOLD"
	StateReserveNotMet = "RESERVE_NOT_MET"
)

// Transfer outcomes recorded on a commodity after a relay hop
const (
	TransferSuccessful = "Transfer Successful"
	TransferFailed     = "Transfer failed"

	// ProvenanceNone marks cameFrom/sendingTo on a failed hop.
	ProvenanceNone = "NULL"
)

// Trader roles along the relay chain
const (
	RoleMember           = "MEMBER"
	RoleLocalMandi       = "LOCAL_MANDI"
	RoleDestinationMandi = "DESTINATION_MANDI"
	RoleWholesaler       = "WHOLESALER"
)

// World-state key prefixes, one per entity type
const (
	DocTypeListing          = "LISTING"
	DocTypeCommodity        = "COMMODITY"
	DocTypeMember           = "MEMBER"
	DocTypeLocalMandi       = "LOCAL_MANDI"
	DocTypeDestinationMandi = "DESTINATION_MANDI"
	DocTypeWholesaler       = "WHOLESALER"
)

// Trader is any participant holding commodity quantity: the originating
// member, either mandi, or the wholesaler. qr1 is the quantity this trader
// can still receive, tc1 the quantity it can push onward, q1 the quantity on
// hand offered at auction, and p1 the unit price it quotes as a buyer.
type Trader struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Role string  `json:"role"`
	QR1  int64   `json:"qr1"`
	TC1  int64   `json:"tc1"`
	Q1   int64   `json:"q1"`
	P1   float64 `json:"p1"`
}

// Offer is a bid placed by a member against a listing. Immutable once made.
type Offer struct {
	MemberID string  `json:"member_id"`
	BidPrice float64 `json:"bid_price"`
}

// Listing puts a commodity up for auction-style bidding.
type Listing struct {
	ID           string  `json:"id"`
	CommodityID  string  `json:"commodity_id"`
	State        string  `json:"state"`
	ReservePrice float64 `json:"reserve_price"`
	Offers       []Offer `json:"offers,omitempty"`
}

// Commodity is the tradeable unit. The provenance fields record the outcome
// of the last relay hop that touched it.
type Commodity struct {
	ID             string  `json:"id"`
	Description    string  `json:"description"`
	OwnerID        string  `json:"owner_id"`
	CameFrom       string  `json:"came_from"`
	SendingTo      string  `json:"sending_to"`
	PriceOfCom     float64 `json:"price_of_com"`
	TransferStatus string  `json:"transfer_status"`
}

func (t *Trader) DocID() string    { return t.ID }
func (l *Listing) DocID() string   { return l.ID }
func (c *Commodity) DocID() string { return c.ID }
