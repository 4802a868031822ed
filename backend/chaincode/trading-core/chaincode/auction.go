package chaincode

// AuctionEngine handles offer submission onto a listing and the clearing
// decision that picks a winner and settles the trade. All collaborators are
// injected; the engine keeps no state of its own between transactions.
type AuctionEngine struct {
	listings    Registry[*Listing]
	commodities Registry[*Commodity]
	members     Registry[*Trader]
}

func NewAuctionEngine(listings Registry[*Listing], commodities Registry[*Commodity], members Registry[*Trader]) *AuctionEngine {
	return &AuctionEngine{
		listings:    listings,
		commodities: commodities,
		members:     members,
	}
}

// MakeOffer appends a bid to an open listing. Fails with InvalidStateError
// when the listing is no longer FOR_SALE.
func (e *AuctionEngine) MakeOffer(listingID string, offer Offer) error {
	listing, err := e.listings.Get(listingID)
	if err != nil {
		return err
	}
	if listing.State != StateForSale {
		return &InvalidStateError{Reason: "listing is not FOR_SALE"}
	}

	listing.Offers = append(listing.Offers, offer)
	return e.listings.Update(listing)
}

// CloseBidding ends the auction on a listing. The default outcome is
// RESERVE_NOT_MET; the highest bid wins only if it meets the reserve price.
// Equal top bids resolve to the earliest-submitted offer.
func (e *AuctionEngine) CloseBidding(listingID string) error {
	listing, err := e.listings.Get(listingID)
	if err != nil {
		return err
	}
	if listing.State != StateForSale {
		return &InvalidStateError{Reason: "listing is not FOR_SALE"}
	}

	listing.State = StateReserveNotMet

	hadOffers := len(listing.Offers) > 0
	var commodity *Commodity
	var buyer, seller *Trader

	if hadOffers {
		commodity, err = e.commodities.Get(listing.CommodityID)
		if err != nil {
			return err
		}

		// 1. Pick the winning bid. Strict > keeps the first occurrence of
		// the top price, so ties go to the earliest-submitted offer.
		highest := listing.Offers[0]
		for _, offer := range listing.Offers[1:] {
			if offer.BidPrice > highest.BidPrice {
				highest = offer
			}
		}

		if highest.BidPrice >= listing.ReservePrice {
			listing.State = StateSold

			buyer, err = e.members.Get(highest.MemberID)
			if err != nil {
				return err
			}
			seller, err = e.members.Get(commodity.OwnerID)
			if err != nil {
				return err
			}

			// 2. Settle balances. The settled amount is the seller's whole
			// q1 holding, not the bid price, and the buyer's qr1 is debited
			// without a sufficiency check; both carried over from the
			// network definition, so qr1 can go negative here.
			buyer.QR1 -= seller.Q1
			buyer.TC1 += seller.Q1
			seller.Q1 = 0

			// 3. Transfer ownership and discard the consumed offers.
			commodity.OwnerID = buyer.ID
			listing.Offers = nil
		}
	}

	// 4. Persist: commodity whenever any offer existed, listing always,
	// buyer and seller as a batch only on a sale.
	if hadOffers {
		if err := e.commodities.Update(commodity); err != nil {
			return err
		}
	}
	if err := e.listings.Update(listing); err != nil {
		return err
	}
	if listing.State == StateSold {
		return e.members.UpdateAll([]*Trader{buyer, seller})
	}
	return nil
}
