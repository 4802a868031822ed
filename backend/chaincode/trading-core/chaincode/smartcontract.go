package chaincode

import (
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// SmartContract exposes the trading network transactions. Each method builds
// the registries over the transaction's stub and dispatches into the auction
// or relay engine.
type SmartContract struct {
	contractapi.Contract
}

type collaborators struct {
	listings          Registry[*Listing]
	commodities       Registry[*Commodity]
	members           Registry[*Trader]
	localMandis       Registry[*Trader]
	destinationMandis Registry[*Trader]
	wholesalers       Registry[*Trader]
	events            EventPublisher
}

func newCollaborators(ctx contractapi.TransactionContextInterface) collaborators {
	stub := ctx.GetStub()
	return collaborators{
		listings:          NewStateRegistry[Listing, *Listing](stub, DocTypeListing),
		commodities:       NewStateRegistry[Commodity, *Commodity](stub, DocTypeCommodity),
		members:           NewStateRegistry[Trader, *Trader](stub, DocTypeMember),
		localMandis:       NewStateRegistry[Trader, *Trader](stub, DocTypeLocalMandi),
		destinationMandis: NewStateRegistry[Trader, *Trader](stub, DocTypeDestinationMandi),
		wholesalers:       NewStateRegistry[Trader, *Trader](stub, DocTypeWholesaler),
		events:            NewStatePublisher(stub),
	}
}

func (c collaborators) traderRegistry(role string) (Registry[*Trader], error) {
	switch role {
	case RoleMember:
		return c.members, nil
	case RoleLocalMandi:
		return c.localMandis, nil
	case RoleDestinationMandi:
		return c.destinationMandis, nil
	case RoleWholesaler:
		return c.wholesalers, nil
	default:
		return nil, fmt.Errorf("unknown trader role %q", role)
	}
}

func (c collaborators) auction() *AuctionEngine {
	return NewAuctionEngine(c.listings, c.commodities, c.members)
}

func (c collaborators) relay() *RelayEngine {
	return NewRelayEngine(c.commodities, c.events,
		c.members, c.localMandis, c.destinationMandis, c.wholesalers)
}

// InitLedger initializes the ledger. Traders, commodities and listings are
// registered through the Create* transactions after deployment.
func (s *SmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return nil
}

// CreateTrader registers a participant under the registry for its role.
func (s *SmartContract) CreateTrader(ctx contractapi.TransactionContextInterface, id string, name string, role string, qr1 int64, tc1 int64, q1 int64, p1 float64) error {
	c := newCollaborators(ctx)
	registry, err := c.traderRegistry(role)
	if err != nil {
		return err
	}

	return registry.Add(&Trader{
		ID:   id,
		Name: name,
		Role: role,
		QR1:  qr1,
		TC1:  tc1,
		Q1:   q1,
		P1:   p1,
	})
}

// CreateCommodity registers a commodity owned by a member.
func (s *SmartContract) CreateCommodity(ctx contractapi.TransactionContextInterface, id string, description string, ownerID string) error {
	c := newCollaborators(ctx)
	if _, err := c.members.Get(ownerID); err != nil {
		return err
	}

	return c.commodities.Add(&Commodity{
		ID:          id,
		Description: description,
		OwnerID:     ownerID,
	})
}

// CreateListing puts a commodity up for sale.
func (s *SmartContract) CreateListing(ctx contractapi.TransactionContextInterface, id string, commodityID string, reservePrice float64) error {
	c := newCollaborators(ctx)
	if _, err := c.commodities.Get(commodityID); err != nil {
		return err
	}

	return c.listings.Add(&Listing{
		ID:           id,
		CommodityID:  commodityID,
		State:        StateForSale,
		ReservePrice: reservePrice,
	})
}

// MakeOffer places a member's bid against an open listing.
func (s *SmartContract) MakeOffer(ctx contractapi.TransactionContextInterface, listingID string, memberID string, bidPrice float64) error {
	c := newCollaborators(ctx)
	if _, err := c.members.Get(memberID); err != nil {
		return err
	}

	return c.auction().MakeOffer(listingID, Offer{MemberID: memberID, BidPrice: bidPrice})
}

// CloseBidding ends the auction on a listing and settles the winning bid,
// if any bid met the reserve.
func (s *SmartContract) CloseBidding(ctx contractapi.TransactionContextInterface, listingID string) error {
	return newCollaborators(ctx).auction().CloseBidding(listingID)
}

// SellToLocalMandi relays quantity from a member to a local mandi.
func (s *SmartContract) SellToLocalMandi(ctx contractapi.TransactionContextInterface, memberID string, localMandiID string, commodityID string, quantity int64) error {
	return newCollaborators(ctx).relay().Transfer(HopToLocalMandi, memberID, localMandiID, commodityID, quantity)
}

// SellToDestinationMandi relays quantity from a local mandi to a
// destination mandi.
func (s *SmartContract) SellToDestinationMandi(ctx contractapi.TransactionContextInterface, localMandiID string, destinationMandiID string, commodityID string, quantity int64) error {
	return newCollaborators(ctx).relay().Transfer(HopToDestinationMandi, localMandiID, destinationMandiID, commodityID, quantity)
}

// SellToWholesaler relays quantity from a destination mandi to a wholesaler.
func (s *SmartContract) SellToWholesaler(ctx contractapi.TransactionContextInterface, destinationMandiID string, wholesalerID string, commodityID string, quantity int64) error {
	return newCollaborators(ctx).relay().Transfer(HopToWholesaler, destinationMandiID, wholesalerID, commodityID, quantity)
}

// GetListing returns the listing state.
func (s *SmartContract) GetListing(ctx contractapi.TransactionContextInterface, id string) (*Listing, error) {
	return newCollaborators(ctx).listings.Get(id)
}

// GetCommodity returns the commodity state, including the provenance of the
// last relay hop.
func (s *SmartContract) GetCommodity(ctx contractapi.TransactionContextInterface, id string) (*Commodity, error) {
	return newCollaborators(ctx).commodities.Get(id)
}

// GetTrader returns a participant from the registry for its role.
func (s *SmartContract) GetTrader(ctx contractapi.TransactionContextInterface, role string, id string) (*Trader, error) {
	c := newCollaborators(ctx)
	registry, err := c.traderRegistry(role)
	if err != nil {
		return nil, err
	}
	return registry.Get(id)
}
