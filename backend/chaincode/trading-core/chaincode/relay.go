package chaincode

import "fmt"

// Hop names for the fixed member → local mandi → destination mandi →
// wholesaler chain.
const (
	HopToLocalMandi       = "TO_LOCAL_MANDI"
	HopToDestinationMandi = "TO_DESTINATION_MANDI"
	HopToWholesaler       = "TO_WHOLESALER"
)

// Hop describes one leg of the relay chain: which registries hold the
// source and destination traders for that leg.
type Hop struct {
	Name        string
	Source      Registry[*Trader]
	Destination Registry[*Trader]
}

// RelayEngine moves commodity quantity one hop at a time along the chain,
// recording provenance and outcome on the commodity itself. One generic
// transfer serves all three hops; only the hop descriptor changes.
type RelayEngine struct {
	commodities Registry[*Commodity]
	events      EventPublisher
	hops        []Hop
}

func NewRelayEngine(
	commodities Registry[*Commodity],
	events EventPublisher,
	members, localMandis, destinationMandis, wholesalers Registry[*Trader],
) *RelayEngine {
	return &RelayEngine{
		commodities: commodities,
		events:      events,
		hops: []Hop{
			{Name: HopToLocalMandi, Source: members, Destination: localMandis},
			{Name: HopToDestinationMandi, Source: localMandis, Destination: destinationMandis},
			{Name: HopToWholesaler, Source: destinationMandis, Destination: wholesalers},
		},
	}
}

func (e *RelayEngine) hop(name string) (Hop, bool) {
	for _, h := range e.hops {
		if h.Name == name {
			return h, true
		}
	}
	return Hop{}, false
}

// Transfer runs one relay hop. A capacity shortfall is a recorded outcome on
// the commodity, never an error: all three entities are persisted and the
// notification fires whether the hop succeeded or failed. Callers learn the
// outcome from commodity.transfer_status.
func (e *RelayEngine) Transfer(hopName, sourceID, destinationID, commodityID string, quantity int64) error {
	hop, ok := e.hop(hopName)
	if !ok {
		return fmt.Errorf("unknown relay hop %q", hopName)
	}

	source, err := hop.Source.Get(sourceID)
	if err != nil {
		return err
	}
	destination, err := hop.Destination.Get(destinationID)
	if err != nil {
		return err
	}
	commodity, err := e.commodities.Get(commodityID)
	if err != nil {
		return err
	}

	// 1. Both capacity constraints must hold: the destination can still
	// receive the quantity and the source can still push it onward.
	if destination.QR1-quantity >= 0 && source.TC1-quantity >= 0 {
		// 2. Move the quantity. The destination's tc1 grows so the goods
		// are available to the next hop.
		destination.QR1 -= quantity
		source.TC1 -= quantity
		destination.TC1 += quantity

		commodity.CameFrom = source.Name
		commodity.SendingTo = destination.Name
		commodity.PriceOfCom = destination.P1
		commodity.TransferStatus = TransferSuccessful
	} else {
		// 3. Failed hop: stamp the outcome, move nothing.
		commodity.TransferStatus = TransferFailed
		commodity.CameFrom = ProvenanceNone
		commodity.SendingTo = ProvenanceNone
		commodity.PriceOfCom = 0
	}

	// 4. Persist source, destination, commodity in that order, on both the
	// success and the failure path.
	if err := hop.Source.Update(source); err != nil {
		return err
	}
	if err := hop.Destination.Update(destination); err != nil {
		return err
	}
	if err := e.commodities.Update(commodity); err != nil {
		return err
	}

	// 5. Announce the outcome.
	return e.events.Publish(NewTransferNotification(commodity))
}
