package chaincode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relayFixture struct {
	commodities       *memRegistry[Commodity, *Commodity]
	members           *memRegistry[Trader, *Trader]
	localMandis       *memRegistry[Trader, *Trader]
	destinationMandis *memRegistry[Trader, *Trader]
	wholesalers       *memRegistry[Trader, *Trader]
	events            *memPublisher
	engine            *RelayEngine
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	f := &relayFixture{
		commodities:       newMemRegistry[Commodity, *Commodity](DocTypeCommodity),
		members:           newMemRegistry[Trader, *Trader](DocTypeMember),
		localMandis:       newMemRegistry[Trader, *Trader](DocTypeLocalMandi),
		destinationMandis: newMemRegistry[Trader, *Trader](DocTypeDestinationMandi),
		wholesalers:       newMemRegistry[Trader, *Trader](DocTypeWholesaler),
		events:            &memPublisher{},
	}
	f.engine = NewRelayEngine(f.commodities, f.events,
		f.members, f.localMandis, f.destinationMandis, f.wholesalers)

	require.NoError(t, f.members.Add(&Trader{ID: "farmer", Name: "Ramesh", Role: RoleMember, TC1: 50}))
	require.NoError(t, f.localMandis.Add(&Trader{ID: "lm", Name: "Karnal Mandi", Role: RoleLocalMandi, QR1: 100, P1: 22}))
	require.NoError(t, f.destinationMandis.Add(&Trader{ID: "dm", Name: "Azadpur Mandi", Role: RoleDestinationMandi, QR1: 80, P1: 27}))
	require.NoError(t, f.wholesalers.Add(&Trader{ID: "ws", Name: "Gupta Traders", Role: RoleWholesaler, QR1: 60, P1: 35}))
	require.NoError(t, f.commodities.Add(&Commodity{ID: "com-1", Description: "wheat", OwnerID: "farmer"}))
	return f
}

func TestTransferSuccess(t *testing.T) {
	f := newRelayFixture(t)

	err := f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 30)
	require.NoError(t, err)

	source := f.members.mustGet("farmer")
	destination := f.localMandis.mustGet("lm")
	assert.Equal(t, int64(20), source.TC1)
	assert.Equal(t, int64(70), destination.QR1)
	assert.Equal(t, int64(30), destination.TC1)

	commodity := f.commodities.mustGet("com-1")
	assert.Equal(t, TransferSuccessful, commodity.TransferStatus)
	assert.Equal(t, "Ramesh", commodity.CameFrom)
	assert.Equal(t, "Karnal Mandi", commodity.SendingTo)
	assert.Equal(t, float64(22), commodity.PriceOfCom)

	require.Len(t, f.events.published, 1)
	assert.Equal(t, EventTransferNotification, f.events.published[0].Name)
}

func TestTransferDestinationCapacityExceeded(t *testing.T) {
	f := newRelayFixture(t)
	lm := f.localMandis.mustGet("lm")
	lm.QR1 = 10
	require.NoError(t, f.localMandis.Update(lm))
	f.localMandis.updates = 0

	err := f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 30)
	require.NoError(t, err, "a capacity shortfall is an outcome, not an error")

	// no quantity moved
	assert.Equal(t, int64(50), f.members.mustGet("farmer").TC1)
	assert.Equal(t, int64(10), f.localMandis.mustGet("lm").QR1)
	assert.Equal(t, int64(0), f.localMandis.mustGet("lm").TC1)

	commodity := f.commodities.mustGet("com-1")
	assert.Equal(t, TransferFailed, commodity.TransferStatus)
	assert.Equal(t, ProvenanceNone, commodity.CameFrom)
	assert.Equal(t, ProvenanceNone, commodity.SendingTo)
	assert.Zero(t, commodity.PriceOfCom)

	// the failed attempt is still persisted and announced
	assert.Equal(t, 1, f.members.updates)
	assert.Equal(t, 1, f.localMandis.updates)
	assert.Equal(t, 1, f.commodities.updates)
	assert.Len(t, f.events.published, 1)
}

func TestTransferSourceCapacityExceeded(t *testing.T) {
	f := newRelayFixture(t)

	err := f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 60)
	require.NoError(t, err)

	assert.Equal(t, int64(50), f.members.mustGet("farmer").TC1)
	assert.Equal(t, int64(100), f.localMandis.mustGet("lm").QR1)
	assert.Equal(t, TransferFailed, f.commodities.mustGet("com-1").TransferStatus)
}

func TestTransferExactCapacity(t *testing.T) {
	f := newRelayFixture(t)

	err := f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 50)
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.members.mustGet("farmer").TC1)
	assert.Equal(t, TransferSuccessful, f.commodities.mustGet("com-1").TransferStatus)
}

func TestTransferUnknownHop(t *testing.T) {
	f := newRelayFixture(t)

	err := f.engine.Transfer("TO_RETAILER", "farmer", "lm", "com-1", 10)
	require.Error(t, err)
	assert.Empty(t, f.events.published)
}

func TestTransferMissingTrader(t *testing.T) {
	f := newRelayFixture(t)

	err := f.engine.Transfer(HopToLocalMandi, "farmer", "no-such-mandi", "com-1", 10)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTransferChainComposition(t *testing.T) {
	f := newRelayFixture(t)

	require.NoError(t, f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 30))
	require.NoError(t, f.engine.Transfer(HopToDestinationMandi, "lm", "dm", "com-1", 30))
	require.NoError(t, f.engine.Transfer(HopToWholesaler, "dm", "ws", "com-1", 30))

	// tc1 granted at hop N is exactly what hop N+1 drew down
	assert.Equal(t, int64(0), f.localMandis.mustGet("lm").TC1)
	assert.Equal(t, int64(0), f.destinationMandis.mustGet("dm").TC1)
	assert.Equal(t, int64(30), f.wholesalers.mustGet("ws").TC1)
	assert.Equal(t, int64(30), f.wholesalers.mustGet("ws").QR1, "60 capacity less 30 received")

	commodity := f.commodities.mustGet("com-1")
	assert.Equal(t, TransferSuccessful, commodity.TransferStatus)
	assert.Equal(t, "Azadpur Mandi", commodity.CameFrom)
	assert.Equal(t, "Gupta Traders", commodity.SendingTo)
	assert.Equal(t, float64(35), commodity.PriceOfCom)
	assert.Len(t, f.events.published, 3)
}

func TestTransferFailedHopLeavesChainResumable(t *testing.T) {
	f := newRelayFixture(t)

	require.NoError(t, f.engine.Transfer(HopToLocalMandi, "farmer", "lm", "com-1", 30))
	// second hop asks for more than the local mandi can push onward
	require.NoError(t, f.engine.Transfer(HopToDestinationMandi, "lm", "dm", "com-1", 40))
	assert.Equal(t, TransferFailed, f.commodities.mustGet("com-1").TransferStatus)

	// a retry within capacity succeeds against the untouched balances
	require.NoError(t, f.engine.Transfer(HopToDestinationMandi, "lm", "dm", "com-1", 30))
	assert.Equal(t, TransferSuccessful, f.commodities.mustGet("com-1").TransferStatus)
	assert.Equal(t, int64(30), f.destinationMandis.mustGet("dm").TC1)
}
