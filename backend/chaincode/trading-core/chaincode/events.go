package chaincode

// EventNamespace qualifies every event this network emits.
const EventNamespace = "network.kisaanpower.trading"

// EventTransferNotification announces the outcome of a relay hop, success or
// failure alike. Off-chain indexers consume it to build provenance history.
const EventTransferNotification = "TransferNotification"

// Event is a typed notification published to the host chain.
type Event struct {
	Namespace string      `json:"namespace"`
	Name      string      `json:"name"`
	Payload   interface{} `json:"payload"`
}

// NewTransferNotification builds the relay notification carrying the
// commodity as it was persisted, including a failed transfer status.
func NewTransferNotification(commodity *Commodity) Event {
	return Event{
		Namespace: EventNamespace,
		Name:      EventTransferNotification,
		Payload:   commodity,
	}
}
