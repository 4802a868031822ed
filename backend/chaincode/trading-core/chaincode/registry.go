package chaincode

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// NotFoundError reports a registry lookup or update against an identity that
// does not exist in the world state.
type NotFoundError struct {
	DocType string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.DocType, e.ID)
}

// ConflictError reports a concurrent conflicting write detected by the host.
// The engines never raise it themselves; on Fabric the ordering service's
// read/write-set check aborts the whole transaction instead, so this type
// exists for hosts that surface the conflict to the caller.
type ConflictError struct {
	DocType string
	ID      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified by a concurrent transaction", e.DocType, e.ID)
}

// InvalidStateError reports a transition attempted against an entity whose
// state enum does not allow it. Raised before any write happens.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

// Keyed is implemented by every entity that a registry can persist.
type Keyed interface {
	DocID() string
}

// Registry stores and retrieves one entity type by identity. T is the
// pointer form of the entity (e.g. *Listing).
type Registry[T Keyed] interface {
	Get(id string) (T, error)
	Add(entity T) error
	Update(entity T) error
	UpdateAll(entities []T) error
}

// EventPublisher emits a notification to the host chain. Fire and forget:
// the engines never observe an acknowledgement.
type EventPublisher interface {
	Publish(event Event) error
}

type keyedPtr[T any] interface {
	Keyed
	*T
}

// stateRegistry persists entities as JSON in the Fabric world state under
// a doc-type key prefix.
type stateRegistry[T any, PT keyedPtr[T]] struct {
	stub    shim.ChaincodeStubInterface
	docType string
}

// NewStateRegistry builds a world-state-backed registry for one entity type.
func NewStateRegistry[T any, PT keyedPtr[T]](stub shim.ChaincodeStubInterface, docType string) Registry[PT] {
	return &stateRegistry[T, PT]{stub: stub, docType: docType}
}

func (r *stateRegistry[T, PT]) key(id string) string {
	return r.docType + "_" + id
}

func (r *stateRegistry[T, PT]) Get(id string) (PT, error) {
	data, err := r.stub.GetState(r.key(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &NotFoundError{DocType: r.docType, ID: id}
	}

	entity := PT(new(T))
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %v", r.docType, id, err)
	}
	return entity, nil
}

func (r *stateRegistry[T, PT]) Update(entity PT) error {
	id := entity.DocID()
	existing, err := r.stub.GetState(r.key(id))
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{DocType: r.docType, ID: id}
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %v", r.docType, id, err)
	}
	return r.stub.PutState(r.key(id), data)
}

func (r *stateRegistry[T, PT]) UpdateAll(entities []PT) error {
	for _, entity := range entities {
		if err := r.Update(entity); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a new entity. Only the contract's Create* transactions use
// it; the engines never invent identities.
func (r *stateRegistry[T, PT]) Add(entity PT) error {
	id := entity.DocID()
	existing, err := r.stub.GetState(r.key(id))
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%s %s already exists", r.docType, id)
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %v", r.docType, id, err)
	}
	return r.stub.PutState(r.key(id), data)
}

// statePublisher emits events through the chaincode stub.
type statePublisher struct {
	stub shim.ChaincodeStubInterface
}

// NewStatePublisher builds an EventPublisher over the chaincode stub.
func NewStatePublisher(stub shim.ChaincodeStubInterface) EventPublisher {
	return &statePublisher{stub: stub}
}

func (p *statePublisher) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %v", event.Name, err)
	}
	return p.stub.SetEvent(event.Name, data)
}
