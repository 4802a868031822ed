package chaincode

import (
	"encoding/json"
	"fmt"
)

// memRegistry keeps entities as JSON blobs like the world state does, so a
// mutation that skips Update is not visible on the next Get.
type memRegistry[T any, PT keyedPtr[T]] struct {
	docType string
	state   map[string][]byte
	updates int
}

func newMemRegistry[T any, PT keyedPtr[T]](docType string) *memRegistry[T, PT] {
	return &memRegistry[T, PT]{docType: docType, state: map[string][]byte{}}
}

func (r *memRegistry[T, PT]) Get(id string) (PT, error) {
	data, ok := r.state[id]
	if !ok {
		return nil, &NotFoundError{DocType: r.docType, ID: id}
	}
	entity := PT(new(T))
	if err := json.Unmarshal(data, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *memRegistry[T, PT]) Add(entity PT) error {
	if _, ok := r.state[entity.DocID()]; ok {
		return fmt.Errorf("%s %s already exists", r.docType, entity.DocID())
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	r.state[entity.DocID()] = data
	return nil
}

func (r *memRegistry[T, PT]) Update(entity PT) error {
	if _, ok := r.state[entity.DocID()]; !ok {
		return &NotFoundError{DocType: r.docType, ID: entity.DocID()}
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	r.state[entity.DocID()] = data
	r.updates++
	return nil
}

func (r *memRegistry[T, PT]) UpdateAll(entities []PT) error {
	for _, entity := range entities {
		if err := r.Update(entity); err != nil {
			return err
		}
	}
	return nil
}

func (r *memRegistry[T, PT]) mustGet(id string) PT {
	entity, err := r.Get(id)
	if err != nil {
		panic(err)
	}
	return entity
}

type memPublisher struct {
	published []Event
}

func (p *memPublisher) Publish(event Event) error {
	p.published = append(p.published, event)
	return nil
}
