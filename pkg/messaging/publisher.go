// Package messaging defines the domain event publishing contract.
package messaging

import (
	"context"
)

const (
	ProductsCreatedSubject = "products.created"
	ProductsUpdatedSubject = "products.updated"
	ProductsDeletedSubject = "products.deleted"
	// ProductsSubjects matches every product change subject.
	ProductsSubjects = "products.>"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Identified is implemented by events carrying a stable identifier that brokers may use
// to drop duplicate deliveries.
type Identified interface {
	MessageID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
