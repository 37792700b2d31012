// Package events contains the event payloads published by the product endpoint.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abgdnv/stocksync/pkg/messaging"
)

// ChangeKind names what happened to a product.
type ChangeKind string

const (
	ProductCreated ChangeKind = "created"
	ProductUpdated ChangeKind = "updated"
	ProductDeleted ChangeKind = "deleted"
)

// ProductChanged is published after a product was stored, overwritten or removed.
type ProductChanged struct {
	Kind      ChangeKind `json:"kind"`
	ProductID int64      `json:"product_id"`
	Name      string     `json:"name,omitempty"`
	Quantity  int32      `json:"quantity"`
	ChangedAt time.Time  `json:"changed_at"`
}

func (e ProductChanged) Subject() string {
	switch e.Kind {
	case ProductCreated:
		return messaging.ProductsCreatedSubject
	case ProductDeleted:
		return messaging.ProductsDeletedSubject
	default:
		return messaging.ProductsUpdatedSubject
	}
}

func (e ProductChanged) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// MessageID identifies one change of one product.
func (e ProductChanged) MessageID() string {
	return fmt.Sprintf("product-%d-%s-%d", e.ProductID, e.Kind, e.ChangedAt.UnixNano())
}
