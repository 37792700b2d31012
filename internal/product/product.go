// Package product holds the Product model shared by the client and the reference remote endpoint.
package product

import "fmt"

// Product is a single stock item.
// An ID of zero means the record has not been confirmed by the remote service yet.
type Product struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"     validate:"required,max=100"`
	Quantity int32  `json:"quantity" validate:"min=0"`
}

// Confirmed reports whether the remote service has assigned an identifier to the product.
func (p Product) Confirmed() bool {
	return p.ID != 0
}

// WithID returns a copy of the product carrying the given identifier.
func (p Product) WithID(id int64) Product {
	p.ID = id
	return p
}

func (p Product) String() string {
	return fmt.Sprintf("Product{id=%d, name=%q, quantity=%d}", p.ID, p.Name, p.Quantity)
}
