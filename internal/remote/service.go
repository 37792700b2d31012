// Package remote is the client side of the product REST endpoint.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/stocksync/internal/product"
)

// Service is the remote product endpoint.
// Failures are either a *ResponseError (the server answered with a non-2xx status) or
// an error wrapping product.ErrTransport (no response was received).
type Service interface {
	// ListAll returns every product known to the server.
	ListAll(ctx context.Context) ([]product.Product, error)

	// Create stores a new product and returns it with the server-assigned ID.
	Create(ctx context.Context, p product.Product) (product.Product, error)

	// Update overwrites the product with the given ID.
	Update(ctx context.Context, id int64, p product.Product) (product.Product, error)

	// Delete removes the product with the given ID.
	Delete(ctx context.Context, id int64) error
}

// ResponseError is an unsuccessful HTTP response from the remote endpoint.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s (%d)", product.ErrUnsuccessfulResponse, e.StatusCode)
	}
	return fmt.Sprintf("%s (%d): %s", product.ErrUnsuccessfulResponse, e.StatusCode, e.Body)
}

// Is makes errors.Is(err, product.ErrUnsuccessfulResponse) match.
func (e *ResponseError) Is(target error) bool {
	return target == product.ErrUnsuccessfulResponse
}

// transportError wraps err as a communication failure.
func transportError(err error) error {
	return fmt.Errorf("%w: %w", product.ErrTransport, err)
}

// IsTransport reports whether err is a communication failure rather than a server answer.
func IsTransport(err error) bool {
	return errors.Is(err, product.ErrTransport)
}
