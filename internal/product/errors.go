package product

import "errors"

var (
	// ErrNotFound is returned when no product exists with the given ID.
	ErrNotFound = errors.New("product not found")

	// ErrUnsuccessfulResponse marks a remote call that reached the server but did not succeed.
	ErrUnsuccessfulResponse = errors.New("unsuccessful response")

	// ErrTransport marks a remote call that failed before a response was received.
	ErrTransport = errors.New("communication failure")

	// ErrLocalStore marks a failure of the local persistent store.
	ErrLocalStore = errors.New("local store failure")

	// ErrNotConfirmed is returned when an operation needs a server-assigned ID the product does not have.
	ErrNotConfirmed = errors.New("product has no server-assigned id")
)
