// Package result provides a single success-or-error value and a channel-backed future to carry it
// between goroutines.
package result

// Result is the outcome of one operation: either a value or an error.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail returns a failed Result.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Of builds a Result from the usual (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the Result carries a value.
func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unwrap returns the value and error as a pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Message returns the human-readable failure description, or an empty string on success.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Callback is the onSuccess/onFailure pair for callers that consume results as callbacks.
// Nil functions are skipped.
type Callback[T any] struct {
	OnSuccess func(T)
	OnFailure func(message string)
}

// Deliver invokes exactly one of the callback functions for r.
func (c Callback[T]) Deliver(r Result[T]) {
	if r.IsOk() {
		if c.OnSuccess != nil {
			c.OnSuccess(r.Value)
		}
		return
	}
	if c.OnFailure != nil {
		c.OnFailure(r.Message())
	}
}
