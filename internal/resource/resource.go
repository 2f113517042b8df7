// Package resource defines the envelope used to report the lifecycle of one
// asynchronous read: Loading, then exactly one of Success or Error.
package resource

import (
	"context"
	"errors"
)

// Status identifies an envelope variant.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Resource is a closed sum over Loading, Success and Error.
// Only this package can add variants.
type Resource[T any] interface {
	Status() Status
	isResource()
}

// Loading marks a read in progress. It carries no payload.
type Loading[T any] struct{}

// Success carries the payload of a completed read.
type Success[T any] struct {
	Data T
}

// Error carries a user-facing message. It never carries a payload.
type Error[T any] struct {
	Message string
}

func (Loading[T]) Status() Status { return StatusLoading }
func (Success[T]) Status() Status { return StatusSuccess }
func (Error[T]) Status() Status   { return StatusError }

func (Loading[T]) isResource() {}
func (Success[T]) isResource() {}
func (Error[T]) isResource()   {}

// IsTerminal reports whether r ends a sequence. Any variant of any payload
// type satisfies the parameter.
func IsTerminal(r interface{ Status() Status }) bool {
	return r.Status() != StatusLoading
}

// ErrNoTerminal is returned by Await when a sequence closes without a terminal value.
var ErrNoTerminal = errors.New("resource: sequence closed without terminal value")

// Await drains ch and returns its terminal value.
func Await[T any](ctx context.Context, ch <-chan Resource[T]) (Resource[T], error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r, ok := <-ch:
			if !ok {
				return nil, ErrNoTerminal
			}
			if IsTerminal(r) {
				return r, nil
			}
		}
	}
}

// Collect drains ch until it closes and returns every value in order.
func Collect[T any](ch <-chan Resource[T]) []Resource[T] {
	var out []Resource[T]
	for r := range ch {
		out = append(out, r)
	}
	return out
}
