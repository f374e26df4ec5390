// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package identity

import "context"

// Result carries the outcome of a call started with [Async].
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn on its own goroutine and delivers its outcome on the
// returned channel, which receives exactly one value and is then closed.
//
// The stores are synchronous. Async only moves a call off the caller's
// goroutine; it does not make concurrent calls on one transaction safe.
func Async[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)

	go func() {
		defer close(out)

		value, err := fn(ctx)
		out <- Result[T]{Value: value, Err: err}
	}()

	return out
}
