package service

import "errors"

var (
	// ErrInvalidRequest marks input that fails validation before any
	// upstream call is made.
	ErrInvalidRequest = errors.New("invalid loan request")

	// ErrUpstreamUnavailable marks a request that failed because the
	// profile store or the scorer was unreachable, errored, or timed out.
	// The failure is retryable from the caller's point of view; the service
	// itself never retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNoCustomers is returned by RandomCustomerID when the store holds
	// no profiles at all.
	ErrNoCustomers = errors.New("no customers in store")
)
