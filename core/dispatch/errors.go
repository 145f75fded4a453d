package dispatch

import "errors"

var (
	// ErrNoEligibleDrone means no drone can serve a request right now. The
	// request stays pending and is retried on the next availability change.
	ErrNoEligibleDrone = errors.New("no eligible drone")
	// ErrInvalidState is returned when an operation is illegal for the
	// current request status.
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	// ErrInterceptRejected is returned by Intercept when the detour does not pay off.
	ErrInterceptRejected = errors.New("intercept rejected")
)
