package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	// ErrRateLimited is returned once 429 retries are exhausted.
	ErrRateLimited = crerr.New("upstream rate limited")
	// ErrUpstreamRejected means an upstream answered 403; fetching stays
	// disabled for the rest of the process.
	ErrUpstreamRejected = crerr.New("upstream rejected credentials")
	ErrCycleInProgress  = crerr.New("ingestion cycle already in progress")
)
