package domain

import "errors"

var (
	// ErrStoreUnavailable signals the record store could not be reached
	// after bounded retries.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrIngestion signals a source fetch or parse failure during loading.
	ErrIngestion = errors.New("ingestion failed")
	// ErrInvalidQuery signals malformed client query parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIndexNotFound signals the prize index has not been created yet.
	ErrIndexNotFound = errors.New("prize index not found")
	// ErrRateLimited signals a client exceeded its request quota.
	ErrRateLimited = errors.New("rate limited")
)
