package domain

import "errors"

var (
	// ErrProductNotFound is returned when no canonical product matches a lookup
	ErrProductNotFound = errors.New("product not found")

	// ErrStoreNotFound is returned when no store matches a lookup
	ErrStoreNotFound = errors.New("store not found")

	// ErrListingNotFound is returned when a price link lookup misses
	ErrListingNotFound = errors.New("listing not found")

	// ErrListingClaimed is returned when linking a listing that is already linked
	ErrListingClaimed = errors.New("listing already claimed")

	// ErrInvalidListing is returned for raw records missing required fields
	ErrInvalidListing = errors.New("listing missing required fields")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRepositoryFailure is returned when the persistence collaborator fails
	ErrRepositoryFailure = errors.New("catalog repository failure")
)
