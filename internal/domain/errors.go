package domain

import "errors"

var (
	// ErrEmptyQuery is returned when the search query is empty after trimming
	ErrEmptyQuery = errors.New("search query must not be empty")

	// ErrMarketplaceFailure is returned when a marketplace search request fails
	ErrMarketplaceFailure = errors.New("marketplace search request failed")

	// ErrAllSourcesFailed is returned when every marketplace branch errored
	ErrAllSourcesFailed = errors.New("all marketplace sources failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
