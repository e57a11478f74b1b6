package service

import "errors"

var (
	ErrWineNotFound        = errors.New("wine not found")
	ErrVineyardNotFound    = errors.New("vineyard not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCellarEntryNotFound = errors.New("no matching cellar entry found")
	ErrCellarEntryExists   = errors.New("wine is already in the cellar")
	ErrInvalidFilter       = errors.New("invalid filter")
	// ErrCatalogQuery marks a failure of the primary wine lookup.
	ErrCatalogQuery = errors.New("catalog query failed")
	// ErrModelUnavailable marks a failed call to the language model provider.
	ErrModelUnavailable = errors.New("language model unavailable")
)
