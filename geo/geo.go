// Package geo defines the contract for the address autocomplete and
// geocoding provider. The core consumes only the canonical address and the
// coordinate pair; provider request shapes never leak past this package.
package geo

import "context"

// Suggestion is one ranked autocomplete candidate.
type Suggestion struct {
	PlaceID     string
	Description string
}

// Location is a resolved address.
type Location struct {
	Lat              float64
	Lng              float64
	CanonicalAddress string
}

// Resolver is implemented by the external provider adapter.
type Resolver interface {
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
	Resolve(ctx context.Context, address string) (Location, error)
}
