package domain

import "context"

// MarketplaceClient defines the interface a marketplace search client exposes
// to the aggregator. Implementations must return listings in the order the
// marketplace returned them; that order is user-visible through the
// first-member fallback in representative selection.
type MarketplaceClient interface {
	// Source identifies which marketplace this client searches
	Source() Source

	// Search runs a free-text query and returns the raw listings
	Search(ctx context.Context, query string) ([]Listing, error)
}
