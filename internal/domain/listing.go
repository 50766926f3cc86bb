package domain

// Source identifies the marketplace a listing was fetched from
type Source string

// The set of configured marketplaces
const (
	SourceRakuten Source = "rakuten"
	SourceYahoo   Source = "yahoo"
)

// Listing represents one raw marketplace search result.
// It is created fresh per request from a marketplace response, never mutated
// after the derived fields are filled, and discarded at the end of the request.
type Listing struct {
	Source     Source `json:"source"`
	ExternalID string `json:"externalId"` // unique within Source, stable iteration only
	Title      string `json:"title"`
	Price      *int   `json:"price"` // yen, nil when the marketplace omits it
	URL        string `json:"url,omitempty"`
	Image      string `json:"image,omitempty"`
	SellerName string `json:"sellerName,omitempty"`

	// Derived from Title, computed once per listing
	VolumeML   *int `json:"volumeMl,omitempty"`
	ABVPercent *int `json:"abvPercent,omitempty"`
}

// SearchRequest represents an inbound offer search request
type SearchRequest struct {
	Query  string `json:"query" binding:"required"`
	Budget int    `json:"budget,omitempty"` // yen; 0 or absent disables budget-aware ranking
}
