package domain

// OfferGroup is the unit of a ranked result: all listings believed to be the
// same product, plus the single representative shown as "cheapest".
type OfferGroup struct {
	Key      string    `json:"key"`
	Cheapest *Listing  `json:"cheapest"` // representative; always one of Offers
	Offers   []Listing `json:"offers"`   // discovery order, never empty
}

// PriceBand holds inclusive price bounds used to suppress outlier listings
// from representative selection. A nil side means unbounded on that side.
type PriceBand struct {
	Low  *int
	High *int
}

// Unbounded reports whether the band imposes no constraint at all
func (b PriceBand) Unbounded() bool {
	return b.Low == nil && b.High == nil
}

// Contains reports whether a known price falls inside the band
func (b PriceBand) Contains(price int) bool {
	if b.Low != nil && price < *b.Low {
		return false
	}
	if b.High != nil && price > *b.High {
		return false
	}
	return true
}

// SearchResult is the response of one offer aggregation.
// FailedSources lists marketplaces whose upstream call errored; their listings
// are simply absent from Items rather than failing the whole request.
type SearchResult struct {
	Query         string       `json:"query"`
	Items         []OfferGroup `json:"items"`
	FailedSources []Source     `json:"failedSources,omitempty"`
}
