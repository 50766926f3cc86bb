package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/dramscan/backend/internal/domain"
)

// Default pricing/paging settings used when the config leaves them zero
const (
	defaultLowerQuantile = 0.05
	defaultUpperQuantile = 0.95
	defaultPageSize      = 18
)

// OfferServiceConfig holds configuration for the offer aggregation service
type OfferServiceConfig struct {
	LowerQuantile      float64
	UpperQuantile      float64
	PageSize           int
	EnableDebugLogging bool
}

// OfferService orchestrates one offer aggregation: concurrent marketplace
// fan-out, category filtering, price-band computation, grouping by canonical
// key, representative selection, ranking, and truncation. It holds no mutable
// state and is safe for concurrent requests.
type OfferService struct {
	clients            []domain.MarketplaceClient
	canonicalizer      *Canonicalizer
	filter             *CategoryFilter
	lowerQuantile      float64
	upperQuantile      float64
	pageSize           int
	enableDebugLogging bool
}

// NewOfferService creates an offer service with its collaborators.
// Client order is significant: merged listings keep it, and through the
// first-member fallback it decides deterministic tie-breaking.
func NewOfferService(
	clients []domain.MarketplaceClient,
	canonicalizer *Canonicalizer,
	filter *CategoryFilter,
	config OfferServiceConfig,
) *OfferService {
	lower := config.LowerQuantile
	upper := config.UpperQuantile
	if lower <= 0 && upper <= 0 {
		lower = defaultLowerQuantile
		upper = defaultUpperQuantile
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &OfferService{
		clients:            clients,
		canonicalizer:      canonicalizer,
		filter:             filter,
		lowerQuantile:      lower,
		upperQuantile:      upper,
		pageSize:           pageSize,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// sourceResult carries one fan-out branch back through the join.
// A branch either succeeded with listings or failed with a reason; the join
// itself always completes.
type sourceResult struct {
	source   domain.Source
	listings []domain.Listing
	err      error
}

// Search runs one aggregation for a free-text query.
// A budget > 0 enables budget-aware ranking; 0 ranks by price alone.
//
// A failed marketplace branch is logged, reported in FailedSources, and
// contributes zero listings; the request only errors when every branch fails.
func (s *OfferService) Search(ctx context.Context, query string, budget int) (*domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	results := s.searchAllSources(ctx, query)

	var merged []domain.Listing
	var failed []domain.Source
	for _, r := range results {
		if r.err != nil {
			log.Printf("[OFFERS] source %s failed for %q: %v", r.source, query, r.err)
			failed = append(failed, r.source)
			continue
		}
		merged = append(merged, r.listings...)
	}

	if len(s.clients) > 0 && len(failed) == len(s.clients) {
		return nil, domain.ErrAllSourcesFailed
	}

	survivors := s.filterListings(merged)
	band := ComputeBand(knownPrices(survivors), s.lowerQuantile, s.upperQuantile)
	groups := s.groupByCanonicalKey(survivors)

	for i := range groups {
		groups[i].Cheapest = pickRepresentative(groups[i].Offers, band)
	}

	rankGroups(groups, budget)

	if len(groups) > s.pageSize {
		groups = groups[:s.pageSize]
	}

	if s.enableDebugLogging {
		log.Printf("[OFFERS] query=%q merged=%d survivors=%d groups=%d failed=%v",
			query, len(merged), len(survivors), len(groups), failed)
	}

	return &domain.SearchResult{
		Query:         query,
		Items:         groups,
		FailedSources: failed,
	}, nil
}

// searchAllSources fans the query out to every client concurrently and joins
// on all branches. Results come back indexed by client position so the merged
// order stays source-by-source in configuration order.
func (s *OfferService) searchAllSources(ctx context.Context, query string) []sourceResult {
	results := make([]sourceResult, len(s.clients))

	var wg sync.WaitGroup
	for i, client := range s.clients {
		wg.Add(1)
		go func(i int, client domain.MarketplaceClient) {
			defer wg.Done()
			listings, err := client.Search(ctx, query)
			results[i] = sourceResult{source: client.Source(), listings: listings, err: err}
		}(i, client)
	}
	wg.Wait()

	return results
}

// filterListings applies the category/seller filter and fills the derived
// volume/ABV fields on every survivor, preserving discovery order
func (s *OfferService) filterListings(listings []domain.Listing) []domain.Listing {
	survivors := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if !s.filter.Accepts(l) {
			continue
		}
		l.VolumeML = s.canonicalizer.ParseVolume(l.Title)
		l.ABVPercent = s.canonicalizer.ParseStrength(l.Title)
		survivors = append(survivors, l)
	}
	return survivors
}

// groupByCanonicalKey buckets listings by canonical key. Group order follows
// the first appearance of each key; members keep discovery order.
func (s *OfferService) groupByCanonicalKey(listings []domain.Listing) []domain.OfferGroup {
	index := make(map[string]int)
	groups := make([]domain.OfferGroup, 0)

	for _, l := range listings {
		key := s.canonicalizer.Canonicalize(l.Title)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.OfferGroup{Key: key})
		}
		groups[i].Offers = append(groups[i].Offers, l)
	}

	return groups
}

// pickRepresentative chooses the listing that stands for a group:
// the cheapest member priced inside the band; failing that, the cheapest
// member with any known price; failing that, the first member.
func pickRepresentative(offers []domain.Listing, band domain.PriceBand) *domain.Listing {
	best := cheapestWithin(offers, band)
	if best == nil && !band.Unbounded() {
		// No member inside the band: fall back to any known price
		best = cheapestWithin(offers, domain.PriceBand{})
	}
	if best == nil {
		// No member has a known price at all
		first := offers[0]
		return &first
	}
	return best
}

// cheapestWithin returns a copy of the lowest-priced member whose known price
// lies inside the band, or nil when there is none
func cheapestWithin(offers []domain.Listing, band domain.PriceBand) *domain.Listing {
	var best *domain.Listing
	for i := range offers {
		price := offers[i].Price
		if price == nil || !band.Contains(*price) {
			continue
		}
		if best == nil || *price < *best.Price {
			picked := offers[i]
			best = &picked
		}
	}
	return best
}

// rankGroups orders groups by the composite rank key. With a budget the
// primary key is the distance of the representative price from the budget and
// the tie-break is the price itself; without one the price is the sole key.
// Unknown prices always rank last. The sort is stable so full ties keep
// first-seen group order.
func rankGroups(groups []domain.OfferGroup, budget int) {
	sort.SliceStable(groups, func(i, j int) bool {
		pi := representativePrice(groups[i])
		pj := representativePrice(groups[j])

		if budget > 0 {
			di := budgetDistance(pi, budget)
			dj := budgetDistance(pj, budget)
			if di != dj {
				return di < dj
			}
		}

		return lessPriceNilLast(pi, pj)
	})
}

func representativePrice(g domain.OfferGroup) *int {
	if g.Cheapest == nil {
		return nil
	}
	return g.Cheapest.Price
}

// budgetDistance treats an unknown price as effectively infinite distance
func budgetDistance(price *int, budget int) int {
	if price == nil {
		return int(^uint(0) >> 1) // max int
	}
	d := *price - budget
	if d < 0 {
		return -d
	}
	return d
}

func lessPriceNilLast(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// knownPrices collects the non-nil prices of a listing slice
func knownPrices(listings []domain.Listing) []int {
	prices := make([]int, 0, len(listings))
	for _, l := range listings {
		if l.Price != nil {
			prices = append(prices, *l.Price)
		}
	}
	return prices
}
