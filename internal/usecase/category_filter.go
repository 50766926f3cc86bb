package usecase

import (
	"log"
	"strings"

	"github.com/dramscan/backend/internal/domain"
)

// CategoryFilterConfig holds the keyword lists driving the filter.
// The lists are process-wide read-only configuration injected at startup.
type CategoryFilterConfig struct {
	RequiredKeywords   []string
	ExcludedKeywords   []string
	SellerBlacklist    []string
	Bypass             bool
	EnableDebugLogging bool
}

// CategoryFilter rejects listings that are not the target product category
// or that come from a disallowed seller. It is a pure predicate evaluated
// independently per listing.
type CategoryFilter struct {
	requiredKeywords   []string
	excludedKeywords   []string
	sellerBlacklist    []string
	bypass             bool
	enableDebugLogging bool
}

// NewCategoryFilter creates a filter from the configured keyword lists
func NewCategoryFilter(config CategoryFilterConfig) *CategoryFilter {
	return &CategoryFilter{
		requiredKeywords:   lowerAll(config.RequiredKeywords),
		excludedKeywords:   lowerAll(config.ExcludedKeywords),
		sellerBlacklist:    lowerAll(config.SellerBlacklist),
		bypass:             config.Bypass,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Accepts reports whether a listing belongs in the result set.
// Rules, in order: bypass accepts everything; an excluded-category keyword in
// the title rejects; a missing required-category keyword rejects; a
// blacklisted seller substring rejects.
func (f *CategoryFilter) Accepts(listing domain.Listing) bool {
	if f.bypass {
		return true
	}

	title := strings.ToLower(normalizeWidth(listing.Title))

	for _, kw := range f.excludedKeywords {
		if strings.Contains(title, kw) {
			f.debugReject(listing, "excluded keyword "+kw)
			return false
		}
	}

	if !f.containsRequired(title) {
		f.debugReject(listing, "no required category keyword")
		return false
	}

	if listing.SellerName != "" {
		seller := strings.ToLower(normalizeWidth(listing.SellerName))
		for _, banned := range f.sellerBlacklist {
			if strings.Contains(seller, banned) {
				f.debugReject(listing, "blacklisted seller "+banned)
				return false
			}
		}
	}

	return true
}

func (f *CategoryFilter) containsRequired(title string) bool {
	for _, kw := range f.requiredKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

func (f *CategoryFilter) debugReject(listing domain.Listing, reason string) {
	if f.enableDebugLogging {
		log.Printf("[FILTER] rejected %s/%s: %s", listing.Source, listing.ExternalID, reason)
	}
}

// lowerAll lowercases and width-folds a keyword list, dropping empties
func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(normalizeWidth(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
