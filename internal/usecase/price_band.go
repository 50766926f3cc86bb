package usecase

import (
	"math"
	"sort"

	"github.com/dramscan/backend/internal/domain"
)

// ComputeBand computes winsorize-style price bounds over the known prices of
// the candidate set. The bounds are existing elements of the input, never
// interpolated. An empty input yields an unbounded band, signaling that no
// trimming is possible.
//
// The band only constrains representative eligibility; outlier listings stay
// in their groups.
func ComputeBand(prices []int, lowerQuantile, upperQuantile float64) domain.PriceBand {
	if len(prices) == 0 {
		return domain.PriceBand{}
	}

	sorted := make([]int, len(prices))
	copy(sorted, prices)
	sort.Ints(sorted)

	low := sorted[quantileIndex(len(sorted), lowerQuantile)]
	high := sorted[quantileIndex(len(sorted), upperQuantile)]

	return domain.PriceBand{Low: &low, High: &high}
}

// quantileIndex maps a quantile p onto an index of a sorted slice of length n:
// clamp(floor((n-1)*p), 0, n-1)
func quantileIndex(n int, p float64) int {
	idx := int(math.Floor(float64(n-1) * p))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}
