// Package rank filters catalog items by preference, scores them, and performs
// weighted-random selection among the top candidates.
package rank

import (
	"errors"
	"math"
	"slices"

	"github.com/hyperengineering/nextbest/internal/types"
)

const (
	// DefaultLimit is the number of candidates returned when callers have no
	// preference of their own.
	DefaultLimit = 10

	ratingWeight   = 2.0
	proximityRange = 6.0
	priceBonus     = 1.5
	groupBonus     = 0.5

	minWeight      = 0.01
	weightExponent = 1.5
)

// Unscored is the score given to items that fail the preference filter.
var Unscored = math.Inf(-1)

// ErrNoCandidates is returned by WeightedPick when there is nothing to pick from.
var ErrNoCandidates = errors.New("no candidates to pick from")

// Score computes the desirability of item under prefs.
// Items outside the included categories or beyond the distance cap are
// Unscored. A distance that cannot be compared (NaN) also disqualifies.
func Score(item types.Item, prefs types.Preferences) float64 {
	if !prefs.IncludesCategory(item.Category) {
		return Unscored
	}
	if !(item.DistanceKm <= prefs.MaxDistanceKm) {
		return Unscored
	}

	s := item.Rating * ratingWeight
	s += math.Max(0, proximityRange-item.DistanceKm)
	if prefs.PrefersPrice(item.Price) {
		s += priceBonus
	}
	if item.HasTag(types.TagGroup) {
		s += groupBonus
	}
	return s
}

// IsScored reports whether s is a qualifying score.
func IsScored(s float64) bool {
	return !math.IsInf(s, -1) && !math.IsNaN(s)
}

// Rank scores every item, drops the disqualified ones, and returns the best
// limit entries in descending score order. Equal scores keep catalog order.
func Rank(items []types.Item, prefs types.Preferences, limit int) []types.ScoredItem {
	if limit <= 0 {
		return []types.ScoredItem{}
	}

	ranked := make([]types.ScoredItem, 0, len(items))
	for _, it := range items {
		s := Score(it, prefs)
		if !IsScored(s) {
			continue
		}
		ranked = append(ranked, types.ScoredItem{Item: it, Score: s})
	}

	slices.SortStableFunc(ranked, func(a, b types.ScoredItem) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Weight returns the selection weight for a score: score^1.5 floored at 0.01.
// Non-positive and NaN scores take the floor.
func Weight(score float64) float64 {
	if !(score > 0) {
		return minWeight
	}
	return math.Max(minWeight, math.Pow(score, weightExponent))
}

// WeightedPick draws one candidate with probability proportional to its
// Weight. It consumes exactly one value from src.
func WeightedPick(src RandomSource, candidates []types.ScoredItem) (types.ScoredItem, error) {
	if len(candidates) == 0 {
		return types.ScoredItem{}, ErrNoCandidates
	}

	weights := make([]float64, len(candidates))
	var total float64
	for i, c := range candidates {
		weights[i] = Weight(c.Score)
		total += weights[i]
	}

	r := src.Float64() * total
	for i, c := range candidates {
		r -= weights[i]
		if r <= 0 {
			return c, nil
		}
	}

	// Rounding can leave a tiny positive remainder after the last weight.
	// The draw was still below total, so it belongs to the final interval.
	return candidates[len(candidates)-1], nil
}
