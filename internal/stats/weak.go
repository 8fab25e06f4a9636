package stats

import (
	"sort"

	"github.com/verte-zerg/digitpad/internal/model"
)

// WeakDigits returns up to top digits with the lowest mean confidence.
// A non-positive top returns every digit.
func WeakDigits(aggs []model.DigitAggregate, top int) []int {
	candidates := make([]model.DigitAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Count > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		mi, mj := MeanConfidence(candidates[i]), MeanConfidence(candidates[j])
		if mi == mj {
			return candidates[i].Digit < candidates[j].Digit
		}
		return mi < mj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]int, top)
	for i := range out {
		out[i] = candidates[i].Digit
	}
	return out
}
