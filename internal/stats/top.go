package stats

import (
	"sort"

	"github.com/verte-zerg/digitpad/internal/model"
)

// TopDigitsByFrequency returns the n most often predicted digits.
func TopDigitsByFrequency(aggs []model.DigitAggregate, n int) []int {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.DigitAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Digit < items[j].Digit
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = items[i].Digit
	}
	return out
}
