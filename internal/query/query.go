package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/models"
)

// ErrInvalidCriteria reports contradictory filter bounds supplied by
// the caller. Recoverable by correcting the request.
var ErrInvalidCriteria = errors.New("invalid criteria")

// Criteria narrows the lot collection. Zero values mean "no filter":
// an empty category set matches all categories, an empty keyword
// matches every title, and nil bounds leave the price unbounded.
type Criteria struct {
	Categories []string
	Keyword    string
	MinPrice   *float64
	MaxPrice   *float64
}

// Summary aggregates sold prices over a lot collection. Only lots
// with a parsed sold price contribute; Count reports how many did.
type Summary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	// Deltas compare sold price against the estimate midpoint, over
	// lots that carry both. Positive means the lot beat its estimate.
	MeanDelta   float64 `json:"mean_delta"`
	MedianDelta float64 `json:"median_delta"`

	MostExpensive      *models.Lot `json:"most_expensive,omitempty"`
	Cheapest           *models.Lot `json:"cheapest,omitempty"`
	MostCommonCategory string      `json:"most_common_category,omitempty"`
}

// Filter returns the lots matching the criteria, preserving the
// input's relative order. Lots with no parsed sold price are excluded
// only when a price bound is set. Filtering is idempotent: applying
// the same criteria to its own output returns the same set.
func Filter(lots []models.Lot, c Criteria) ([]models.Lot, error) {
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return nil, fmt.Errorf("%w: min price %g exceeds max price %g", ErrInvalidCriteria, *c.MinPrice, *c.MaxPrice)
	}

	selected := make(map[string]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		selected[cat] = struct{}{}
	}
	keyword := strings.ToLower(c.Keyword)
	priceBounded := c.MinPrice != nil || c.MaxPrice != nil

	out := make([]models.Lot, 0, len(lots))
	for _, lot := range lots {
		if len(selected) > 0 {
			if _, ok := selected[lot.Category]; !ok {
				continue
			}
		}
		if keyword != "" && !strings.Contains(strings.ToLower(lot.Title), keyword) {
			continue
		}
		if priceBounded {
			if lot.SoldPrice == nil {
				continue
			}
			if c.MinPrice != nil && *lot.SoldPrice < *c.MinPrice {
				continue
			}
			if c.MaxPrice != nil && *lot.SoldPrice > *c.MaxPrice {
				continue
			}
		}
		out = append(out, lot)
	}
	return out, nil
}

// Summarize computes aggregate statistics over the lots with a parsed
// sold price. Zero qualifying lots produce the zero-valued Summary.
func Summarize(lots []models.Lot) Summary {
	var (
		prices stats.Float64Data
		deltas stats.Float64Data
	)
	var summary Summary

	for i := range lots {
		lot := lots[i]
		if lot.SoldPrice == nil {
			continue
		}
		prices = append(prices, *lot.SoldPrice)
		if mid := lot.EstimateMid(); mid != nil {
			deltas = append(deltas, *lot.SoldPrice-*mid)
		}
		if summary.MostExpensive == nil || *lot.SoldPrice > *summary.MostExpensive.SoldPrice {
			summary.MostExpensive = &lots[i]
		}
		if summary.Cheapest == nil || *lot.SoldPrice < *summary.Cheapest.SoldPrice {
			summary.Cheapest = &lots[i]
		}
	}

	if len(prices) == 0 {
		return Summary{}
	}

	summary.Count = len(prices)
	// The data is guaranteed non-empty here, so none of these can fail.
	summary.Total, _ = prices.Sum()
	summary.Mean, _ = prices.Mean()
	summary.Median, _ = prices.Median()
	summary.Min, _ = prices.Min()
	summary.Max, _ = prices.Max()

	if len(deltas) > 0 {
		summary.MeanDelta, _ = deltas.Mean()
		summary.MedianDelta, _ = deltas.Median()
	}

	summary.MostCommonCategory = mostCommonCategory(lots)
	return summary
}

// CategoryCounts tallies lots per category label.
func CategoryCounts(lots []models.Lot) map[string]int {
	counts := make(map[string]int, len(lots))
	for _, lot := range lots {
		counts[lot.Category]++
	}
	return counts
}

// SortByPrice returns a copy of the lots ordered by sold price. The
// sort is stable and the input is left untouched; lots without a
// parsed price sort after every priced lot in either direction.
func SortByPrice(lots []models.Lot, descending bool) []models.Lot {
	sorted := make([]models.Lot, len(lots))
	copy(sorted, lots)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].SoldPrice, sorted[j].SoldPrice
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case descending:
			return *a > *b
		default:
			return *a < *b
		}
	})
	return sorted
}

func mostCommonCategory(lots []models.Lot) string {
	counts := CategoryCounts(lots)

	best := ""
	bestCount := 0
	// Walk lots in input order so ties break deterministically on
	// first appearance.
	for _, lot := range lots {
		if n := counts[lot.Category]; n > bestCount {
			best = lot.Category
			bestCount = n
		}
	}
	return best
}
