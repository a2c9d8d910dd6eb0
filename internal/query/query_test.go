package query_test

import (
	"testing"

	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/models"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/query"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sampleLots() []models.Lot {
	return []models.Lot{
		{ID: "1", Title: "Wooden chair", Category: "Furniture", SoldPrice: f(100), EstimateLow: f(50), EstimateHigh: f(150)},
		{ID: "2", Title: "Coffee mug", Category: "Coffee & Kitchen", SoldPrice: f(200), EstimateLow: f(100), EstimateHigh: f(200)},
		{ID: "3", Title: "Unsold sketch", Category: "Uncategorized", SoldPrice: nil},
		{ID: "4", Title: "Signed poster", Category: "Posters & Prints", SoldPrice: f(300)},
		{ID: "5", Title: "Electric guitar", Category: "Instruments & Audio", SoldPrice: f(400), EstimateLow: f(400), EstimateHigh: f(600)},
	}
}

func TestFilterEmptyCriteriaIsIdentity(t *testing.T) {
	lots := sampleLots()
	got, err := query.Filter(lots, query.Criteria{})
	require.NoError(t, err)
	require.Equal(t, lots, got)
}

func TestFilterByCategorySet(t *testing.T) {
	got, err := query.Filter(sampleLots(), query.Criteria{
		Categories: []string{"Furniture", "Posters & Prints"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "4", got[1].ID)
}

func TestFilterByKeywordCaseInsensitive(t *testing.T) {
	got, err := query.Filter(sampleLots(), query.Criteria{Keyword: "SIGNED"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "4", got[0].ID)
}

func TestFilterPriceBoundsInclusive(t *testing.T) {
	got, err := query.Filter(sampleLots(), query.Criteria{MinPrice: f(200), MaxPrice: f(300)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "4", got[1].ID)
}

func TestFilterNilPriceExcludedOnlyWhenBounded(t *testing.T) {
	unbounded, err := query.Filter(sampleLots(), query.Criteria{})
	require.NoError(t, err)
	require.Len(t, unbounded, 5, "nil sold price kept without a bound")

	bounded, err := query.Filter(sampleLots(), query.Criteria{MinPrice: f(0)})
	require.NoError(t, err)
	require.Len(t, bounded, 4, "nil sold price dropped once any bound is set")
	for _, lot := range bounded {
		require.NotNil(t, lot.SoldPrice)
	}
}

func TestFilterIdempotent(t *testing.T) {
	c := query.Criteria{Categories: []string{"Furniture", "Instruments & Audio"}, MinPrice: f(50)}
	once, err := query.Filter(sampleLots(), c)
	require.NoError(t, err)
	twice, err := query.Filter(once, c)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestFilterInvalidBounds(t *testing.T) {
	_, err := query.Filter(sampleLots(), query.Criteria{MinPrice: f(500), MaxPrice: f(100)})
	require.ErrorIs(t, err, query.ErrInvalidCriteria)

	// Equal bounds are not contradictory.
	got, err := query.Filter(sampleLots(), query.Criteria{MinPrice: f(300), MaxPrice: f(300)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "4", got[0].ID)
}

func TestSummarizeFixture(t *testing.T) {
	s := query.Summarize(sampleLots())
	require.Equal(t, 4, s.Count)
	require.Equal(t, 1000.0, s.Total)
	require.Equal(t, 250.0, s.Mean)
	require.Equal(t, 250.0, s.Median)
	require.Equal(t, 100.0, s.Min)
	require.Equal(t, 400.0, s.Max)

	require.NotNil(t, s.MostExpensive)
	require.Equal(t, "5", s.MostExpensive.ID)
	require.NotNil(t, s.Cheapest)
	require.Equal(t, "1", s.Cheapest.ID)
}

func TestSummarizeEstimateDeltas(t *testing.T) {
	s := query.Summarize(sampleLots())
	// Midpoints: 100, 150, 500 for lots 1, 2, 5 -> deltas 0, 50, -100.
	require.InDelta(t, -50.0/3.0, s.MeanDelta, 1e-9)
	require.Equal(t, 0.0, s.MedianDelta)
}

func TestSummarizeEmptyInput(t *testing.T) {
	for _, lots := range [][]models.Lot{nil, {}, {{Title: "no price"}}} {
		s := query.Summarize(lots)
		require.Equal(t, query.Summary{}, s)
	}
}

func TestSummarizeOddCountMedian(t *testing.T) {
	lots := []models.Lot{
		{SoldPrice: f(10)},
		{SoldPrice: f(1000)},
		{SoldPrice: f(20)},
	}
	s := query.Summarize(lots)
	require.Equal(t, 20.0, s.Median)
}

func TestMostCommonCategory(t *testing.T) {
	lots := []models.Lot{
		{Category: "Furniture", SoldPrice: f(1)},
		{Category: "Art", SoldPrice: f(2)},
		{Category: "Furniture", SoldPrice: f(3)},
	}
	s := query.Summarize(lots)
	require.Equal(t, "Furniture", s.MostCommonCategory)
}

func TestCategoryCounts(t *testing.T) {
	counts := query.CategoryCounts(sampleLots())
	require.Equal(t, 1, counts["Furniture"])
	require.Equal(t, 1, counts["Uncategorized"])
	require.Len(t, counts, 5)
}

func TestSortByPrice(t *testing.T) {
	lots := sampleLots()
	asc := query.SortByPrice(lots, false)
	require.Equal(t, "1", asc[0].ID)
	require.Equal(t, "5", asc[3].ID)
	require.Equal(t, "3", asc[4].ID, "nil price sorts last")

	desc := query.SortByPrice(lots, true)
	require.Equal(t, "5", desc[0].ID)
	require.Equal(t, "3", desc[4].ID, "nil price sorts last")

	// Input order untouched.
	require.Equal(t, "1", lots[0].ID)
	require.Equal(t, "3", lots[2].ID)
}
