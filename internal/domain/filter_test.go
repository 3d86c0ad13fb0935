package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleProducts() []Product {
	return []Product{
		{ID: "1", Title: "Audio Speaker", Price: 100, Category: strPtr("audio"), Rating: 4.5, Thumbnail: "https://example.com/speaker.jpg"},
		{ID: "2", Title: "Smart Watch", Price: 200, Category: strPtr("wearable"), Rating: 4.0, Thumbnail: "https://example.com/watch.jpg"},
		{ID: "3", Title: "Book", Price: 10, Category: strPtr("books"), Rating: 5.0, Thumbnail: "https://example.com/book.jpg"},
	}
}

func ids(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// isSubsequence reports whether every element of sub appears in full in the
// same relative order.
func isSubsequence(sub, full []Product) bool {
	j := 0
	for _, p := range sub {
		for j < len(full) && full[j].ID != p.ID {
			j++
		}
		if j == len(full) {
			return false
		}
		j++
	}
	return true
}

func withQuery(q string) FilterCriteria {
	return FilterCriteria{SearchQuery: q, Category: CategoryAll, PriceRange: UnboundedPriceRange()}
}

// ============================================================================
// FilterProducts
// ============================================================================

func TestFilterProducts_BySearchQuery(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{SearchQuery: "audio", Category: CategoryAll, PriceRange: PriceRange{Min: 0, Max: 1000}})
	require.Len(t, result, 1)
	assert.Equal(t, "Audio Speaker", result[0].Title)
}

func TestFilterProducts_ByCategory(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{Category: "books", PriceRange: PriceRange{Min: 0, Max: 1000}})
	require.Len(t, result, 1)
	assert.Equal(t, "Book", result[0].Title)
}

func TestFilterProducts_ByPriceRange(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{Category: CategoryAll, PriceRange: PriceRange{Min: 50, Max: 150}})
	require.Len(t, result, 1)
	assert.Equal(t, "Audio Speaker", result[0].Title)
}

func TestFilterProducts_PriceBoundsInclusive(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{Category: CategoryAll, PriceRange: PriceRange{Min: 10, Max: 100}})
	assert.Equal(t, []string{"1", "3"}, ids(result))
}

func TestFilterProducts_PriceRangeExcludesAboveMax(t *testing.T) {
	products := []Product{
		{ID: "a", Title: "Hundred", Price: 100},
		{ID: "b", Title: "Two hundred", Price: 200},
	}
	result := FilterProducts(products, FilterCriteria{Category: CategoryAll, PriceRange: PriceRange{Min: 50, Max: 150}})
	assert.Equal(t, []string{"a"}, ids(result))
}

func TestFilterProducts_NoMatch(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{SearchQuery: "xyz", Category: CategoryAll, PriceRange: PriceRange{Min: 0, Max: 1000}})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestFilterProducts_CombinesAllFilters(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{SearchQuery: "smart", Category: "wearable", PriceRange: PriceRange{Min: 150, Max: 250}})
	require.Len(t, result, 1)
	assert.Equal(t, "Smart Watch", result[0].Title)
}

func TestFilterProducts_EmptyInput(t *testing.T) {
	result := FilterProducts(nil, DefaultCriteria())
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestFilterProducts_ProQueryPreservesOrder(t *testing.T) {
	products := []Product{
		{ID: "1", Title: "iPhone 14 Pro"},
		{ID: "2", Title: "MacBook Pro"},
		{ID: "3", Title: "airpods pro"},
	}
	result := FilterProducts(products, withQuery("pro"))
	assert.Equal(t, []string{"1", "2", "3"}, ids(result))
}

func TestFilterProducts_CaseInsensitive(t *testing.T) {
	products := []Product{
		{ID: "1", Title: "iPhone 14 Pro"},
		{ID: "2", Title: "Galaxy S23"},
		{ID: "3", Title: "IPHONE case"},
	}
	upper := FilterProducts(products, withQuery("IPHONE"))
	lower := FilterProducts(products, withQuery("iphone"))
	assert.Equal(t, upper, lower)
	assert.Equal(t, []string{"1", "3"}, ids(lower))
}

func TestFilterProducts_CategoryIsCaseSensitive(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{Category: "Books", PriceRange: UnboundedPriceRange()})
	assert.Empty(t, result)
}

func TestFilterProducts_MissingCategoryNeverMatches(t *testing.T) {
	products := []Product{
		{ID: "1", Title: "No category", Price: 5},
		{ID: "2", Title: "Empty category", Price: 5, Category: strPtr("")},
		{ID: "3", Title: "Audio", Price: 5, Category: strPtr("audio")},
	}

	assert.Equal(t, []string{"3"}, ids(FilterProducts(products, FilterCriteria{Category: "audio", PriceRange: UnboundedPriceRange()})))
	assert.Equal(t, []string{"2"}, ids(FilterProducts(products, FilterCriteria{Category: "", PriceRange: UnboundedPriceRange()})))
	assert.Len(t, FilterProducts(products, FilterCriteria{Category: CategoryAll, PriceRange: UnboundedPriceRange()}), 3)
}

func TestFilterProducts_MinGreaterThanMaxYieldsNothing(t *testing.T) {
	result := FilterProducts(sampleProducts(), FilterCriteria{Category: CategoryAll, PriceRange: PriceRange{Min: 500, Max: 10}})
	assert.Empty(t, result)
}

func TestFilterProducts_NaNPriceExcluded(t *testing.T) {
	products := []Product{{ID: "nan", Title: "Broken", Price: math.NaN()}}
	assert.Empty(t, FilterProducts(products, DefaultCriteria()))
}

func TestFilterProducts_DoesNotMutateInput(t *testing.T) {
	products := sampleProducts()
	before := ids(products)

	_ = FilterProducts(products, FilterCriteria{SearchQuery: "o", Category: "books", PriceRange: PriceRange{Min: 0, Max: 50}})

	assert.Equal(t, before, ids(products))
	assert.Equal(t, "Audio Speaker", products[0].Title)
}

func TestFilterProducts_IdentityLaw(t *testing.T) {
	products := sampleProducts()
	identity := FilterCriteria{SearchQuery: "", Category: CategoryAll, PriceRange: UnboundedPriceRange()}
	assert.Equal(t, products, FilterProducts(products, identity))
}

func TestFilterProducts_SubsequenceInvariant(t *testing.T) {
	products := append(sampleProducts(),
		Product{ID: "4", Title: "Smart Speaker", Price: 80, Category: strPtr("audio")},
		Product{ID: "5", Title: "Audio Book", Price: 15, Category: strPtr("books")},
	)

	criteria := []FilterCriteria{
		withQuery("speaker"),
		withQuery("o"),
		{Category: "audio", PriceRange: UnboundedPriceRange()},
		{Category: CategoryAll, PriceRange: PriceRange{Min: 10, Max: 90}},
		{SearchQuery: "book", Category: "books", PriceRange: PriceRange{Min: 0, Max: 12}},
		DefaultCriteria(),
	}

	for _, c := range criteria {
		result := FilterProducts(products, c)
		assert.True(t, isSubsequence(result, products), "criteria %+v", c)
		assert.LessOrEqual(t, len(result), len(products))
	}
}

func TestFilterProducts_Composability(t *testing.T) {
	products := append(sampleProducts(),
		Product{ID: "4", Title: "Smart Speaker", Price: 80, Category: strPtr("audio")},
	)

	byQuery := withQuery("s")
	byCategory := FilterCriteria{Category: "audio", PriceRange: UnboundedPriceRange()}
	byPrice := FilterCriteria{Category: CategoryAll, PriceRange: PriceRange{Min: 50, Max: 90}}
	combined := FilterCriteria{SearchQuery: "s", Category: "audio", PriceRange: PriceRange{Min: 50, Max: 90}}

	stepwise := FilterProducts(FilterProducts(FilterProducts(products, byQuery), byCategory), byPrice)
	assert.Equal(t, FilterProducts(products, combined), stepwise)
	assert.Equal(t, []string{"4"}, ids(stepwise))

	reordered := FilterProducts(FilterProducts(products, byPrice), byQuery)
	assert.Equal(t, FilterProducts(FilterProducts(products, byQuery), byPrice), reordered)
}

// ============================================================================
// Criteria helpers
// ============================================================================

func TestDefaultCriteria(t *testing.T) {
	c := DefaultCriteria()
	assert.Equal(t, "", c.SearchQuery)
	assert.Equal(t, CategoryAll, c.Category)
	assert.Equal(t, PriceRange{Min: 0, Max: 1000}, c.PriceRange)
}

func TestCategories_FirstSeenOrderWithAll(t *testing.T) {
	products := []Product{
		{ID: "1", Category: strPtr("phones")},
		{ID: "2"},
		{ID: "3", Category: strPtr("laptops")},
		{ID: "4", Category: strPtr("phones")},
		{ID: "5", Category: strPtr("")},
		{ID: "6", Category: strPtr(CategoryAll)},
	}
	assert.Equal(t, []string{CategoryAll, "phones", "laptops"}, Categories(products))
}

func TestCategories_Empty(t *testing.T) {
	assert.Equal(t, []string{CategoryAll}, Categories(nil))
}

func TestProduct_PrimaryImage(t *testing.T) {
	assert.Equal(t, "thumb.jpg", Product{Thumbnail: "thumb.jpg"}.PrimaryImage())
	assert.Equal(t, "a.jpg", Product{Thumbnail: "thumb.jpg", Images: []string{"a.jpg", "b.jpg"}}.PrimaryImage())
}

func TestFindProduct(t *testing.T) {
	p, ok := FindProduct(sampleProducts(), "2")
	require.True(t, ok)
	assert.Equal(t, "Smart Watch", p.Title)

	_, ok = FindProduct(sampleProducts(), "missing")
	assert.False(t, ok)
}
