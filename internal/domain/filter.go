package domain

import (
	"math"
	"strings"
)

// CategoryAll is the category sentinel that disables category filtering.
const CategoryAll = "All"

// Price bounds used by the product list screen when the user has not moved
// the price slider.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies within the range, inclusive on both ends.
// A range with Min > Max contains nothing.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// UnboundedPriceRange returns a range that contains every finite price.
func UnboundedPriceRange() PriceRange {
	return PriceRange{Min: math.Inf(-1), Max: math.Inf(1)}
}

// FilterCriteria narrows a product list. It is rebuilt from user input on
// every request and never persisted.
type FilterCriteria struct {
	SearchQuery string     `json:"search_query"`
	Category    string     `json:"category"`
	PriceRange  PriceRange `json:"price_range"`
}

// DefaultCriteria returns the criteria a fresh product list starts with.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		SearchQuery: "",
		Category:    CategoryAll,
		PriceRange:  PriceRange{Min: DefaultMinPrice, Max: DefaultMaxPrice},
	}
}

// FilterProducts returns the products matching all criteria, in input order.
// The passes run text, then category, then price; each narrows the working
// set produced by the previous one. The input slice is never modified.
func FilterProducts(products []Product, c FilterCriteria) []Product {
	filtered := make([]Product, 0, len(products))
	filtered = append(filtered, products...)

	if c.SearchQuery != "" {
		query := strings.ToLower(c.SearchQuery)
		filtered = retain(filtered, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Title), query)
		})
	}

	if c.Category != CategoryAll {
		filtered = retain(filtered, func(p Product) bool {
			category, ok := p.CategoryName()
			return ok && category == c.Category
		})
	}

	return retain(filtered, func(p Product) bool {
		return c.PriceRange.Contains(p.Price)
	})
}

// retain keeps the products satisfying keep, compacting the slice in place.
// Callers must own the backing array.
func retain(products []Product, keep func(Product) bool) []Product {
	n := 0
	for _, p := range products {
		if keep(p) {
			products[n] = p
			n++
		}
	}
	return products[:n]
}

// Categories returns the category chips for a product list: CategoryAll
// followed by each distinct non-empty category in first-seen order.
func Categories(products []Product) []string {
	seen := map[string]struct{}{CategoryAll: {}}
	categories := []string{CategoryAll}
	for _, p := range products {
		category, ok := p.CategoryName()
		if !ok || category == "" {
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	return categories
}
