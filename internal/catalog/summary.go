package catalog

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"
)

// CategoryCount number of products in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary dashboard figures for the admin console.
type Summary struct {
	Total       int             `json:"total"`
	InStock     int             `json:"inStock"`
	Featured    int             `json:"featured"`
	WithImage   int             `json:"withImage"`
	Categories  []CategoryCount `json:"categories"`
	Vendors     int             `json:"vendors"`
	PriceMean   float64         `json:"priceMean"`
	PriceMedian float64         `json:"priceMedian"`
	PriceMax    float64         `json:"priceMax"`
}

// Summary computes catalog figures. Products priced 0 ("call for price") are
// left out of the price statistics.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	products, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sum := &Summary{Total: len(products), Categories: []CategoryCount{}}
	byCategory := map[string]int{}
	vendors := map[string]bool{}
	var prices stats.Float64Data
	for _, p := range products {
		if p.InStock {
			sum.InStock++
		}
		if p.Featured {
			sum.Featured++
		}
		if !p.Image.IsZero() {
			sum.WithImage++
		}
		byCategory[p.Category]++
		if p.Vendor != "" {
			vendors[p.Vendor] = true
		}
		if p.Price > 0 {
			prices = append(prices, p.Price)
		}
	}
	sum.Vendors = len(vendors)
	for c, n := range byCategory {
		sum.Categories = append(sum.Categories, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		if sum.Categories[i].Count != sum.Categories[j].Count {
			return sum.Categories[i].Count > sum.Categories[j].Count
		}
		return sum.Categories[i].Category < sum.Categories[j].Category
	})
	if len(prices) > 0 {
		sum.PriceMean, _ = stats.Round(statOrZero(prices.Mean()), 2)
		sum.PriceMedian, _ = stats.Round(statOrZero(prices.Median()), 2)
		sum.PriceMax = statOrZero(prices.Max())
	}
	return sum, nil
}

func statOrZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
