package catalog

import (
	"sort"
	"strings"

	"github.com/fjod/go_pharmacy/internal/domain"
)

type Sort string

const (
	SortPopularity Sort = "popularity"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortDiscount   Sort = "discount"
)

// ParseSort maps an unknown or empty value to SortPopularity.
func ParseSort(s string) Sort {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortPriceAsc, SortPriceDesc, SortDiscount:
		return v
	default:
		return SortPopularity
	}
}

type Query struct {
	Category string
	Text     string
	Sort     Sort
}

// Apply filters and sorts products without modifying the input. Ties keep catalog order.
func Apply(products []domain.Product, q Query) []domain.Product {
	category := strings.TrimSpace(q.Category)
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if text != "" && !matchesText(p, text) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortDiscount:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Discount > out[j].Discount })
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Reviews != out[j].Reviews {
				return out[i].Reviews > out[j].Reviews
			}
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

func matchesText(p domain.Product, text string) bool {
	return strings.Contains(strings.ToLower(p.Name), text) ||
		strings.Contains(strings.ToLower(p.Brand), text) ||
		strings.Contains(strings.ToLower(p.Category), text)
}

// Categories returns the distinct categories in catalog order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
