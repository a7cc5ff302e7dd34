package catalog

import (
	"testing"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func p(id, name, brand, category string, price int64, discount, reviews int, rating float64) domain.Product {
	return domain.Product{
		ID: id, Name: name, Brand: brand, Category: category,
		Price: decimal.NewFromInt(price), MRP: decimal.NewFromInt(price), Discount: discount,
		Reviews: reviews, Rating: rating,
	}
}

func fixture() []domain.Product {
	return []domain.Product{
		p("a", "Dolo 650", "Micro Labs", "Pain Relief", 28, 20, 100, 4.5),
		p("b", "Allegra", "Sanofi", "Allergy", 198, 16, 300, 4.4),
		p("c", "Okacet", "Cipla", "Allergy", 16, 13, 100, 4.8),
		p("d", "Volini", "Sun Pharma", "Pain Relief", 135, 10, 50, 4.3),
		p("e", "Revital", "Sun Pharma", "Vitamins", 297, 20, 100, 4.5),
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestApply_Sorts(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want []string
	}{
		{"popularity by reviews then rating, ties keep order", SortPopularity, []string{"b", "c", "a", "e", "d"}},
		{"price ascending", SortPriceAsc, []string{"c", "a", "d", "b", "e"}},
		{"price descending", SortPriceDesc, []string{"e", "b", "d", "a", "c"}},
		{"discount descending, ties keep order", SortDiscount, []string{"a", "e", "b", "c", "d"}},
		{"empty sort is popularity", "", []string{"b", "c", "a", "e", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(fixture(), Query{Sort: tt.sort})))
		})
	}
}

func TestApply_Filters(t *testing.T) {
	products := fixture()

	assert.Equal(t, []string{"b", "c"}, ids(Apply(products, Query{Category: "allergy", Sort: SortPriceDesc})))
	assert.Equal(t, []string{"e", "d"}, ids(Apply(products, Query{Text: "sun pharma", Sort: SortPriceDesc})))
	assert.Equal(t, []string{"a"}, ids(Apply(products, Query{Text: "DOLO"})))
	assert.Equal(t, []string{"e"}, ids(Apply(products, Query{Text: "vitamin"})))
	assert.Equal(t, []string{"d"}, ids(Apply(products, Query{Category: "Pain Relief", Text: "volini"})))
	assert.Empty(t, Apply(products, Query{Text: "insulin"}))
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	products := fixture()

	Apply(products, Query{Sort: SortPriceAsc})

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(products))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSort("price_asc"))
	assert.Equal(t, SortPriceDesc, ParseSort(" PRICE_DESC "))
	assert.Equal(t, SortDiscount, ParseSort("discount"))
	assert.Equal(t, SortPopularity, ParseSort(""))
	assert.Equal(t, SortPopularity, ParseSort("rating"))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Pain Relief", "Allergy", "Vitamins"}, Categories(fixture()))
	assert.Empty(t, Categories(nil))
}
