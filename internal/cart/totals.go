package cart

import (
	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/shopspring/decimal"
)

func totalItems(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func totalPrice(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func savings(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Savings())
	}
	return sum
}

func summarize(lines []domain.CartLine) Summary {
	return Summary{
		Lines:      copyLines(lines),
		TotalItems: totalItems(lines),
		TotalPrice: totalPrice(lines),
		Savings:    savings(lines),
	}
}

func copyLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
