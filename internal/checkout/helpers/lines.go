package helpers

import (
	"github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
)

// PricingLines maps cart lines onto calculator input.
func PricingLines(items []cart.Item) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{UnitPrice: item.Product.Price, Quantity: item.Quantity})
	}
	return lines
}

// OrderLines snapshots cart lines for the order record.
func OrderLines(items []cart.Item) []orders.LineInput {
	lines := make([]orders.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, orders.LineInput{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
			Emoji:       catalog.Emoji(item.Product),
		})
	}
	return lines
}
