package cartdto

import (
	"github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
)

// AddItemRequest adds quantity units of a product. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or less removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}

type Line struct {
	Product   catalog.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal int64           `json:"line_total"`
}

// Cart is the cart view with its current price quote.
type Cart struct {
	Items      []Line        `json:"items"`
	TotalItems int           `json:"total_items"`
	TotalPrice int64         `json:"total_price"`
	Quote      pricing.Quote `json:"quote"`
}

func NewCart(store *cart.Store, quote pricing.Quote) Cart {
	items := store.Items()
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			Product:   item.Product,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return Cart{
		Items:      lines,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
		Quote:      quote,
	}
}
