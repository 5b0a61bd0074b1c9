package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
)

// Line is the minimum a priced line needs: unit price and quantity.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Policy holds the storefront pricing knobs. Amounts are KRW.
type Policy struct {
	ShippingFee           int64
	FreeShippingThreshold int64
	DiscountRate          decimal.Decimal
}

// DefaultPolicy is the storefront's standing policy.
func DefaultPolicy() Policy {
	return Policy{
		ShippingFee:           2500,
		FreeShippingThreshold: 30000,
		DiscountRate:          decimal.Zero,
	}
}

// PolicyFromConfig maps storefront settings onto a Policy.
func PolicyFromConfig(cfg config.StorefrontConfig) Policy {
	return Policy{
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		DiscountRate:          cfg.DiscountRate,
	}
}

// Quote is a full price breakdown.
type Quote struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Discount    int64 `json:"discount"`
	FinalTotal  int64 `json:"final_total"`
	ItemCount   int   `json:"item_count"`
}

// Calculator prices line lists. It holds no state beyond its policy.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() Policy {
	return c.policy
}

func (c *Calculator) Subtotal(lines []Line) int64 {
	var total int64
	for _, line := range lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// ShippingFee waives shipping once subtotal reaches the threshold.
func (c *Calculator) ShippingFee(subtotal int64) int64 {
	if subtotal >= c.policy.FreeShippingThreshold {
		return 0
	}
	return c.policy.ShippingFee
}

// Discount is floor(subtotal * rate).
func (c *Calculator) Discount(subtotal int64) int64 {
	if c.policy.DiscountRate.IsZero() || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(c.policy.DiscountRate).Floor().IntPart()
}

func (c *Calculator) FinalTotal(subtotal, shippingFee, discount int64) int64 {
	return subtotal + shippingFee - discount
}

// Quote prices lines end to end. An empty list still carries the shipping
// fee; callers decide whether an empty list may be checked out.
func (c *Calculator) Quote(lines []Line) Quote {
	subtotal := c.Subtotal(lines)
	shipping := c.ShippingFee(subtotal)
	discount := c.Discount(subtotal)
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return Quote{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		FinalTotal:  c.FinalTotal(subtotal, shipping, discount),
		ItemCount:   count,
	}
}
