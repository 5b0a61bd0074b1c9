package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/internal/checkout/helpers"
	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/metrics"
)

type cartLoader interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Store, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type productResolver interface {
	Resolve(ctx context.Context, productID string) (catalog.Product, error)
}

type orderRecorder interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error)
}

// DirectItem buys a single product without going through the cart.
type DirectItem struct {
	ProductID string
	Quantity  int
}

// Input is a checkout request.
type Input struct {
	UserID        uuid.UUID
	UserName      string
	PaymentMethod enums.PaymentMethod
	Shipping      orders.ShippingInfo
	Direct        *DirectItem
}

// Result is the recorded order and the quote it was priced with.
type Result struct {
	Order *models.Order
	Quote pricing.Quote
}

// Service executes checkout orchestration.
type Service interface {
	PlaceOrder(ctx context.Context, input Input) (*Result, error)
	Quote(ctx context.Context, userID uuid.UUID, direct *DirectItem) (pricing.Quote, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Cart       cartLoader
	Products   productResolver
	Calculator *pricing.Calculator
	Orders     orderRecorder
	Metrics    *metrics.Storefront
	Logger     *logger.Logger
}

type service struct {
	cart       cartLoader
	products   productResolver
	calculator *pricing.Calculator
	orders     orderRecorder
	metrics    *metrics.Storefront
	logg       *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product resolver required")
	}
	if params.Calculator == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order recorder required")
	}
	return &service{
		cart:       params.Cart,
		products:   params.Products,
		calculator: params.Calculator,
		orders:     params.Orders,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// PlaceOrder validates, prices and records an order. The cart is cleared
// only after a cart-sourced order is recorded.
func (s *service) PlaceOrder(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if err := helpers.ValidatePaymentMethod(input.PaymentMethod); err != nil {
		return nil, err
	}
	shipping, err := helpers.NormalizeShipping(input.Shipping)
	if err != nil {
		return nil, err
	}

	items, err := s.items(ctx, input.UserID, input.Direct)
	if err != nil {
		return nil, err
	}
	quote := s.calculator.Quote(helpers.PricingLines(items))

	order, err := s.orders.CreateOrder(ctx, orders.CreateOrderInput{
		UserID:         input.UserID,
		UserName:       strings.TrimSpace(input.UserName),
		Items:          helpers.OrderLines(items),
		Subtotal:       quote.Subtotal,
		ShippingFee:    quote.ShippingFee,
		Discount:       quote.Discount,
		FinalTotal:     quote.FinalTotal,
		PaymentMethod:  input.PaymentMethod,
		Shipping:       shipping,
		DirectPurchase: input.Direct != nil,
	})
	if err != nil {
		return nil, err
	}

	source := metrics.OrderSourceDirect
	if input.Direct == nil {
		source = metrics.OrderSourceCart
		if clearErr := s.cart.Clear(ctx, input.UserID); clearErr != nil && s.logg != nil {
			logCtx := s.logg.WithField(ctx, "order_id", order.ID.String())
			s.logg.Error(logCtx, "cart clear after checkout failed", clearErr)
		}
	}
	s.metrics.ObserveOrder(source, order.FinalPrice)

	return &Result{Order: order, Quote: quote}, nil
}

func (s *service) Quote(ctx context.Context, userID uuid.UUID, direct *DirectItem) (pricing.Quote, error) {
	if userID == uuid.Nil {
		return pricing.Quote{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	items, err := s.items(ctx, userID, direct)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.calculator.Quote(helpers.PricingLines(items)), nil
}

func (s *service) items(ctx context.Context, userID uuid.UUID, direct *DirectItem) ([]cart.Item, error) {
	if direct != nil {
		product, err := s.products.Resolve(ctx, direct.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.InStock {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock")
		}
		qty := direct.Quantity
		if qty < 1 {
			qty = cart.DefaultQuantity
		}
		qty = min(qty, cart.MaxQuantity)
		return []cart.Item{{Product: product, Quantity: qty}}, nil
	}

	store, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return s.refresh(ctx, store.Items())
}

// refresh re-resolves cart lines so deleted or sold-out products cannot be
// ordered from a stale snapshot. Prices come from the current product.
func (s *service) refresh(ctx context.Context, lines []cart.Item) ([]cart.Item, error) {
	items := make([]cart.Item, 0, len(lines))
	var unavailable []string
	for _, line := range lines {
		product, err := s.products.Resolve(ctx, line.Product.ID)
		switch {
		case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
			unavailable = append(unavailable, line.Product.ID)
			continue
		case err != nil:
			return nil, err
		case !product.InStock:
			unavailable = append(unavailable, line.Product.ID)
			continue
		}
		items = append(items, cart.Item{Product: product, Quantity: line.Quantity})
	}
	if len(unavailable) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains unavailable products").
			WithDetails(map[string]any{"product_ids": unavailable})
	}
	return items, nil
}
