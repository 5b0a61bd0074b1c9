package controllers

import (
	"net/http"

	ordercontrollers "github.com/dreamcandylab/candylab-backend/api/controllers/orders"
	"github.com/dreamcandylab/candylab-backend/api/middleware"
	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	"github.com/dreamcandylab/candylab-backend/internal/checkout"
	"github.com/dreamcandylab/candylab-backend/internal/orders"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

const maxShippingMemoLength = 200

type directItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type shippingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Memo    string `json:"memo"`
}

type checkoutRequest struct {
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Shipping      shippingRequest     `json:"shipping"`
	Direct        *directItemRequest  `json:"direct,omitempty"`
}

type quoteRequest struct {
	Direct *directItemRequest `json:"direct,omitempty"`
}

type checkoutResponse struct {
	Order ordercontrollers.OrderDTO `json:"order"`
	Quote pricing.Quote             `json:"quote"`
}

// Checkout places an order from the cart, or from a single product when
// direct is present.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), checkout.Input{
			UserID:        userID,
			UserName:      middleware.DisplayNameFromContext(r.Context()),
			PaymentMethod: body.PaymentMethod,
			Shipping: orders.ShippingInfo{
				Name:    body.Shipping.Name,
				Phone:   body.Shipping.Phone,
				Address: body.Shipping.Address,
				Memo:    validators.CleanText(body.Shipping.Memo, maxShippingMemoLength),
			},
			Direct: toDirectItem(body.Direct),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order: ordercontrollers.NewOrderDTO(*result.Order),
			Quote: result.Quote,
		})
	}
}

// CheckoutQuote prices the cart or a direct item without recording anything.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), userID, toDirectItem(body.Direct))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

func toDirectItem(req *directItemRequest) *checkout.DirectItem {
	if req == nil {
		return nil
	}
	return &checkout.DirectItem{ProductID: req.ProductID, Quantity: req.Quantity}
}
