package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/dreamcandylab/candylab-backend/api/controllers/cart/dto"
	"github.com/dreamcandylab/candylab-backend/api/middleware"
	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	cartsvc "github.com/dreamcandylab/candylab-backend/internal/cart"
	"github.com/dreamcandylab/candylab-backend/internal/checkout/helpers"
	"github.com/dreamcandylab/candylab-backend/internal/pricing"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

// Handlers serves the shopper's cart.
type Handlers struct {
	svc  cartsvc.Service
	calc *pricing.Calculator
	logg *logger.Logger
}

func NewHandlers(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) *Handlers {
	if calc == nil {
		calc = pricing.NewCalculator(pricing.DefaultPolicy())
	}
	return &Handlers{svc: svc, calc: calc, logg: logg}
}

// Fetch returns the cart with its quote.
func (h *Handlers) Fetch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		store, err := h.svc.Get(r.Context(), userID)
		h.write(w, r, store, err)
	}
}

func (h *Handlers) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		var body cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		store, err := h.svc.AddItem(r.Context(), userID, body.ProductID, body.Quantity)
		h.write(w, r, store, err)
	}
}

func (h *Handlers) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		var body cartdto.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		store, err := h.svc.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "productId"), *body.Quantity)
		h.write(w, r, store, err)
	}
}

func (h *Handlers) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		store, err := h.svc.RemoveItem(r.Context(), userID, chi.URLParam(r, "productId"))
		h.write(w, r, store, err)
	}
}

func (h *Handlers) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.ActorIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		if err := h.svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), h.logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) write(w http.ResponseWriter, r *http.Request, store *cartsvc.Store, err error) {
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	quote := h.calc.Quote(helpers.PricingLines(store.Items()))
	responses.WriteSuccess(w, cartdto.NewCart(store, quote))
}
