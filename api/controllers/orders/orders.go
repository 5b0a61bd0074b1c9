// Package orders serves order history for buyers and the admin order list.
package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/api/middleware"
	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	internalorders "github.com/dreamcandylab/candylab-backend/internal/orders"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
	"github.com/dreamcandylab/candylab-backend/pkg/pagination"
)

var errNoRecorder = pkgerrors.New(pkgerrors.CodeInternal, "order recorder unavailable")

// buyerHandler resolves the authenticated buyer before calling serve.
func buyerHandler(recorder internalorders.Recorder, logg *logger.Logger, serve func(*http.Request, uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if recorder == nil {
			responses.WriteError(ctx, logg, w, errNoRecorder)
			return
		}
		buyer, err := middleware.ActorIDFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := serve(r, buyer)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// Mine lists the caller's orders, newest first.
func Mine(recorder internalorders.Recorder, logg *logger.Logger) http.HandlerFunc {
	return buyerHandler(recorder, logg, func(r *http.Request, buyer uuid.UUID) (any, error) {
		rows, err := recorder.ListUserOrders(r.Context(), buyer)
		if err != nil {
			return nil, err
		}
		return newOrderDTOs(rows), nil
	})
}

// Detail answers NOT_FOUND for orders that belong to someone else.
func Detail(recorder internalorders.Recorder, logg *logger.Logger) http.HandlerFunc {
	return buyerHandler(recorder, logg, func(r *http.Request, buyer uuid.UUID) (any, error) {
		raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
		orderID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id").
				WithDetails(map[string]string{"orderId": raw})
		}
		order, err := recorder.GetUserOrder(r.Context(), buyer, orderID)
		if err != nil {
			return nil, err
		}
		return NewOrderDTO(*order), nil
	})
}

func AdminList(recorder internalorders.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if recorder == nil {
			responses.WriteError(ctx, logg, w, errNoRecorder)
			return
		}
		limit, err := validators.QueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := recorder.ListAllOrders(ctx, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WritePage(w, newOrderDTOs(page.Items), page.NextCursor)
	}
}
