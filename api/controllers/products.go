package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

type productResolver interface {
	Resolve(ctx context.Context, productID string) (catalog.Product, error)
}

// ProductList returns the catalog, optionally narrowed by flavor and color.
func ProductList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		products := catalog.All()

		if raw := strings.TrimSpace(q.Get("flavor")); raw != "" {
			flavor, err := enums.ParseJellyFlavor(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flavor"))
				return
			}
			products = keep(products, func(p catalog.Product) bool { return p.Flavor == flavor })
		}
		if raw := strings.TrimSpace(q.Get("color")); raw != "" {
			color, err := enums.ParseJellyColor(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid color"))
				return
			}
			products = keep(products, func(p catalog.Product) bool { return p.Color == color })
		}

		responses.WriteSuccess(w, products)
	}
}

func ProductBestSellers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.BestSellers())
	}
}

// ProductDetail resolves catalog, custom and winner ids.
func ProductDetail(resolver productResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product resolver unavailable"))
			return
		}
		product, err := resolver.Resolve(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func keep(products []catalog.Product, match func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}
