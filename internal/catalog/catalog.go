package catalog

import (
	"context"
	"strings"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

const (
	CustomPrefix = "custom_"
	WinnerPrefix = "winner_"
)

// All returns a copy of the static catalog.
func All() []Product {
	out := make([]Product, len(seed))
	for i, p := range seed {
		out[i] = clone(p)
	}
	return out
}

// ByID looks up a catalog product.
func ByID(id string) (Product, bool) {
	for _, p := range seed {
		if p.ID == id {
			return clone(p), true
		}
	}
	return Product{}, false
}

func ByFlavor(flavor enums.JellyFlavor) []Product {
	return filter(func(p Product) bool { return p.Flavor == flavor })
}

func ByColor(color enums.JellyColor) []Product {
	return filter(func(p Product) bool { return p.Color == color })
}

// BestSellers returns products tagged as best sellers.
func BestSellers() []Product {
	return filter(func(p Product) bool { return p.HasTag(TagBestSeller) || p.HasTag(TagBest) })
}

func filter(keep func(Product) bool) []Product {
	out := make([]Product, 0, len(seed))
	for _, p := range seed {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func clone(p Product) Product {
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

// IsCustomID reports whether id names a lab jelly or winner product.
func IsCustomID(id string) bool {
	return strings.HasPrefix(id, CustomPrefix) || strings.HasPrefix(id, WinnerPrefix)
}

// CustomSource resolves lab-derived product ids.
type CustomSource interface {
	CustomProduct(ctx context.Context, productID string) (Product, error)
}

// Resolver finds products by id across the static catalog and lab jellies.
type Resolver struct {
	custom CustomSource
}

// NewResolver builds a resolver. A nil source limits lookups to the static catalog.
func NewResolver(custom CustomSource) *Resolver {
	return &Resolver{custom: custom}
}

func (r *Resolver) Resolve(ctx context.Context, productID string) (Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if p, ok := ByID(productID); ok {
		return p, nil
	}
	if IsCustomID(productID) && r != nil && r.custom != nil {
		return r.custom.CustomProduct(ctx, productID)
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
