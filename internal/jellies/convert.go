package jellies

import (
	"fmt"
	"strings"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

const (
	TagCustom   = "커스텀"
	TagMine     = "나만의 젤리"
	TagWinner   = "우승작"
	TagLimited  = "한정판"
	defaultName = "나"

	maxScale = 5
	minScale = 1
)

// ConvertToProduct turns a lab jelly into a purchasable custom product.
func ConvertToProduct(jelly models.Jelly, author string, price int64) catalog.Product {
	author = strings.TrimSpace(author)
	if author == "" {
		author = defaultName
	}
	return catalog.Product{
		ID:          catalog.CustomPrefix + jelly.ID.String(),
		Name:        jelly.Name,
		Flavor:      jelly.Flavor,
		Color:       enums.ColorPink,
		Description: fmt.Sprintf("%s가 만든 커스텀 젤리입니다!", author),
		Price:       price,
		Sweetness:   SweetnessScale(jelly.Sweetness),
		Softness:    Softness(jelly.Texture),
		Shine:       maxScale,
		InStock:     true,
		Tags:        []string{TagCustom, catalog.FlavorName(jelly.Flavor), TagMine},
		Custom:      true,
	}
}

// WinnerProduct is the limited edition sold for the contest winner.
func WinnerProduct(jelly models.Jelly, price int64) catalog.Product {
	flavorName := catalog.FlavorName(jelly.Flavor)
	return catalog.Product{
		ID:          catalog.WinnerPrefix + jelly.ID.String(),
		Name:        fmt.Sprintf("%s 우승 젤리", flavorName),
		Flavor:      jelly.Flavor,
		Color:       enums.ColorPink,
		Description: fmt.Sprintf("%d표를 받아 우승한 Dream Candy Lab의 걸작", jelly.Votes),
		Price:       price,
		Sweetness:   SweetnessScale(jelly.Sweetness),
		Softness:    Softness(jelly.Texture),
		Shine:       maxScale,
		InStock:     true,
		Tags:        []string{TagWinner, TagLimited, flavorName},
		Custom:      true,
	}
}

// SweetnessScale maps 0..100 onto the 1..5 product scale.
func SweetnessScale(sweetness int) int {
	v := sweetness / 20
	if v < minScale {
		return minScale
	}
	if v > maxScale {
		return maxScale
	}
	return v
}

func Softness(texture enums.JellyTexture) int {
	switch texture {
	case enums.TextureSoft:
		return 5
	case enums.TextureChewy:
		return 3
	default:
		return 4
	}
}
