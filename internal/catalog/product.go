package catalog

import (
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

// Product is a purchasable jelly. Prices are KRW with no minor unit.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Flavor      enums.JellyFlavor `json:"flavor"`
	Color       enums.JellyColor  `json:"color"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Emoji       string            `json:"emoji,omitempty"`
	Sweetness   int               `json:"sweetness"`
	Softness    int               `json:"softness"`
	Shine       int               `json:"shine"`
	InStock     bool              `json:"in_stock"`
	Tags        []string          `json:"tags"`
	Character   string            `json:"character,omitempty"`
	Custom      bool              `json:"custom"`
}

// HasTag reports whether tag is attached to the product.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

var flavorEmoji = map[enums.JellyFlavor]string{
	enums.FlavorStrawberry: "🍓",
	enums.FlavorLemon:      "🍋",
	enums.FlavorMint:       "🌿",
	enums.FlavorGrape:      "🍇",
	enums.FlavorPeach:      "🍑",
	enums.FlavorApple:      "🍏",
	enums.FlavorOrange:     "🍊",
	enums.FlavorBlueberry:  "🫐",
	enums.FlavorWatermelon: "🍉",
	enums.FlavorCherry:     "🍒",
}

var flavorNames = map[enums.JellyFlavor]string{
	enums.FlavorStrawberry: "딸기",
	enums.FlavorLemon:      "레몬",
	enums.FlavorMint:       "민트",
	enums.FlavorGrape:      "포도",
	enums.FlavorPeach:      "복숭아",
	enums.FlavorApple:      "사과",
	enums.FlavorOrange:     "오렌지",
	enums.FlavorBlueberry:  "블루베리",
	enums.FlavorWatermelon: "수박",
	enums.FlavorCherry:     "체리",
}

const defaultEmoji = "🍬"

// Emoji returns the product's explicit emoji, falling back to its flavor.
func Emoji(p Product) string {
	if p.Emoji != "" {
		return p.Emoji
	}
	return FlavorEmoji(p.Flavor)
}

// FlavorEmoji maps a flavor to its icon.
func FlavorEmoji(flavor enums.JellyFlavor) string {
	if e, ok := flavorEmoji[flavor]; ok {
		return e
	}
	return defaultEmoji
}

// FlavorName returns the Korean display label, or the raw code when unknown.
func FlavorName(flavor enums.JellyFlavor) string {
	if name, ok := flavorNames[flavor]; ok {
		return name
	}
	return string(flavor)
}
