package enums

import "slices"

// JellyFlavor is shared by catalog products and lab jellies.
type JellyFlavor string

const (
	FlavorStrawberry JellyFlavor = "strawberry"
	FlavorLemon      JellyFlavor = "lemon"
	FlavorMint       JellyFlavor = "mint"
	FlavorGrape      JellyFlavor = "grape"
	FlavorPeach      JellyFlavor = "peach"
	FlavorApple      JellyFlavor = "apple"
	FlavorOrange     JellyFlavor = "orange"
	FlavorBlueberry  JellyFlavor = "blueberry"
	FlavorWatermelon JellyFlavor = "watermelon"
	FlavorCherry     JellyFlavor = "cherry"
)

var jellyFlavors = []JellyFlavor{
	FlavorStrawberry, FlavorLemon, FlavorMint, FlavorGrape, FlavorPeach,
	FlavorApple, FlavorOrange, FlavorBlueberry, FlavorWatermelon, FlavorCherry,
}

func (f JellyFlavor) IsValid() bool { return slices.Contains(jellyFlavors, f) }

func ParseJellyFlavor(raw string) (JellyFlavor, error) {
	return parse(jellyFlavors, "jelly flavor", raw)
}

// JellyColor is a catalog palette name.
type JellyColor string

const (
	ColorPink     JellyColor = "pink"
	ColorYellow   JellyColor = "yellow"
	ColorMint     JellyColor = "mint"
	ColorLavender JellyColor = "lavender"
	ColorOrange   JellyColor = "orange"
	ColorSky      JellyColor = "sky"
)

var jellyColors = []JellyColor{ColorPink, ColorYellow, ColorMint, ColorLavender, ColorOrange, ColorSky}

func (c JellyColor) IsValid() bool { return slices.Contains(jellyColors, c) }

func ParseJellyColor(raw string) (JellyColor, error) {
	return parse(jellyColors, "jelly color", raw)
}

// JellyTexture is picked in the lab and decides the converted softness.
type JellyTexture string

const (
	TextureSoft   JellyTexture = "soft"
	TextureChewy  JellyTexture = "chewy"
	TextureBouncy JellyTexture = "bouncy"
)

var jellyTextures = []JellyTexture{TextureSoft, TextureChewy, TextureBouncy}

func (t JellyTexture) IsValid() bool { return slices.Contains(jellyTextures, t) }

func ParseJellyTexture(raw string) (JellyTexture, error) {
	return parse(jellyTextures, "jelly texture", raw)
}
