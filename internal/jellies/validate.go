package jellies

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

const (
	maxNameLength = 30
	maxLevel      = 100
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CreateJellyInput is a lab submission.
type CreateJellyInput struct {
	Name      string
	Flavor    enums.JellyFlavor
	Sweetness int
	Sourness  int
	Texture   enums.JellyTexture
	Color     string
}

// ValidateJelly rejects malformed submissions. Details map field to reason.
func ValidateJelly(input CreateJellyInput) error {
	problems := map[string]string{}
	name := strings.TrimSpace(input.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		problems["name"] = "must be 1-30 characters"
	}
	if !input.Flavor.IsValid() {
		problems["flavor"] = "unknown flavor"
	}
	if input.Sweetness < 0 || input.Sweetness > maxLevel {
		problems["sweetness"] = "must be between 0 and 100"
	}
	if input.Sourness < 0 || input.Sourness > maxLevel {
		problems["sourness"] = "must be between 0 and 100"
	}
	if !input.Texture.IsValid() {
		problems["texture"] = "unknown texture"
	}
	if !hexColor.MatchString(input.Color) {
		problems["color"] = "must be a #RRGGBB hex color"
	}
	if len(problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid jelly").WithDetails(problems)
}
