package jellies

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

func labJelly() models.Jelly {
	return models.Jelly{
		ID:          uuid.MustParse("6f1c2b7e-8a9d-4e3f-b1a2-c3d4e5f60718"),
		Name:        "솜사탕 구름",
		Flavor:      enums.FlavorGrape,
		Sweetness:   85,
		Sourness:    30,
		Texture:     enums.TextureChewy,
		Color:       "#C8A2C8",
		CreatorName: "젤리장인",
		Votes:       42,
	}
}

func TestConvertToProduct(t *testing.T) {
	t.Parallel()

	p := ConvertToProduct(labJelly(), "젤리장인", 9900)

	assert.Equal(t, "custom_6f1c2b7e-8a9d-4e3f-b1a2-c3d4e5f60718", p.ID)
	assert.Equal(t, "솜사탕 구름", p.Name)
	assert.Equal(t, enums.FlavorGrape, p.Flavor)
	assert.Equal(t, enums.ColorPink, p.Color)
	assert.Equal(t, int64(9900), p.Price)
	assert.Equal(t, 4, p.Sweetness)
	assert.Equal(t, 3, p.Softness)
	assert.Equal(t, 5, p.Shine)
	assert.True(t, p.InStock)
	assert.True(t, p.Custom)
	assert.Equal(t, []string{TagCustom, "포도", TagMine}, p.Tags)
	assert.Contains(t, p.Tags, "커스텀")
	assert.Equal(t, "젤리장인가 만든 커스텀 젤리입니다!", p.Description)
}

func TestConvertToProductIgnoresUnmappedFields(t *testing.T) {
	t.Parallel()

	a := labJelly()
	b := labJelly()
	b.Sourness = 99
	b.Color = "#000000"
	b.Votes = 0
	b.CreatorID = uuid.New()

	assert.Equal(t, ConvertToProduct(a, "x", 9900), ConvertToProduct(b, "x", 9900))
}

func TestConvertToProductBlankAuthor(t *testing.T) {
	t.Parallel()

	p := ConvertToProduct(labJelly(), "  ", 9900)
	assert.Equal(t, "나가 만든 커스텀 젤리입니다!", p.Description)
}

func TestSweetnessScaleClamps(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: 1, 19: 1, 20: 1, 39: 1, 40: 2, 85: 4, 99: 4, 100: 5}
	for in, want := range cases {
		assert.Equal(t, want, SweetnessScale(in), "sweetness %d", in)
	}
}

func TestSoftness(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, Softness(enums.TextureSoft))
	assert.Equal(t, 3, Softness(enums.TextureChewy))
	assert.Equal(t, 4, Softness(enums.TextureBouncy))
}

func TestWinnerProduct(t *testing.T) {
	t.Parallel()

	p := WinnerProduct(labJelly(), 15900)
	assert.Equal(t, "winner_6f1c2b7e-8a9d-4e3f-b1a2-c3d4e5f60718", p.ID)
	assert.Equal(t, "포도 우승 젤리", p.Name)
	assert.Equal(t, int64(15900), p.Price)
	assert.Equal(t, []string{TagWinner, TagLimited, "포도"}, p.Tags)
	assert.Equal(t, "42표를 받아 우승한 Dream Candy Lab의 걸작", p.Description)
	assert.Equal(t, 4, p.Sweetness)
	assert.Equal(t, 3, p.Softness)
}

func TestValidateJelly(t *testing.T) {
	t.Parallel()

	valid := CreateJellyInput{
		Name:      "별빛 젤리",
		Flavor:    enums.FlavorCherry,
		Sweetness: 100,
		Sourness:  0,
		Texture:   enums.TextureBouncy,
		Color:     "#ff00AA",
	}
	require.NoError(t, ValidateJelly(valid))

	long := valid
	long.Name = "가나다라마바사아자차카타파하가나다라마바사아자차카타파하가나다"
	bad := map[string]CreateJellyInput{
		"name":      long,
		"flavor":    {Name: "x", Flavor: "durian", Texture: valid.Texture, Color: valid.Color},
		"sweetness": {Name: "x", Flavor: valid.Flavor, Sweetness: 101, Texture: valid.Texture, Color: valid.Color},
		"sourness":  {Name: "x", Flavor: valid.Flavor, Sourness: -1, Texture: valid.Texture, Color: valid.Color},
		"texture":   {Name: "x", Flavor: valid.Flavor, Texture: "crunchy", Color: valid.Color},
		"color":     {Name: "x", Flavor: valid.Flavor, Texture: valid.Texture, Color: "pink"},
	}
	blank := valid
	blank.Name = "   "
	require.Error(t, ValidateJelly(blank))
	for field, input := range bad {
		err := ValidateJelly(input)
		require.Error(t, err, field)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		details, ok := typed.Details().(map[string]string)
		require.True(t, ok)
		assert.Contains(t, details, field)
	}
}
