package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

func TestAllReturnsSeedCopy(t *testing.T) {
	t.Parallel()

	products := All()
	require.Len(t, products, 8)
	assert.Equal(t, "jelly-001", products[0].ID)
	assert.Equal(t, "jelly-008", products[7].ID)

	products[0].Tags[0] = "mutated"
	again, ok := ByID("jelly-001")
	require.True(t, ok)
	assert.Equal(t, TagBestSeller, again.Tags[0])
}

func TestByIDMissing(t *testing.T) {
	t.Parallel()

	_, ok := ByID("jelly-999")
	assert.False(t, ok)
}

func TestFilters(t *testing.T) {
	t.Parallel()

	strawberry := ByFlavor(enums.FlavorStrawberry)
	require.Len(t, strawberry, 2)
	assert.Equal(t, "jelly-001", strawberry[0].ID)
	assert.Equal(t, "jelly-008", strawberry[1].ID)

	mint := ByColor(enums.ColorMint)
	require.Len(t, mint, 2)
	assert.Equal(t, "jelly-003", mint[0].ID)
	assert.Equal(t, "jelly-006", mint[1].ID)

	assert.Empty(t, ByFlavor(enums.FlavorCherry))

	best := BestSellers()
	require.Len(t, best, 2)
	assert.Equal(t, "jelly-001", best[0].ID)
	assert.Equal(t, "jelly-008", best[1].ID)
}

func TestEmojiAndFlavorName(t *testing.T) {
	t.Parallel()

	p, _ := ByID("jelly-002")
	assert.Equal(t, "🍋", Emoji(p))

	p.Emoji = "⭐"
	assert.Equal(t, "⭐", Emoji(p))

	assert.Equal(t, "🍬", FlavorEmoji(enums.JellyFlavor("durian")))
	assert.Equal(t, "🫐", FlavorEmoji(enums.FlavorBlueberry))

	assert.Equal(t, "수박", FlavorName(enums.FlavorWatermelon))
	assert.Equal(t, "durian", FlavorName(enums.JellyFlavor("durian")))
}

type stubCustomSource struct {
	calls   []string
	product Product
	err     error
}

func (s *stubCustomSource) CustomProduct(_ context.Context, productID string) (Product, error) {
	s.calls = append(s.calls, productID)
	return s.product, s.err
}

func TestResolver(t *testing.T) {
	t.Parallel()

	src := &stubCustomSource{product: Product{ID: "custom_abc", Custom: true}}
	r := NewResolver(src)
	ctx := context.Background()

	p, err := r.Resolve(ctx, "jelly-004")
	require.NoError(t, err)
	assert.Equal(t, "그레이프 드림", p.Name)
	assert.Empty(t, src.calls)

	p, err = r.Resolve(ctx, "custom_abc")
	require.NoError(t, err)
	assert.True(t, p.Custom)
	assert.Equal(t, []string{"custom_abc"}, src.calls)

	_, err = r.Resolve(ctx, "nope")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = r.Resolve(ctx, "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = NewResolver(nil).Resolve(ctx, "winner_abc")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
