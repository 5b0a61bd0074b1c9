package jellies

import (
	"time"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/internal/catalog"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

type createRequest struct {
	Name      string             `json:"name" validate:"required"`
	Flavor    enums.JellyFlavor  `json:"flavor" validate:"required,enum"`
	Sweetness int                `json:"sweetness"`
	Sourness  int                `json:"sourness"`
	Texture   enums.JellyTexture `json:"texture" validate:"required,enum"`
	Color     string             `json:"color" validate:"required"`
}

// JellyDTO is the wire shape of a lab jelly.
type JellyDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Flavor      enums.JellyFlavor  `json:"flavor"`
	FlavorName  string             `json:"flavor_name"`
	FlavorEmoji string             `json:"flavor_emoji"`
	Sweetness   int                `json:"sweetness"`
	Sourness    int                `json:"sourness"`
	Texture     enums.JellyTexture `json:"texture"`
	Color       string             `json:"color"`
	CreatorID   uuid.UUID          `json:"creator_id"`
	CreatorName string             `json:"creator_name"`
	Votes       int                `json:"votes"`
	CreatedAt   time.Time          `json:"created_at"`
}

type voteResponse struct {
	JellyID uuid.UUID `json:"jelly_id"`
	Votes   int       `json:"votes"`
}

func newJellyDTO(j models.Jelly) JellyDTO {
	return JellyDTO{
		ID:          j.ID,
		Name:        j.Name,
		Flavor:      j.Flavor,
		FlavorName:  catalog.FlavorName(j.Flavor),
		FlavorEmoji: catalog.FlavorEmoji(j.Flavor),
		Sweetness:   j.Sweetness,
		Sourness:    j.Sourness,
		Texture:     j.Texture,
		Color:       j.Color,
		CreatorID:   j.CreatorID,
		CreatorName: j.CreatorName,
		Votes:       j.Votes,
		CreatedAt:   j.CreatedAt,
	}
}

func newJellyDTOs(rows []models.Jelly) []JellyDTO {
	out := make([]JellyDTO, 0, len(rows))
	for _, j := range rows {
		out = append(out, newJellyDTO(j))
	}
	return out
}
