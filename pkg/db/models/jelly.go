package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

// Jelly is a lab creation entered into the vote contest.
type Jelly struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Flavor      enums.JellyFlavor  `gorm:"column:flavor;not null"`
	Sweetness   int                `gorm:"column:sweetness;not null"`
	Sourness    int                `gorm:"column:sourness;not null"`
	Texture     enums.JellyTexture `gorm:"column:texture;not null"`
	Color       string             `gorm:"column:color;not null"`
	CreatorID   uuid.UUID          `gorm:"column:creator_id;type:uuid;not null;index:jellies_creator_id_idx"`
	CreatorName string             `gorm:"column:creator_name;not null"`
	Votes       int                `gorm:"column:votes;not null;default:0"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
