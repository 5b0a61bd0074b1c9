package models

import (
	"time"

	"github.com/google/uuid"
)

// Vote records that a user voted for a jelly. At most one per pair.
type Vote struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:votes_user_jelly_key"`
	JellyID   uuid.UUID `gorm:"column:jelly_id;type:uuid;not null;index:votes_jelly_id_idx;uniqueIndex:votes_user_jelly_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
