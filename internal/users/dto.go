package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
)

// UserDTO is the public view of an account. It never carries the hash.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CreateUserDTO is registration input after validation and hashing.
// A nil IsActive means active; an unknown role falls back to user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Role         enums.UserRole
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	dto := UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
	if u.LastLoginAt != nil {
		at := u.LastLoginAt.UTC()
		dto.LastLoginAt = &at
	}
	return &dto
}

func (c CreateUserDTO) ToModel() *models.User {
	u := &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		DisplayName:  c.DisplayName,
		Role:         enums.UserRoleUser,
		IsActive:     c.IsActive == nil || *c.IsActive,
	}
	if c.Role.IsValid() {
		u.Role = c.Role
	}
	return u
}
