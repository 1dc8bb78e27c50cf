package dto

import (
	"time"

	"github.com/yukikurage/site-services-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /api/users/:id. Both keys are accepted.
type UpdateUserRequest struct {
	Active   *FlexBool `json:"active"`
	IsActive *FlexBool `json:"is_active"`
}

// ActiveValue returns the requested flag, nil when neither key was sent.
func (r UpdateUserRequest) ActiveValue() *bool {
	switch {
	case r.Active != nil:
		v := bool(*r.Active)
		return &v
	case r.IsActive != nil:
		v := bool(*r.IsActive)
		return &v
	}
	return nil
}
