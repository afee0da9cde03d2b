package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity principal that owns tasks, tags, and conversations
// (pure domain model; no transport or storage concerns).
type User struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURL   *string
	Password    string // bcrypt hash; never serialized
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateUserRequest is the validated input to registration.
type CreateUserRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=1,max=100" example:"John Doe"`
	Email       string `json:"email" binding:"required,email" example:"john@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"securePassword123"`
}

// UpdateUserRequest carries partial profile overrides; nil fields are left
// untouched. Email updates are re-checked for uniqueness the same way
// registration is.
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName,omitempty" binding:"omitempty,min=1,max=100" example:"John Smith"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email" example:"john.smith@example.com"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"securePassword123"`
}

// UserResponse is a User with its password hash stripped for API output.
type UserResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DisplayName string    `json:"displayName" example:"John Doe"`
	Email       string    `json:"email" example:"john@example.com"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" example:"2023-01-01T12:00:00Z"`
	UpdatedAt   time.Time `json:"updatedAt" example:"2023-01-01T12:00:00Z"`
}

// ToResponse converts a User to UserResponse, stripping the password hash.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NewUser builds a User with a freshly generated id from validated
// registration input and an already-hashed password.
func NewUser(req CreateUserRequest, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.New().String(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    hashedPassword,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UserRepository is the Store-backed persistence boundary for users. Email
// uniqueness is enforced case-insensitively; callers normalize email before
// reaching here.
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(id string, updates UpdateUserRequest) (*User, error)
	// Delete soft-deletes the user row. The user's tasks, tags, and
	// conversations are not removed.
	Delete(id string) error
	EmailExists(email string) (bool, error)
}
