package user

import (
	"time"

	domain "user-dashboard/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// UpdateUserRequest represents a partial or full overwrite of a user.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	ID    int64
	Name  *string
	Email *string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO returned to the transport layer.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

func fromDomain(u *domain.User) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
