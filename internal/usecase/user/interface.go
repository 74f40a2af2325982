package user

import "context"

// UserUsecase defines the business operations behind the /users endpoints.
type UserUsecase interface {
	ListUsers(ctx context.Context) (*ListUsersResponse, error)
	CreateUser(ctx context.Context, in CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) error
}
