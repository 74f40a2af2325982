package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-dashboard/internal/domain/user"
	pkgerrors "user-dashboard/pkg/errors"
	"user-dashboard/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// Implementations return a *errors.NotFoundError when the id does not exist.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.Patch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.User, error)
}

// Usecase implements the user operations on top of a Repository.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ UserUsecase = (*Usecase)(nil)

// New creates a new instance of Usecase.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// wrapRepoError keeps not-found errors intact and turns everything else
// into an InternalError. The store already names the failed operation, so
// its message is carried as is.
func wrapRepoError(err error) error {
	if pkgerrors.IsNotFound(err) {
		return err
	}
	return pkgerrors.NewInternalError("", err)
}

// ListUsers returns every user in store order. An empty store yields an empty slice.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Debug("listing users")

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, wrapRepoError(err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *fromDomain(&domainUsers[i])
	}

	return &ListUsersResponse{Users: users}, nil
}

// CreateUser creates a new user once name and email are present.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, wrapRepoError(err)
	}

	log.Info("user created", zap.Int64("id", u.ID))
	return fromDomain(u), nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			logger.WithContext(ctx, uc.log).Debug("user not found", zap.Int64("id", in.ID))
		} else {
			logger.WithContext(ctx, uc.log).Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, wrapRepoError(err)
	}

	return fromDomain(u), nil
}

// UpdateUser overwrites the provided fields of an existing user. A field that
// is present must not be blank.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)

	patch := domain.Patch{Name: trimmed(in.Name), Email: trimmed(in.Email)}

	var messages []string
	if patch.Name != nil && *patch.Name == "" {
		messages = append(messages, "name is required")
	}
	if patch.Email != nil && *patch.Email == "" {
		messages = append(messages, "email is required")
	}
	if len(messages) > 0 {
		log.Warn("validate failed", zap.Int64("id", in.ID), zap.Strings("errors", messages))
		return nil, pkgerrors.NewValidationError("", strings.Join(messages, ", "))
	}

	log.Info("updating user", zap.Int64("id", in.ID),
		zap.Bool("name_set", patch.Name != nil), zap.Bool("email_set", patch.Email != nil))

	u, err := uc.repo.Update(ctx, in.ID, patch)
	if err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, wrapRepoError(err)
	}

	log.Info("user updated", zap.Int64("id", u.ID))
	return fromDomain(u), nil
}

// DeleteUser removes a user by ID.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return wrapRepoError(err)
	}

	log.Info("user deleted", zap.Int64("id", in.ID))
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
