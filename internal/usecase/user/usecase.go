package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-record-service/internal/domain/user"
	pkgerrors "user-record-service/pkg/errors"
)

// Fixed messages returned to callers when a lookup misses.
const (
	MsgUserNotFound     = "user not found"
	MsgUserIDNotFound   = "user id not found"
	MsgUserNameNotFound = "user name not found"
	MsgUserNameTaken    = "user name already exists"
)

// Repository defines the interface for user data access operations.
// Lookups return nil, nil on a miss; mutations return domain.ErrNotFound
// when no row matched and domain.ErrNameTaken on a duplicate name.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)        // Insert and return the new id
	GetByID(ctx context.Context, id int64) (*domain.User, error)      // Retrieve user by ID
	GetByName(ctx context.Context, name string) (*domain.User, error) // Retrieve user by unique name
	UpdateEmail(ctx context.Context, id int64, email string) error    // Overwrite email only
	Update(ctx context.Context, u *domain.User) error                 // Overwrite name and email
	Delete(ctx context.Context, id int64) error                       // Delete user by ID
	List(ctx context.Context) ([]domain.User, error)                  // All users ordered by id
}

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: newValidator()}
}

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest runs the schema check and converts the first failure into a
// *pkgerrors.ValidationError naming the offending field.
func (uc *Usecase) validateRequest(in any) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return pkgerrors.NewValidationError("", err.Error())
	}

	e := validationErrors[0]
	switch e.Tag() {
	case "required":
		return pkgerrors.NewValidationError(e.Field(), "cannot be blank")
	case "max":
		return pkgerrors.NewValidationError(e.Field(), fmt.Sprintf("must be at most %s characters", e.Param()))
	default:
		return pkgerrors.NewValidationError(e.Field(), "is invalid")
	}
}

// ListUsers returns every stored user.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(du)
	}

	return &ListUsersResponse{Users: users}, nil
}

// CreateUser inserts a new user and returns the updated collection.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*ListUsersResponse, error) {
	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validateRequest(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	id, err := uc.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameTaken) {
			uc.log.Warn("user name already exists", zap.String("name", in.Name))
			return nil, pkgerrors.NewAlreadyExistsError("user", MsgUserNameTaken)
		}
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	uc.log.Info("user created", zap.Int64("id", id))
	return uc.ListUsers(ctx)
}

// UpdateUserEmail looks a user up by name and replaces its email.
// The name is the lookup key and is never changed.
func (uc *Usecase) UpdateUserEmail(ctx context.Context, in UpdateUserEmailRequest) (*ListUsersResponse, error) {
	uc.log.Info("updating user email", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validateRequest(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	u, err := uc.repo.GetByName(ctx, in.Name)
	if err != nil {
		uc.log.Error("failed to look up user by name", zap.String("name", in.Name), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}
	if u == nil {
		uc.log.Warn("user name not found", zap.String("name", in.Name))
		return nil, pkgerrors.NewNotFoundError("user", MsgUserNameNotFound)
	}

	if err := uc.repo.UpdateEmail(ctx, u.ID, in.Email); err != nil {
		// The row can vanish between lookup and update under a concurrent delete.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", MsgUserNameNotFound)
		}
		uc.log.Error("failed to update user email", zap.Int64("id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}

	return uc.ListUsers(ctx)
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewNotFoundError("user", MsgUserNotFound)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, pkgerrors.NewNotFoundError("user", MsgUserNotFound)
	}

	dto := toDTO(*u)
	return &dto, nil
}

// UpdateUser overwrites both name and email of the user with the given ID.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validateRequest(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	if in.ID <= 0 {
		return nil, pkgerrors.NewNotFoundError("user", MsgUserIDNotFound)
	}

	u := &domain.User{ID: in.ID, Name: in.Name, Email: in.Email}
	if err := uc.repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warn("user id not found", zap.Int64("id", in.ID))
			return nil, pkgerrors.NewNotFoundError("user", MsgUserIDNotFound)
		case errors.Is(err, domain.ErrNameTaken):
			uc.log.Warn("user name already exists", zap.String("name", in.Name), zap.Int64("id", in.ID))
			return nil, pkgerrors.NewAlreadyExistsError("user", MsgUserNameTaken)
		default:
			uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
			return nil, pkgerrors.NewInternalError("failed to update user", err)
		}
	}

	dto := toDTO(*u)
	return &dto, nil
}

// DeleteUser removes the user with the given ID and returns the remaining collection.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*ListUsersResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewNotFoundError("user", MsgUserIDNotFound)
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn("user id not found", zap.Int64("id", in.ID))
			return nil, pkgerrors.NewNotFoundError("user", MsgUserIDNotFound)
		}
		uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	return uc.ListUsers(ctx)
}

func toDTO(u domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
