package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-record-service/internal/domain/user"
)

// UserRepo implements the usecase Repository interface on top of GORM.
// It works with any GORM dialect; the service ships with SQLite and PostgreSQL.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema is the row layout of the user_model table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:80;not null;uniqueIndex"`
	Email string `gorm:"size:80;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "user_model"
}

// AutoMigrate creates or updates the user_model table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toDomain(m UserSchema) user.User {
	return user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

func fromDomain(u *user.User) UserSchema {
	return UserSchema{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// Create inserts a new user and returns the id assigned by the database.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := fromDomain(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("user name already exists", zap.String("name", u.Name))
			return 0, user.ErrNameTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("name", u.Name))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a user by id. It returns nil, nil when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by id", zap.Int64("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := toDomain(model)
	return &u, nil
}

// GetByName retrieves a user by its unique name. It returns nil, nil when no row matches.
func (r *UserRepo) GetByName(ctx context.Context, name string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by name", zap.String("name", name))
			return nil, nil
		}
		r.log.Error("failed to get user by name from db", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}

	u := toDomain(model)
	return &u, nil
}

// UpdateEmail overwrites the email of the user with the given id.
func (r *UserRepo) UpdateEmail(ctx context.Context, id int64, email string) error {
	res := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", id).
		Update("email", email)
	if res.Error != nil {
		r.log.Error("failed to update user email in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to update user email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}

	r.log.Info("user email updated in db", zap.Int64("id", id))
	return nil
}

// Update overwrites name and email of the user identified by u.ID.
func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"name": u.Name, "email": u.Email})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			r.log.Warn("user name already exists", zap.String("name", u.Name), zap.Int64("id", u.ID))
			return user.ErrNameTaken
		}
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return nil
}

// Delete removes the user with the given id.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = toDomain(model)
	}

	return users, nil
}

// isUniqueViolation reports whether err comes from the unique index on name.
// Dialects that do not translate errors are matched on their message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
