package user

import "errors"

// Column limits of the user table.
const (
	MaxNameLength  = 80
	MaxEmailLength = 80
)

var (
	// ErrNotFound is returned by a repository when no row matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrNameTaken is returned when a write would violate the unique constraint on name.
	ErrNameTaken = errors.New("user name already exists")
)

// User represents a user entity in the system.
type User struct {
	ID    int64  // ID is assigned by the store on insert and never changes
	Name  string // Name is unique across all users
	Email string // Email is not unique
}
