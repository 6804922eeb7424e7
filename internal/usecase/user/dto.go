package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,max=80"`
}

// UpdateUserEmailRequest replaces the email of the user looked up by name.
type UpdateUserEmailRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,max=80"`
}

// UpdateUserRequest overwrites name and email of the user with the given ID.
type UpdateUserRequest struct {
	ID    int64  `json:"-"`
	Name  string `json:"name" validate:"required,max=80"`
	Email string `json:"email" validate:"required,max=80"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// ListUsersResponse carries the full user collection.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
