package repository

import (
	"context"

	"github.com/secondhandhub/marketplace/internal/models"
)

// Columns that may be passed to UpdateUser. The repository is deliberately
// permissive here: which fields a caller is allowed to touch is enforced one
// level up, in the services.
const (
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldPassword      = "password"
	FieldWishlist      = "wishlist"
	FieldCategories    = "categories"
	FieldLocation      = "location"
	FieldEmailVerified = "email_verified"
)

// User directory interface
type UserRepo interface {
	// Create user
	// If the username is taken must return apperrors.ErrUsernameTaken,
	// if the email is taken must return apperrors.ErrEmailTaken
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by id, username or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update the given fields of the user record.
	// Unknown field names must be rejected with an error, and a missing user
	// must return apperrors.ErrUserNotFound.
	UpdateUser(ctx context.Context, id string, fields map[string]any) (models.User, error)
}
