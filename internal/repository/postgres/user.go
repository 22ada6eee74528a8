package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

// Map of repository field names to table columns for UpdateUser
var userColumns = map[string]string{
	repository.FieldUsername:      "username",
	repository.FieldEmail:         "email",
	repository.FieldPassword:      "password_hash",
	repository.FieldWishlist:      "wishlist",
	repository.FieldCategories:    "categories",
	repository.FieldLocation:      "location",
	repository.FieldEmailVerified: "email_verified",
}

const userFields = "id, created_at, username, email, password_hash, wishlist, categories, location, email_verified"

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash, wishlist, categories, location, email_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userFields

func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Wishlist,
		user.Categories,
		user.Location,
		user.EmailVerified,
	)
	created, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		if uniqueErr := mapUniqueViolation(err); uniqueErr != nil {
			return created, uniqueErr
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userFields + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT ` + userFields + ` FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userFields + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

func (r *UserRepo) UpdateUser(ctx context.Context, id string, fields map[string]any) (models.User, error) {
	if len(fields) == 0 {
		return r.GetUserByID(ctx, id)
	}

	// Sorted field names keep the generated SQL stable
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	set := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		column, ok := userColumns[name]
		if !ok {
			return models.User{}, fmt.Errorf("unknown user field: %s", name)
		}
		args = append(args, fields[name])
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), userFields,
	)

	rows, _ := r.DB.Query(ctx, query, args...)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		if uniqueErr := mapUniqueViolation(err); uniqueErr != nil {
			return user, uniqueErr
		}
		return user, fmt.Errorf("db error: %w", err)
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return apperrors.ErrEmailTaken
	default:
		return apperrors.ErrUsernameTaken
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.CreatedAt,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.Wishlist,
		&u.Categories,
		&u.Location,
		&u.EmailVerified,
	)
	return u, err
}
