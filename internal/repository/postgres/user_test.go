package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
	"github.com/secondhandhub/marketplace/internal/testutil"
)

func ninaUser() models.User {
	return models.User{
		ID:             "nina",
		Username:       "nina",
		Email:          "nina@example.com",
		HashedPassword: "hashedpassword123",
		Wishlist:       []string{"listing-1"},
		Categories:     []string{"Books"},
		Location:       "Toronto",
		EmailVerified:  true,
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), ninaUser())

			require.NoError(t, err)
			assert.Equal(t, "nina", user.ID)
			assert.Equal(t, "nina", user.Username)
			assert.Equal(t, "nina@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.HashedPassword)
			assert.Equal(t, []string{"listing-1"}, user.Wishlist)
			assert.Equal(t, []string{"Books"}, user.Categories)
			assert.True(t, user.EmailVerified)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate username", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			dup := ninaUser()
			dup.ID = "nina-2"
			dup.Email = "fresh@example.com"
			_, err = r.CreateUser(t.Context(), dup)

			assert.ErrorIs(t, err, apperrors.ErrUsernameTaken, "should return well known error")
		})
	})

	t.Run("create user duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			_, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			dup := ninaUser()
			dup.ID = "nina-2"
			dup.Username = "nina-2"
			_, err = r.CreateUser(t.Context(), dup)

			assert.ErrorIs(t, err, apperrors.ErrEmailTaken, "should return well known error")
		})
	})

	t.Run("get user by id, username and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			for name, get := range map[string]func() (models.User, error){
				"by id":       func() (models.User, error) { return r.GetUserByID(t.Context(), created.ID) },
				"by username": func() (models.User, error) { return r.GetUserByUsername(t.Context(), created.Username) },
				"by email":    func() (models.User, error) { return r.GetUserByEmail(t.Context(), created.Email) },
			} {
				got, err := get()
				require.NoError(t, err, name)
				assert.Equal(t, created, got, name)
			}
		})
	})

	t.Run("get user not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), "ghost")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")

			_, err = r.GetUserByEmail(t.Context(), "ghost@example.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("update user fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			updated, err := r.UpdateUser(t.Context(), created.ID, map[string]any{
				repository.FieldLocation: "Vancouver",
				repository.FieldWishlist: []string{"listing-1", "listing-2"},
				repository.FieldPassword: "newhash",
			})

			require.NoError(t, err)
			assert.Equal(t, "Vancouver", updated.Location)
			assert.Equal(t, []string{"listing-1", "listing-2"}, updated.Wishlist)
			assert.Equal(t, "newhash", updated.HashedPassword)
			assert.Equal(t, created.Email, updated.Email, "untouched fields should keep their values")
		})
	})

	t.Run("update user not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.UpdateUser(t.Context(), "ghost", map[string]any{repository.FieldLocation: "Toronto"})

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("update user unknown field", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			_, err = r.UpdateUser(t.Context(), created.ID, map[string]any{"shoe_size": 43})

			assert.Error(t, err, "unknown field should be rejected")
		})
	})

	t.Run("update user no fields returns current record", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), ninaUser())
			require.NoError(t, err)

			got, err := r.UpdateUser(t.Context(), created.ID, nil)

			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	})
}
