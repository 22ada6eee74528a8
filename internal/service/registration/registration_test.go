package registration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/linktoken"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/service/auth"
	"github.com/secondhandhub/marketplace/internal/testutil"
)

func newService(t *testing.T, users *testutil.UserRepoFake, sender *testutil.SenderFake) (*Service, *PendingStore) {
	t.Helper()

	codec, err := linktoken.New(linktoken.Config{SecretKey: "test-secret"})
	require.NoError(t, err)

	pending := NewPendingStore()
	s, err := NewService(Config{}, codec, pending, users, sender)
	require.NoError(t, err)

	return s, pending
}

func ninaParams() PreRegisterParams {
	return PreRegisterParams{
		Username: "nina",
		Email:    "nina@example.com",
		Password: "StrongEnoughPassword",
		Location: "Toronto",
	}
}

func Test_PreRegisterService(t *testing.T) {
	t.Parallel()

	t.Run("stores pending and sends exactly one email", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, pending := newService(t, users, sender)

		err := s.PreRegister(t.Context(), ninaParams())
		require.NoError(t, err)

		record, ok := pending.Get("nina@example.com")
		require.True(t, ok, "pending record should be stored")
		require.Equal(t, "nina", record.Username)
		require.False(t, record.CreatedAt.IsZero())

		require.Len(t, sender.Verifications, 1)
		require.Equal(t, "nina@example.com", sender.Verifications[0].To)

		// No durable account yet
		_, err = users.GetUserByUsername(t.Context(), "nina")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("plaintext password never stored", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, pending := newService(t, users, sender)

		err := s.PreRegister(t.Context(), ninaParams())
		require.NoError(t, err)

		record, _ := pending.Get("nina@example.com")
		require.NotEqual(t, "StrongEnoughPassword", record.HashedPassword)
		require.NoError(t, auth.DefaultHasher.Compare(record.HashedPassword, "StrongEnoughPassword"))
	})

	t.Run("second pre-register overwrites pending record", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, pending := newService(t, users, sender)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))

		p := ninaParams()
		p.Username = "nina-renamed"
		require.NoError(t, s.PreRegister(t.Context(), p))

		record, _ := pending.Get("nina@example.com")
		require.Equal(t, "nina-renamed", record.Username)
		require.Equal(t, 1, pending.Len())
		require.Len(t, sender.Verifications, 2)
	})

	t.Run("duplicates against durable accounts only", func(t *testing.T) {
		users := testutil.NewUserRepoFake(models.User{
			ID: "nina", Username: "nina", Email: "nina@example.com", EmailVerified: true,
		})
		sender := &testutil.SenderFake{}
		s, _ := newService(t, users, sender)

		tests := []struct {
			name     string
			username string
			email    string
			wantErr  error
		}{
			{"username taken", "nina", "fresh@example.com", apperrors.ErrUsernameTaken},
			{"email taken", "fresh", "nina@example.com", apperrors.ErrEmailTaken},
			{"both taken", "nina", "nina@example.com", apperrors.ErrUsernameAndEmailTaken},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := ninaParams()
				p.Username = tt.username
				p.Email = tt.email

				err := s.PreRegister(t.Context(), p)
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, sender.Verifications, "no email should be sent on duplicates")
			})
		}
	})
}

func Test_ResendService(t *testing.T) {
	t.Parallel()

	t.Run("mints a fresh token for the pending signup", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, _ := newService(t, users, sender)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))
		require.NoError(t, s.Resend(t.Context(), "nina@example.com"))

		require.Len(t, sender.Verifications, 2)
		require.Equal(t, "nina", sender.Verifications[1].Username)
	})

	t.Run("no pending registration", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, _ := newService(t, users, sender)

		err := s.Resend(t.Context(), "nobody@example.com")
		require.ErrorIs(t, err, apperrors.ErrNoPendingRegistration)
	})
}

func Test_VerifyService(t *testing.T) {
	t.Parallel()

	t.Run("creates verified account and removes pending record", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, pending := newService(t, users, sender)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))

		user, err := s.Verify(t.Context(), sender.LastVerification(t).Token)
		require.NoError(t, err)
		require.Equal(t, "nina", user.ID, "username doubles as the account id")
		require.Equal(t, "nina", user.Username)
		require.True(t, user.EmailVerified)
		require.Equal(t, "Toronto", user.Location)

		require.Equal(t, 0, pending.Len(), "pending record should be consumed")

		stored, err := users.GetUserByEmail(t.Context(), "nina@example.com")
		require.NoError(t, err)
		require.NoError(t, auth.DefaultHasher.Compare(stored.HashedPassword, "StrongEnoughPassword"))
	})

	t.Run("second verify fails on missing pending state", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, _ := newService(t, users, sender)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))
		verifyToken := sender.LastVerification(t).Token

		_, err := s.Verify(t.Context(), verifyToken)
		require.NoError(t, err)

		_, err = s.Verify(t.Context(), verifyToken)
		require.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
	})

	t.Run("garbage token", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		s, _ := newService(t, users, &testutil.SenderFake{})

		_, err := s.Verify(t.Context(), "not-a-token")
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid)
	})

	t.Run("reset token rejected for verification", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, _ := newService(t, users, sender)

		codec, err := linktoken.New(linktoken.Config{SecretKey: "test-secret"})
		require.NoError(t, err)
		resetToken, err := codec.Issue("nina@example.com", linktoken.PurposeReset)
		require.NoError(t, err)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))

		_, err = s.Verify(t.Context(), resetToken)
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid)
	})

	t.Run("pending record survives create failure", func(t *testing.T) {
		users := testutil.NewUserRepoFake()
		sender := &testutil.SenderFake{}
		s, pending := newService(t, users, sender)

		require.NoError(t, s.PreRegister(t.Context(), ninaParams()))

		users.CreateErr = errors.New("storage down")
		_, err := s.Verify(t.Context(), sender.LastVerification(t).Token)
		require.Error(t, err)
		require.Equal(t, 1, pending.Len(), "pending record should not be lost on storage failure")
	})
}
