package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
)

func Test_Manager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:       "testuser",
		Username: "testuser",
		Email:    "test@example.com",
	}

	newManager := func(t *testing.T, cfg Config) *Manager {
		if cfg.SecretKey == "" {
			cfg.SecretKey = "test-secret-key"
		}
		m, err := New(cfg)
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m := newManager(t, Config{})

		require.Equal(t, "test-secret-key", m.key)
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL)
		require.Equal(t, defaultSigningMethod, m.alg.Alg())
	})

	t.Run("new requires secret", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("Issue", func(t *testing.T) {
		t.Run("claims", func(t *testing.T) {
			m := newManager(t, Config{AccessTTL: 15 * time.Minute})

			issued, err := m.Issue(testUser)
			require.NoError(t, err)
			require.NotEmpty(t, issued.Value)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, time.Second)

			parsed, err := jwt.ParseWithClaims(issued.Value, &accessTokenClaims{}, func(t *jwt.Token) (any, error) {
				return []byte("test-secret-key"), nil
			})
			require.NoError(t, err)
			require.True(t, parsed.Valid)

			claims, ok := parsed.Claims.(*accessTokenClaims)
			require.True(t, ok)
			assert.Equal(t, testUser.ID, claims.Subject, "token should be bound to the user id")
			assert.NotEmpty(t, claims.ID, "token has to has jti")
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
		})

		t.Run("unique token ids", func(t *testing.T) {
			m := newManager(t, Config{})

			first, err := m.Issue(testUser)
			require.NoError(t, err)
			second, err := m.Issue(testUser)
			require.NoError(t, err)

			s1, err := m.Parse(first.Value)
			require.NoError(t, err)
			s2, err := m.Parse(second.Value)
			require.NoError(t, err)

			assert.NotEqual(t, s1.TokenID, s2.TokenID, "every issued token should carry a fresh id")
		})
	})

	t.Run("Parse", func(t *testing.T) {
		t.Run("valid token", func(t *testing.T) {
			m := newManager(t, Config{})

			issued, err := m.Issue(testUser)
			require.NoError(t, err)

			session, err := m.Parse(issued.Value)
			require.NoError(t, err)
			require.Equal(t, testUser.ID, session.UserID)
			require.NotEmpty(t, session.TokenID)
			require.WithinDuration(t, issued.ExpiresAt, session.ExpiresAt, time.Second)
		})

		t.Run("not a token", func(t *testing.T) {
			m := newManager(t, Config{})

			_, err := m.Parse("invalid token")
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})

		t.Run("expired token", func(t *testing.T) {
			m := newManager(t, Config{AccessTTL: -time.Minute})

			issued, err := m.Issue(testUser)
			require.NoError(t, err)

			_, err = m.Parse(issued.Value)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})

		t.Run("wrong secret", func(t *testing.T) {
			m := newManager(t, Config{})
			other := newManager(t, Config{SecretKey: "other-secret"})

			issued, err := other.Issue(testUser)
			require.NoError(t, err)

			_, err = m.Parse(issued.Value)
			require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})
	})

	t.Run("Revoke", func(t *testing.T) {
		t.Run("revoked token rejected", func(t *testing.T) {
			m := newManager(t, Config{})

			issued, err := m.Issue(testUser)
			require.NoError(t, err)

			session, err := m.Parse(issued.Value)
			require.NoError(t, err)

			m.Revoke(session)

			_, err = m.Parse(issued.Value)
			require.ErrorIs(t, err, apperrors.ErrTokenRevoked, "revoked token must be rejected even though the signature is valid")
		})

		t.Run("revoke is idempotent", func(t *testing.T) {
			m := newManager(t, Config{})

			issued, err := m.Issue(testUser)
			require.NoError(t, err)
			session, err := m.Parse(issued.Value)
			require.NoError(t, err)

			m.Revoke(session)
			m.Revoke(session)

			require.Equal(t, 1, m.revoked.Len())
		})

		t.Run("other tokens unaffected", func(t *testing.T) {
			m := newManager(t, Config{})

			first, err := m.Issue(testUser)
			require.NoError(t, err)
			second, err := m.Issue(testUser)
			require.NoError(t, err)

			session, err := m.Parse(first.Value)
			require.NoError(t, err)
			m.Revoke(session)

			_, err = m.Parse(second.Value)
			require.NoError(t, err, "revoking one token should not touch others")
		})
	})
}

func Test_RevokedSet(t *testing.T) {
	t.Parallel()

	t.Run("add and contains", func(t *testing.T) {
		s := NewRevokedSet()

		require.False(t, s.Contains("jti-1"))
		s.Add("jti-1", time.Now().Add(time.Hour))
		require.True(t, s.Contains("jti-1"))
		require.False(t, s.Contains("jti-2"))
	})

	t.Run("concurrent access", func(t *testing.T) {
		s := NewRevokedSet()
		done := make(chan struct{})

		for i := 0; i < 8; i++ {
			go func(n int) {
				defer func() { done <- struct{}{} }()
				for j := 0; j < 100; j++ {
					id := string(rune('a'+n)) + "-token"
					s.Add(id, time.Now())
					_ = s.Contains(id)
				}
			}(i)
		}

		for i := 0; i < 8; i++ {
			<-done
		}
		require.Equal(t, 8, s.Len())
	})
}
