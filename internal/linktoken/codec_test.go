package linktoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondhandhub/marketplace/internal/apperrors"
)

func Test_Codec(t *testing.T) {
	t.Parallel()

	newCodec := func(t *testing.T, cfg Config) *Codec {
		if cfg.SecretKey == "" {
			cfg.SecretKey = "test-secret-key"
		}
		c, err := New(cfg)
		require.NoError(t, err, "codec should be created without errors")
		return c
	}

	t.Run("new defaults", func(t *testing.T) {
		c := newCodec(t, Config{})

		require.Equal(t, "test-secret-key", c.key)
		require.Equal(t, defaultSigningMethod, c.alg.Alg())
		require.Equal(t, defaultVerifyMaxAge, c.verifyMaxAge)
		require.Equal(t, defaultResetMaxAge, c.resetMaxAge)
	})

	t.Run("new requires secret", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		c := newCodec(t, Config{})

		for _, purpose := range []Purpose{PurposeVerify, PurposeReset} {
			raw, err := c.Issue("user@example.com", purpose)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			subject, err := c.Parse(raw, purpose)
			require.NoError(t, err)
			assert.Equal(t, "user@example.com", subject)
		}
	})

	t.Run("purpose must match", func(t *testing.T) {
		c := newCodec(t, Config{})

		verify, err := c.Issue("user@example.com", PurposeVerify)
		require.NoError(t, err)
		reset, err := c.Issue("user@example.com", PurposeReset)
		require.NoError(t, err)

		_, err = c.Parse(verify, PurposeReset)
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid, "verify token must not work as reset token")

		_, err = c.Parse(reset, PurposeVerify)
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid, "reset token must not work as verify token")
	})

	t.Run("wrong secret", func(t *testing.T) {
		c := newCodec(t, Config{})
		other := newCodec(t, Config{SecretKey: "other-secret-key"})

		raw, err := other.Issue("user@example.com", PurposeVerify)
		require.NoError(t, err)

		_, err = c.Parse(raw, PurposeVerify)
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid)
	})

	t.Run("not a token", func(t *testing.T) {
		c := newCodec(t, Config{})

		_, err := c.Parse("not a token at all", PurposeVerify)
		require.ErrorIs(t, err, apperrors.ErrLinkInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		c := newCodec(t, Config{
			VerifyMaxAge: -time.Minute,
			ResetMaxAge:  -time.Minute,
		})

		verify, err := c.Issue("user@example.com", PurposeVerify)
		require.NoError(t, err)
		_, err = c.Parse(verify, PurposeVerify)
		require.ErrorIs(t, err, apperrors.ErrLinkExpired, "expired must be reported distinctly from invalid")

		reset, err := c.Issue("user@example.com", PurposeReset)
		require.NoError(t, err)
		_, err = c.Parse(reset, PurposeReset)
		require.ErrorIs(t, err, apperrors.ErrLinkExpired)
	})
}
