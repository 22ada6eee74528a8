// Package token issues and validates bearer access tokens and keeps the
// process-local revocation set. There is no durable token store, so the
// revocation set starts empty after a restart.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
)

const (
	defaultAccessTokenTTL = 24 * time.Hour
	defaultSigningMethod  = "HS256"
)

type accessTokenClaims struct {
	jwt.RegisteredClaims
}

type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	AccessTTL time.Duration
}

type Manager struct {
	key string
	alg jwt.SigningMethod

	accessTTL time.Duration

	revoked *RevokedSet
}

func New(cfg Config) (*Manager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTokenTTL
	}

	return &Manager{
		key:       cfg.SecretKey,
		alg:       jwt.GetSigningMethod(cfg.Alg),
		accessTTL: cfg.AccessTTL,
		revoked:   NewRevokedSet(),
	}, nil
}

// Issue generates a signed access token bound to the user id with a freshly
// generated unique token id (jti).
func (m *Manager) Issue(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	accessToken := jwt.NewWithClaims(
		m.alg,
		accessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   user.ID,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		},
	)

	access, err := accessToken.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: access, ExpiresAt: expiresAt}, nil
}

// Parse validates the token and returns the session it carries.
// Returns apperrors.ErrTokenRevoked if the token id has been revoked and
// apperrors.ErrTokenInvalid on signature or expiry failures.
func (m *Manager) Parse(access string) (models.Session, error) {
	claims := &accessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil {
		return models.Session{}, apperrors.ErrTokenInvalid
	}

	session := models.Session{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if m.revoked.Contains(session.TokenID) {
		return models.Session{}, apperrors.ErrTokenRevoked
	}

	return session, nil
}

// Revoke rejects the token id on every subsequent use.
// Adding an already revoked id is a no-op.
func (m *Manager) Revoke(session models.Session) {
	m.revoked.Add(session.TokenID, session.ExpiresAt)
}
