// Package linktoken signs and verifies the opaque strings embedded in
// verification and password-reset links. Tokens are stateless: validity is a
// signature plus expiry check, never a server-side lookup. The purpose is a
// signed claim, so a verify-email token cannot be replayed against the
// reset-password flow.
package linktoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/secondhandhub/marketplace/internal/apperrors"
)

// Purpose a link token is bound to
type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

const (
	defaultSigningMethod = "HS256"
	defaultVerifyMaxAge  = 1 * time.Hour
	defaultResetMaxAge   = 30 * time.Minute
)

type linkClaims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

type Config struct {
	// Secret key to sign link payloads
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Per purpose link lifetimes
	// If not set than default is used
	VerifyMaxAge time.Duration
	ResetMaxAge  time.Duration
}

type Codec struct {
	key string
	alg jwt.SigningMethod

	verifyMaxAge time.Duration
	resetMaxAge  time.Duration
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.VerifyMaxAge == 0 {
		cfg.VerifyMaxAge = defaultVerifyMaxAge
	}
	if cfg.ResetMaxAge == 0 {
		cfg.ResetMaxAge = defaultResetMaxAge
	}

	return &Codec{
		key:          cfg.SecretKey,
		alg:          jwt.GetSigningMethod(cfg.Alg),
		verifyMaxAge: cfg.VerifyMaxAge,
		resetMaxAge:  cfg.ResetMaxAge,
	}, nil
}

// Issue signs a token carrying the subject email and the given purpose
func (c *Codec) Issue(subject string, purpose Purpose) (string, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		c.alg,
		linkClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge(purpose))),
			},
			Purpose: purpose,
		},
	)

	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return "", fmt.Errorf("error while signing link token. Err: %w", err)
	}

	return signed, nil
}

// Parse validates the signature, expiry and purpose and returns the subject.
// Returns apperrors.ErrLinkExpired for a well signed but stale token and
// apperrors.ErrLinkInvalid for everything else, purpose mismatch included.
func (c *Codec) Parse(raw string, purpose Purpose) (string, error) {
	claims := &linkClaims{}

	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", apperrors.ErrLinkExpired
	default:
		return "", apperrors.ErrLinkInvalid
	}

	if claims.Purpose != purpose {
		return "", apperrors.ErrLinkInvalid
	}

	return claims.Subject, nil
}

func (c *Codec) maxAge(purpose Purpose) time.Duration {
	if purpose == PurposeReset {
		return c.resetMaxAge
	}
	return c.verifyMaxAge
}
