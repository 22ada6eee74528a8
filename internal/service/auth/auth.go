// Package auth implements login, logout, session authorization and the
// password change/reset flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/linktoken"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
	"github.com/secondhandhub/marketplace/internal/token"
)

// ResetSender delivers the password reset link
type ResetSender interface {
	SendPasswordResetEmail(ctx context.Context, to string, username string, token string) error
}

type Config struct {
	// Hasher to use during login or password change
	// Default bcrypt hasher is used if not set
	Hasher PasswordHasher
}

type Service struct {
	hasher PasswordHasher
	tokens *token.Manager
	codec  *linktoken.Codec
	users  repository.UserRepo
	sender ResetSender
}

func NewService(cfg Config, tokens *token.Manager, codec *linktoken.Codec, users repository.UserRepo, sender ResetSender) (*Service, error) {
	if tokens == nil || codec == nil || users == nil || sender == nil {
		return nil, errors.New("token manager, codec, user repo and sender must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		hasher: hasher,
		tokens: tokens,
		codec:  codec,
		users:  users,
		sender: sender,
	}, nil
}

// Login checks the credentials and issues a fresh access token.
// Unknown email and wrong password fail with the same error so the response
// never reveals which one it was.
func (s *Service) Login(ctx context.Context, email string, password string) (models.IssuedToken, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.IssuedToken{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.IssuedToken{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.IssuedToken{}, apperrors.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return models.IssuedToken{}, apperrors.ErrEmailNotVerified
	}

	issued, err := s.tokens.Issue(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be issued. Err: %w", err)
	}

	return issued, nil
}

// Auth authorizes a request by its bearer token and returns the session.
// The caller existence is deliberately not checked here; handlers that need
// the account load it themselves and answer 404 on a missing user.
func (s *Service) Auth(ctx context.Context, r *http.Request) (models.Session, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return models.Session{}, apperrors.ErrMissingAuthHeader
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return models.Session{}, apperrors.ErrTokenInvalid
	}

	return s.tokens.Parse(raw)
}

// Logout revokes the presented token id. Every later use of the same token,
// logout itself included, is rejected by the authorization check.
func (s *Service) Logout(session models.Session) {
	s.tokens.Revoke(session)
}

// ChangePassword verifies the old password and stores the hash of the new one
func (s *Service) ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, oldPassword); err != nil {
		return apperrors.ErrIncorrectOldPassword
	}

	// Compared as plaintext, before hashing
	if oldPassword == newPassword {
		return apperrors.ErrPasswordUnchanged
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	_, err = s.users.UpdateUser(ctx, user.ID, map[string]any{repository.FieldPassword: hash})
	if err != nil {
		return fmt.Errorf("error while updating password. Err: %w", err)
	}

	return nil
}

// ForgotPassword sends a reset link when the account exists. It reports
// success either way, so responses cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("error while looking up user. Err: %w", err)
	}

	resetToken, err := s.codec.Issue(email, linktoken.PurposeReset)
	if err != nil {
		return fmt.Errorf("error while issuing reset token. Err: %w", err)
	}

	err = s.sender.SendPasswordResetEmail(ctx, email, user.Username, resetToken)
	if err != nil {
		return fmt.Errorf("error while sending reset email. Err: %w", err)
	}

	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// Existing sessions are not revoked on reset.
func (s *Service) ResetPassword(ctx context.Context, rawToken string, newPassword string) error {
	email, err := s.codec.Parse(rawToken, linktoken.PurposeReset)
	if err != nil {
		return err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	_, err = s.users.UpdateUser(ctx, user.ID, map[string]any{repository.FieldPassword: hash})
	if err != nil {
		return fmt.Errorf("error while updating password. Err: %w", err)
	}

	return nil
}
