// Package registration drives the signup state machine:
// unregistered -> pending -> verified, with pending -> pending on resend.
package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/linktoken"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
	"github.com/secondhandhub/marketplace/internal/service/auth"
)

// VerificationSender delivers the verification link for a pending signup.
// The token is already minted; the sender only embeds it into the message.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, to string, username string, token string) error
}

type Config struct {
	// Hasher used for the signup password
	// Default bcrypt hasher is used if not set
	Hasher auth.PasswordHasher
}

type Service struct {
	hasher  auth.PasswordHasher
	codec   *linktoken.Codec
	pending *PendingStore
	users   repository.UserRepo
	sender  VerificationSender
}

func NewService(cfg Config, codec *linktoken.Codec, pending *PendingStore, users repository.UserRepo, sender VerificationSender) (*Service, error) {
	if codec == nil || pending == nil || users == nil || sender == nil {
		return nil, errors.New("codec, pending store, user repo and sender must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &Service{
		hasher:  hasher,
		codec:   codec,
		pending: pending,
		users:   users,
		sender:  sender,
	}, nil
}

type PreRegisterParams struct {
	Username   string
	Email      string
	Password   string
	Wishlist   []string
	Categories []string
	Location   string
}

// PreRegister stores an unverified signup and sends the verification link.
// Duplicate checks run against durable accounts only: a second pre-register
// for the same email just overwrites the pending record, same as a resend.
func (s *Service) PreRegister(ctx context.Context, p PreRegisterParams) error {
	usernameTaken, err := s.userExists(ctx, func() (models.User, error) {
		return s.users.GetUserByUsername(ctx, p.Username)
	})
	if err != nil {
		return err
	}

	emailTaken, err := s.userExists(ctx, func() (models.User, error) {
		return s.users.GetUserByEmail(ctx, p.Email)
	})
	if err != nil {
		return err
	}

	switch {
	case usernameTaken && emailTaken:
		return apperrors.ErrUsernameAndEmailTaken
	case usernameTaken:
		return apperrors.ErrUsernameTaken
	case emailTaken:
		return apperrors.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	s.pending.Put(models.PendingRegistration{
		Username:       p.Username,
		Email:          p.Email,
		HashedPassword: hash,
		Wishlist:       p.Wishlist,
		Categories:     p.Categories,
		Location:       p.Location,
	})

	return s.sendVerification(ctx, p.Email, p.Username)
}

// Resend mints a fresh verification token for an existing pending signup.
// The stored record stays untouched.
func (s *Service) Resend(ctx context.Context, email string) error {
	record, ok := s.pending.Get(email)
	if !ok {
		return apperrors.ErrNoPendingRegistration
	}

	return s.sendVerification(ctx, email, record.Username)
}

// Verify consumes a verification token and promotes the pending signup into
// a durable account. The account is persisted before the pending record is
// removed, so a crash in between can leave a stale pending entry but never
// lose a verified account. Verifying twice fails on the pending lookup: the
// token may still be cryptographically valid, the state is gone.
func (s *Service) Verify(ctx context.Context, rawToken string) (models.User, error) {
	email, err := s.codec.Parse(rawToken, linktoken.PurposeVerify)
	if err != nil {
		return models.User{}, err
	}

	record, ok := s.pending.Get(email)
	if !ok {
		return models.User{}, apperrors.ErrRegistrationNotFound
	}

	user, err := s.users.CreateUser(ctx, models.User{
		ID:             record.Username,
		Username:       record.Username,
		Email:          record.Email,
		HashedPassword: record.HashedPassword,
		Wishlist:       record.Wishlist,
		Categories:     record.Categories,
		Location:       record.Location,
		EmailVerified:  true,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("can't create user account. Err: %w", err)
	}

	s.pending.Remove(email)

	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, email string, username string) error {
	token, err := s.codec.Issue(email, linktoken.PurposeVerify)
	if err != nil {
		return fmt.Errorf("error while issuing verification token. Err: %w", err)
	}

	err = s.sender.SendVerificationEmail(ctx, email, username, token)
	if err != nil {
		return fmt.Errorf("error while sending verification email. Err: %w", err)
	}

	return nil
}

func (s *Service) userExists(ctx context.Context, get func() (models.User, error)) (bool, error) {
	_, err := get()

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("error while checking existing users. Err: %w", err)
	}
}
