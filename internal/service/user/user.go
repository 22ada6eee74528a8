// Package user implements profile reads and the profile edit rules:
// restricted fields are rejected outright, the rest is type checked before
// it is forwarded to the user directory.
package user

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
)

// Fields that may only change through their dedicated flows
var restrictedFields = map[string]struct{}{
	repository.FieldEmail:    {},
	repository.FieldPassword: {},
}

type Service struct {
	users repository.UserRepo
}

func NewService(users repository.UserRepo) *Service {
	return &Service{users: users}
}

func (s *Service) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// AddToWishlist appends the listing id to the user's wishlist.
// Adding an id that is already present leaves the wishlist unchanged.
func (s *Service) AddToWishlist(ctx context.Context, userID string, listingID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if slices.Contains(user.Wishlist, listingID) {
		return nil
	}

	wishlist := append(slices.Clone(user.Wishlist), listingID)
	_, err = s.users.UpdateUser(ctx, user.ID, map[string]any{repository.FieldWishlist: wishlist})
	if err != nil {
		return fmt.Errorf("error while updating wishlist. Err: %w", err)
	}

	return nil
}

func (s *Service) InWishlist(ctx context.Context, userID string, listingID string) (bool, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}

	return slices.Contains(user.Wishlist, listingID), nil
}

// EditProfile validates the requested field changes and forwards them to the
// user directory. The whole request is rejected if any restricted field is
// present, the offending names reported together in alphabetical order.
func (s *Service) EditProfile(ctx context.Context, userID string, fields map[string]any) (models.User, error) {
	var restricted []string
	for name := range fields {
		if _, ok := restrictedFields[name]; ok {
			restricted = append(restricted, name)
		}
	}
	if len(restricted) > 0 {
		sort.Strings(restricted)
		return models.User{}, &apperrors.RestrictedFieldsError{Fields: restricted}
	}

	update, invalid := coerceFields(fields)
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return models.User{}, &apperrors.FieldTypeError{Fields: invalid}
	}

	return s.users.UpdateUser(ctx, userID, update)
}

// coerceFields checks every editable field against its expected shape and
// converts decoded JSON values to the repository's types. Unknown fields are
// reported as invalid rather than silently dropped.
func coerceFields(fields map[string]any) (update map[string]any, invalid []string) {
	update = make(map[string]any, len(fields))

	for name, value := range fields {
		switch name {
		case repository.FieldUsername, repository.FieldLocation:
			s, ok := value.(string)
			if !ok {
				invalid = append(invalid, name)
				continue
			}
			update[name] = s
		case repository.FieldWishlist, repository.FieldCategories:
			list, ok := toStringSlice(value)
			if !ok {
				invalid = append(invalid, name)
				continue
			}
			update[name] = list
		default:
			invalid = append(invalid, name)
		}
	}

	return update, invalid
}

func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			list = append(list, s)
		}
		return list, true
	default:
		return nil, false
	}
}
