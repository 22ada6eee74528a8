package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
)

// UserRepoFake is an in-memory repository.UserRepo used by service and
// handler tests, the same way the original suite mocked its user table.
type UserRepoFake struct {
	mu    sync.Mutex
	users map[string]models.User

	// Optional error knobs to simulate upstream failures
	CreateErr error
	UpdateErr error
	GetErr    error
}

func NewUserRepoFake(users ...models.User) *UserRepoFake {
	f := &UserRepoFake{users: make(map[string]models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *UserRepoFake) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if f.CreateErr != nil {
		return models.User{}, f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Username == user.Username {
			return models.User{}, apperrors.ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return models.User{}, apperrors.ErrEmailTaken
		}
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	f.users[user.ID] = user

	return user, nil
}

func (f *UserRepoFake) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.ID == id })
}

func (f *UserRepoFake) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.Username == username })
}

func (f *UserRepoFake) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.Email == email })
}

func (f *UserRepoFake) UpdateUser(ctx context.Context, id string, fields map[string]any) (models.User, error) {
	if f.UpdateErr != nil {
		return models.User{}, f.UpdateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}

	for name, value := range fields {
		switch name {
		case repository.FieldUsername:
			user.Username = value.(string)
		case repository.FieldEmail:
			user.Email = value.(string)
		case repository.FieldPassword:
			user.HashedPassword = value.(string)
		case repository.FieldWishlist:
			user.Wishlist = slices.Clone(value.([]string))
		case repository.FieldCategories:
			user.Categories = slices.Clone(value.([]string))
		case repository.FieldLocation:
			user.Location = value.(string)
		case repository.FieldEmailVerified:
			user.EmailVerified = value.(bool)
		default:
			return models.User{}, fmt.Errorf("unknown user field: %s", name)
		}
	}
	f.users[id] = user

	return user, nil
}

// Remove drops the user outright. Useful to test flows that hold a valid
// session for an account that no longer exists.
func (f *UserRepoFake) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.users, id)
}

func (f *UserRepoFake) find(match func(models.User) bool) (models.User, error) {
	if f.GetErr != nil {
		return models.User{}, f.GetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			return u, nil
		}
	}

	return models.User{}, apperrors.ErrUserNotFound
}

// ListingRepoFake is an in-memory repository.ListingRepo
type ListingRepoFake struct {
	mu       sync.Mutex
	listings map[string]models.Listing

	CreateErr error
	ListErr   error
}

func NewListingRepoFake(listings ...models.Listing) *ListingRepoFake {
	f := &ListingRepoFake{listings: make(map[string]models.Listing)}
	for _, l := range listings {
		f.listings[l.ID] = l
	}
	return f
}

func (f *ListingRepoFake) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	if f.CreateErr != nil {
		return models.Listing{}, f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[listing.ID] = listing
	return listing, nil
}

func (f *ListingRepoFake) GetListing(ctx context.Context, id string) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	listing, ok := f.listings[id]
	if !ok {
		return models.Listing{}, apperrors.ErrListingNotFound
	}
	return listing, nil
}

func (f *ListingRepoFake) DeleteListing(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.listings[id]; !ok {
		return apperrors.ErrListingNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *ListingRepoFake) ListAll(ctx context.Context) ([]models.Listing, error) {
	return f.list(func(models.Listing) bool { return true })
}

func (f *ListingRepoFake) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	return f.list(func(l models.Listing) bool { return l.SellerID == sellerID })
}

func (f *ListingRepoFake) ListByCategory(ctx context.Context, category string) ([]models.Listing, error) {
	return f.list(func(l models.Listing) bool { return l.Category == category })
}

func (f *ListingRepoFake) UpdateListing(ctx context.Context, id string, fields map[string]any) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	listing, ok := f.listings[id]
	if !ok {
		return models.Listing{}, apperrors.ErrListingNotFound
	}

	for name, value := range fields {
		switch name {
		case repository.FieldTitle:
			listing.Title = value.(string)
		case repository.FieldDescription:
			listing.Description = value.(string)
		case repository.FieldPrice:
			listing.Price = value.(decimal.Decimal)
		case repository.FieldLocation:
			listing.Location = value.(string)
		case repository.FieldCondition:
			listing.Condition = value.(string)
		case repository.FieldCategory:
			listing.Category = value.(string)
		case repository.FieldImages:
			listing.Images = slices.Clone(value.([]string))
		case repository.FieldSellerID:
			listing.SellerID = value.(string)
		case repository.FieldSellerName:
			listing.SellerName = value.(string)
		default:
			return models.Listing{}, fmt.Errorf("unknown listing field: %s", name)
		}
	}
	f.listings[id] = listing

	return listing, nil
}

func (f *ListingRepoFake) list(match func(models.Listing) bool) ([]models.Listing, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	found := make([]models.Listing, 0)
	for _, l := range f.listings {
		if match(l) {
			found = append(found, l)
		}
	}
	return found, nil
}

// SentEmail is one recorded send
type SentEmail struct {
	To       string
	Username string
	Token    string
}

// SenderFake records verification and reset sends instead of delivering them
type SenderFake struct {
	mu            sync.Mutex
	Verifications []SentEmail
	Resets        []SentEmail

	// If set every send fails with this error
	Err error
}

func (f *SenderFake) SendVerificationEmail(ctx context.Context, to string, username string, token string) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Verifications = append(f.Verifications, SentEmail{To: to, Username: username, Token: token})
	return nil
}

func (f *SenderFake) SendPasswordResetEmail(ctx context.Context, to string, username string, token string) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resets = append(f.Resets, SentEmail{To: to, Username: username, Token: token})
	return nil
}

// LastVerification returns the most recent recorded verification send
func (f *SenderFake) LastVerification(t interface{ Fatal(args ...any) }) SentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Verifications) == 0 {
		t.Fatal("no verification emails were sent")
	}
	return f.Verifications[len(f.Verifications)-1]
}
