package handlers

import (
	"context"
	"net/http"

	"github.com/secondhandhub/marketplace/internal/blobstore"
	"github.com/secondhandhub/marketplace/internal/handlers/middleware"
	"github.com/secondhandhub/marketplace/internal/logger"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/service/listing"
	"github.com/secondhandhub/marketplace/internal/service/registration"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewUserRouter(
	regService registrationService,
	authService authService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiusers := http.NewServeMux()

	apiusers.Handle("POST /pre_register", handlePreRegister(regService, logger))
	apiusers.Handle("POST /resend_verification", handleResendVerification(regService, logger))
	apiusers.Handle("GET /verify_email/{token}", handleVerifyEmail(regService, logger))
	apiusers.Handle("POST /login", handleLogin(authService, logger))
	apiusers.Handle("POST /forgot_password", handleForgotPassword(authService, logger))
	apiusers.Handle("POST /reset_password/{token}", handleResetPassword(authService, logger))
	apiusers.Handle("GET /health", handleHealth())

	apiusers.Handle("POST /logout", withAuth(handleLogout(authService)))
	apiusers.Handle("GET /user_id", withAuth(handleUserID()))
	apiusers.Handle("GET /current_user_info", withAuth(handleCurrentUserInfo(userService, logger)))
	apiusers.Handle("GET /public_user_info", withAuth(handlePublicUserInfo(userService, logger)))
	apiusers.Handle("POST /wishlist", withAuth(handleAddToWishlist(userService, logger)))
	apiusers.Handle("POST /wishlist/check", withAuth(handleCheckWishlist(userService, logger)))
	apiusers.Handle("POST /change_password", withAuth(handleChangePassword(authService, logger)))
	apiusers.Handle("POST /edit_user", withAuth(handleEditUser(userService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/users/", http.StripPrefix("/api/users", apiusers))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

func NewListingsRouter(
	listingService listingService,
	blobs blobstore.Store,
	logger logger.Logger,
) http.Handler {
	apilistings := http.NewServeMux()

	apilistings.Handle("POST /upload", handleUpload(blobs, logger))
	apilistings.Handle("POST /create-listing", handleCreateListing(listingService, blobs, logger))
	apilistings.Handle("PUT /edit/{id}", handleEditListing(listingService, blobs, logger))
	apilistings.Handle("DELETE /delete/{id}", handleDeleteListing(listingService, logger))
	apilistings.Handle("GET /all", handleListAllListings(listingService, logger))
	apilistings.Handle("GET /user/{sellerID}", handleListBySeller(listingService, logger))
	apilistings.Handle("GET /category/{category}", handleListByCategory(listingService, logger))
	apilistings.Handle("GET /health", handleHealth())

	root := http.NewServeMux()
	root.Handle("/api/listings/", http.StripPrefix("/api/listings", apilistings))
	root.Handle("GET /health", handleHealth())

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type registrationService interface {
	// Store an unverified signup and send the verification link
	// Has to return apperrors.ErrUsernameTaken, apperrors.ErrEmailTaken or
	// apperrors.ErrUsernameAndEmailTaken on duplicates
	PreRegister(ctx context.Context, p registration.PreRegisterParams) error

	// Send a fresh verification link for a pending signup
	// Has to return apperrors.ErrNoPendingRegistration if there is none
	Resend(ctx context.Context, email string) error

	// Consume a verification token and create the account
	// If token invalid: has to return apperrors.ErrLinkInvalid or apperrors.ErrLinkExpired
	// If no pending signup: has to return apperrors.ErrRegistrationNotFound
	Verify(ctx context.Context, rawToken string) (models.User, error)
}

type authService interface {
	// Login with email and password
	// Has to return apperrors.ErrInvalidCredentials on bad credentials and
	// apperrors.ErrEmailNotVerified for unverified accounts
	Login(ctx context.Context, email string, password string) (models.IssuedToken, error)

	// Get request and return the session if it is authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.Session, error)

	// Revoke the session token
	Logout(session models.Session)

	ChangePassword(ctx context.Context, userID string, oldPassword string, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken string, newPassword string) error
}

type userService interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	AddToWishlist(ctx context.Context, userID string, listingID string) error
	InWishlist(ctx context.Context, userID string, listingID string) (bool, error)
	EditProfile(ctx context.Context, userID string, fields map[string]any) (models.User, error)
}

type listingService interface {
	Create(ctx context.Context, p listing.CreateParams) (models.Listing, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
	ListByCategory(ctx context.Context, category string) ([]models.Listing, error)
	Update(ctx context.Context, id string, fields map[string]any) (models.Listing, error)
}
