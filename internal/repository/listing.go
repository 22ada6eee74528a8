package repository

import (
	"context"

	"github.com/secondhandhub/marketplace/internal/models"
)

// Columns that may be passed to UpdateListing. FieldLocation is shared with
// the user directory, both tables name that column the same way.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCondition   = "condition"
	FieldCategory    = "category"
	FieldImages      = "images"
	FieldSellerID    = "sellerId"
	FieldSellerName  = "sellerName"
)

// Listings table interface
type ListingRepo interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)

	// If listing not found must return apperrors.ErrListingNotFound
	GetListing(ctx context.Context, id string) (models.Listing, error)
	DeleteListing(ctx context.Context, id string) error

	ListAll(ctx context.Context) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
	ListByCategory(ctx context.Context, category string) ([]models.Listing, error)

	// Update the given fields of the listing.
	// Unknown field names must be rejected with an error.
	UpdateListing(ctx context.Context, id string, fields map[string]any) (models.Listing, error)
}
