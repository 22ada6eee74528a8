// Package listing is thin pass-through glue over the listings table
package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
)

type Service struct {
	listings repository.ListingRepo
}

func NewService(listings repository.ListingRepo) *Service {
	return &Service{listings: listings}
}

type CreateParams struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Condition   string
	Category    string
	Images      []string
	SellerID    string
	SellerName  string
}

func (s *Service) Create(ctx context.Context, p CreateParams) (models.Listing, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	return s.listings.CreateListing(ctx, models.Listing{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Location:    p.Location,
		Condition:   p.Condition,
		Category:    p.Category,
		Images:      p.Images,
		DatePosted:  time.Now(),
		SellerID:    p.SellerID,
		SellerName:  p.SellerName,
	})
}

func (s *Service) Get(ctx context.Context, id string) (models.Listing, error) {
	return s.listings.GetListing(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.listings.DeleteListing(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Listing, error) {
	return s.listings.ListAll(ctx)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	return s.listings.ListBySeller(ctx, sellerID)
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]models.Listing, error) {
	return s.listings.ListByCategory(ctx, category)
}

// Update forwards only the fields that were provided; nil values are skipped
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (models.Listing, error) {
	update := make(map[string]any, len(fields))
	for name, value := range fields {
		if value == nil {
			continue
		}
		update[name] = value
	}

	return s.listings.UpdateListing(ctx, id, update)
}
