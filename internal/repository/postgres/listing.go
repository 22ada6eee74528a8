package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/models"
)

type ListingRepo struct {
	DB DBTX
}

var listingColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"price":       "price",
	"location":    "location",
	"condition":   "condition",
	"category":    "category",
	"images":      "images",
	"sellerId":    "seller_id",
	"sellerName":  "seller_name",
}

const listingFields = "id, title, description, price, location, condition, category, images, date_posted, seller_id, seller_name"

const createListing = `-- name: CreateListing
INSERT INTO listings (id, title, description, price, location, condition, category, images, date_posted, seller_id, seller_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + listingFields

func (r *ListingRepo) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	rows, _ := r.DB.Query(ctx, createListing,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Location,
		listing.Condition,
		listing.Category,
		listing.Images,
		listing.DatePosted,
		listing.SellerID,
		listing.SellerName,
	)
	created, err := pgx.CollectOneRow(rows, rowToListing)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getListing = `-- name: GetListing
SELECT ` + listingFields + ` FROM listings
WHERE id = $1
`

func (r *ListingRepo) GetListing(ctx context.Context, id string) (models.Listing, error) {
	rows, _ := r.DB.Query(ctx, getListing, id)
	listing, err := pgx.CollectOneRow(rows, rowToListing)

	switch {
	case err == nil:
		return listing, nil
	case errors.Is(err, pgx.ErrNoRows):
		return listing, apperrors.ErrListingNotFound
	default:
		return listing, fmt.Errorf("db error: %w", err)
	}
}

const deleteListing = `-- name: DeleteListing
DELETE FROM listings
WHERE id = $1
`

func (r *ListingRepo) DeleteListing(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, deleteListing, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrListingNotFound
	}

	return nil
}

const listAll = `-- name: ListAll
SELECT ` + listingFields + ` FROM listings
ORDER BY date_posted DESC
`

func (r *ListingRepo) ListAll(ctx context.Context) ([]models.Listing, error) {
	rows, _ := r.DB.Query(ctx, listAll)
	return collectListings(rows)
}

const listBySeller = `-- name: ListBySeller
SELECT ` + listingFields + ` FROM listings
WHERE seller_id = $1
ORDER BY date_posted DESC
`

func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	rows, _ := r.DB.Query(ctx, listBySeller, sellerID)
	return collectListings(rows)
}

const listByCategory = `-- name: ListByCategory
SELECT ` + listingFields + ` FROM listings
WHERE category = $1
ORDER BY date_posted DESC
`

func (r *ListingRepo) ListByCategory(ctx context.Context, category string) ([]models.Listing, error) {
	rows, _ := r.DB.Query(ctx, listByCategory, category)
	return collectListings(rows)
}

func (r *ListingRepo) UpdateListing(ctx context.Context, id string, fields map[string]any) (models.Listing, error) {
	if len(fields) == 0 {
		return r.GetListing(ctx, id)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	set := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		column, ok := listingColumns[name]
		if !ok {
			return models.Listing{}, fmt.Errorf("unknown listing field: %s", name)
		}
		args = append(args, fields[name])
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE listings SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), listingFields,
	)

	rows, _ := r.DB.Query(ctx, query, args...)
	listing, err := pgx.CollectOneRow(rows, rowToListing)

	switch {
	case err == nil:
		return listing, nil
	case errors.Is(err, pgx.ErrNoRows):
		return listing, apperrors.ErrListingNotFound
	default:
		return listing, fmt.Errorf("db error: %w", err)
	}
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	listings, err := pgx.CollectRows(rows, rowToListing)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return listings, nil
}

func rowToListing(row pgx.CollectableRow) (models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Price,
		&l.Location,
		&l.Condition,
		&l.Category,
		&l.Images,
		&l.DatePosted,
		&l.SellerID,
		&l.SellerName,
	)
	return l, err
}
