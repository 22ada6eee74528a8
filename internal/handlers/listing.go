package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/blobstore"
	"github.com/secondhandhub/marketplace/internal/handlers/render"
	"github.com/secondhandhub/marketplace/internal/logger"
	"github.com/secondhandhub/marketplace/internal/models"
	"github.com/secondhandhub/marketplace/internal/repository"
	"github.com/secondhandhub/marketplace/internal/service/listing"
)

// Listings are uploaded as multipart forms with images under the 'file' key
const maxUploadSize = 32 << 20

type listingResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Condition   string          `json:"condition"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	DatePosted  time.Time       `json:"datePosted"`
	SellerID    string          `json:"sellerId"`
	SellerName  string          `json:"sellerName"`
}

type listingsResponse struct {
	Listings []listingResponse `json:"listings"`
}

func newListingsResponse(listings []models.Listing) listingsResponse {
	res := listingsResponse{Listings: make([]listingResponse, 0, len(listings))}
	for _, l := range listings {
		res.Listings = append(res.Listings, listingResponse{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Location:    l.Location,
			Condition:   l.Condition,
			Category:    l.Category,
			Images:      emptyIfNil(l.Images),
			DatePosted:  l.DatePosted,
			SellerID:    l.SellerID,
			SellerName:  l.SellerName,
		})
	}
	return res
}

func handleUpload(blobs blobstore.Store, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
		FileURL string `json:"file_url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			render.Error(w, "No file provided", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Error(w, "No file provided", http.StatusBadRequest)
			return
		}
		defer file.Close() // nolint:errcheck

		if header.Filename == "" {
			render.Error(w, "No selected file", http.StatusBadRequest)
			return
		}

		fileURL, err := blobs.Save(r.Context(), header.Filename, file)
		if err != nil {
			l.Error("Failed to store uploaded file", "error", err)
			render.Error(w, "Failed to upload file", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "File uploaded successfully", FileURL: fileURL})
	})
}

func handleCreateListing(listings listingService, blobs blobstore.Store, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			render.Error(w, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		price, err := decimal.NewFromString(r.FormValue("price"))
		if err != nil {
			render.Error(w, "Invalid price", http.StatusBadRequest)
			return
		}

		imageURLs, err := saveImages(r, blobs)
		if err != nil {
			l.Error("Failed to store listing images", "error", err)
			render.Error(w, "Failed to upload one or more images", http.StatusInternalServerError)
			return
		}

		_, err = listings.Create(r.Context(), listing.CreateParams{
			ID:          r.FormValue("id"),
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Price:       price,
			Location:    r.FormValue("location"),
			Condition:   r.FormValue("condition"),
			Category:    r.FormValue("category"),
			Images:      imageURLs,
			SellerID:    r.FormValue("sellerId"),
			SellerName:  r.FormValue("sellerName"),
		})
		if err != nil {
			l.Error("Failed to create listing", "error", err)
			render.Error(w, "Failed to create listing", http.StatusInternalServerError)
			return
		}

		render.Message(w, "Listing created successfully")
	})
}

func handleEditListing(listings listingService, blobs blobstore.Store, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			render.Error(w, "Failed to parse form data", http.StatusBadRequest)
			return
		}

		// Only fields present in the form are updated
		fields := make(map[string]any)
		for _, name := range []string{
			repository.FieldTitle,
			repository.FieldDescription,
			repository.FieldLocation,
			repository.FieldCondition,
			repository.FieldCategory,
			repository.FieldSellerID,
			repository.FieldSellerName,
		} {
			if values, ok := r.MultipartForm.Value[name]; ok && len(values) > 0 {
				fields[name] = values[0]
			}
		}

		if raw := r.FormValue("price"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				render.Error(w, "Invalid price", http.StatusBadRequest)
				return
			}
			fields[repository.FieldPrice] = price
		}

		imageURLs, err := saveImages(r, blobs)
		if err != nil {
			l.Error("Failed to store listing images", "error", err)
			render.Error(w, "Failed to upload one or more images", http.StatusInternalServerError)
			return
		}
		if len(imageURLs) > 0 {
			fields[repository.FieldImages] = imageURLs
		}

		_, err = listings.Update(r.Context(), id, fields)
		switch {
		case err == nil:
			render.Message(w, "Listing updated successfully")
		case errors.Is(err, apperrors.ErrListingNotFound):
			render.Error(w, "Failed to update listing", http.StatusNotFound)
		default:
			l.Error("Failed to update listing", "error", err)
			render.Error(w, "Failed to update listing", http.StatusInternalServerError)
		}
	})
}

func handleDeleteListing(listings listingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		err := listings.Delete(r.Context(), id)
		switch {
		case err == nil:
			render.Message(w, fmt.Sprintf("Listing with id %s deleted successfully", id))
		case errors.Is(err, apperrors.ErrListingNotFound):
			render.Error(w, fmt.Sprintf("Failed to delete listing with id %s", id), http.StatusNotFound)
		default:
			l.Error("Failed to delete listing", "error", err)
			render.Error(w, fmt.Sprintf("Failed to delete listing with id %s", id), http.StatusInternalServerError)
		}
	})
}

func handleListAllListings(listings listingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all, err := listings.ListAll(r.Context())
		if err != nil {
			l.Error("Failed to list listings", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newListingsResponse(all))
	})
}

func handleListBySeller(listings listingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		found, err := listings.ListBySeller(r.Context(), r.PathValue("sellerID"))
		if err != nil {
			l.Error("Failed to list listings by seller", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
			return
		}

		if len(found) == 0 {
			render.MessageWithStatus(w, "No listings found for this seller", http.StatusNotFound)
			return
		}

		render.JSON(w, newListingsResponse(found))
	})
}

func handleListByCategory(listings listingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		found, err := listings.ListByCategory(r.Context(), r.PathValue("category"))
		if err != nil {
			l.Error("Failed to list listings by category", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
			return
		}

		if len(found) == 0 {
			render.MessageWithStatus(w, "No listings found for this category", http.StatusNotFound)
			return
		}

		render.JSON(w, newListingsResponse(found))
	})
}

// saveImages stores every uploaded 'file' part and returns their public URLs
func saveImages(r *http.Request, blobs blobstore.Store) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var urls []string
	for _, header := range r.MultipartForm.File["file"] {
		url, err := saveImage(r, blobs, header)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func saveImage(r *http.Request, blobs blobstore.Store, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close() // nolint:errcheck

	return blobs.Save(r.Context(), header.Filename, file)
}
