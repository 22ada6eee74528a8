package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/handlers/render"
	"github.com/secondhandhub/marketplace/internal/handlers/userctx"
	"github.com/secondhandhub/marketplace/internal/logger"
)

// emptyIfNil keeps list fields rendering as [] instead of null
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func handleUserID() http.Handler {
	type response struct {
		UserID string `json:"user_id"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{UserID: session.UserID})
	})
}

func handleCurrentUserInfo(users userService, l logger.Logger) http.Handler {
	type response struct {
		ID         string   `json:"id"`
		Username   string   `json:"username"`
		Email      string   `json:"email"`
		Wishlist   []string `json:"wishlist"`
		Categories []string `json:"categories"`
		Location   string   `json:"location"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())

		user, err := users.GetByID(r.Context(), session.UserID)
		switch {
		case err == nil:
			render.JSON(w, response{
				ID:         user.ID,
				Username:   user.Username,
				Email:      user.Email,
				Wishlist:   emptyIfNil(user.Wishlist),
				Categories: emptyIfNil(user.Categories),
				Location:   user.Location,
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to get current user info", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

// Public profile view. Wishlist, password hash and verification state
// stay private.
func handlePublicUserInfo(users userService, l logger.Logger) http.Handler {
	type response struct {
		ID         string   `json:"id"`
		Username   string   `json:"username"`
		Email      string   `json:"email"`
		Categories []string `json:"categories"`
		Location   string   `json:"location"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")
		if username == "" {
			render.Error(w, "Username parameter is required", http.StatusBadRequest)
			return
		}

		user, err := users.GetByUsername(r.Context(), username)
		switch {
		case err == nil:
			render.JSON(w, response{
				ID:         user.ID,
				Username:   user.Username,
				Email:      user.Email,
				Categories: emptyIfNil(user.Categories),
				Location:   user.Location,
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to get public user info", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleAddToWishlist(users userService, l logger.Logger) http.Handler {
	type request struct {
		ListingID string `json:"listingId"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())

		// Requests without a body are treated the same as a missing listing id
		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		if data.ListingID == "" {
			render.Error(w, "Listing ID is required", http.StatusBadRequest)
			return
		}

		err := users.AddToWishlist(r.Context(), session.UserID, data.ListingID)
		switch {
		case err == nil:
			render.Message(w, "Listing added to wishlist")
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to add listing to wishlist", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleCheckWishlist(users userService, l logger.Logger) http.Handler {
	type request struct {
		ListingID string `json:"listingId"`
	}
	type response struct {
		IsInWishlist bool `json:"is_in_wishlist"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())

		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		if data.ListingID == "" {
			render.Error(w, "Listing ID is required", http.StatusBadRequest)
			return
		}

		found, err := users.InWishlist(r.Context(), session.UserID, data.ListingID)
		switch {
		case err == nil:
			render.JSON(w, response{IsInWishlist: found})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to check wishlist", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleChangePassword(auth authService, l logger.Logger) http.Handler {
	type request struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())

		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		if data.OldPassword == "" || data.NewPassword == "" {
			render.Error(w, "Old password and new password are required", http.StatusBadRequest)
			return
		}

		err := auth.ChangePassword(r.Context(), session.UserID, data.OldPassword, data.NewPassword)
		switch {
		case err == nil:
			render.Message(w, "Password changed successfully")
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrIncorrectOldPassword):
			render.Error(w, "Incorrect old password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrPasswordUnchanged):
			render.Error(w, "New password must be different", http.StatusBadRequest)
		default:
			l.Error("Failed to change password", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleEditUser(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := userctx.FromContext(r.Context())

		var fields map[string]any
		err := json.NewDecoder(r.Body).Decode(&fields)
		if err != nil || len(fields) == 0 {
			render.Error(w, "No input data provided", http.StatusBadRequest)
			return
		}

		var restrictedErr *apperrors.RestrictedFieldsError
		var typeErr *apperrors.FieldTypeError

		_, err = users.EditProfile(r.Context(), session.UserID, fields)
		switch {
		case err == nil:
			render.Message(w, "Updated user successfully")
		case errors.As(err, &restrictedErr):
			msg := fmt.Sprintf("Modification of fields %s is not allowed.", strings.Join(restrictedErr.Fields, ", "))
			render.Error(w, msg, http.StatusBadRequest)
		case errors.As(err, &typeErr):
			msg := fmt.Sprintf("Invalid data types for fields: %s", strings.Join(typeErr.Fields, ", "))
			render.Error(w, msg, http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to update user", "error", err)
			render.Error(w, "Failed to update user", http.StatusInternalServerError)
		}
	})
}

func handleHealth() http.Handler {
	type response struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Status: "healthy"})
	})
}
