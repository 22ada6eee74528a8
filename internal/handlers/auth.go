package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/handlers/render"
	"github.com/secondhandhub/marketplace/internal/handlers/userctx"
	"github.com/secondhandhub/marketplace/internal/logger"
	"github.com/secondhandhub/marketplace/internal/service/registration"
)

func handlePreRegister(reg registrationService, l logger.Logger) http.Handler {
	type request struct {
		Username   string   `json:"username" validate:"required,min=2,max=50"`
		Email      string   `json:"email" validate:"required,email"`
		Password   string   `json:"password" validate:"required,min=8"`
		Wishlist   []string `json:"wishlist"`
		Categories []string `json:"categories"`
		Location   string   `json:"location"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = reg.PreRegister(r.Context(), registration.PreRegisterParams{
			Username:   data.Username,
			Email:      data.Email,
			Password:   data.Password,
			Wishlist:   data.Wishlist,
			Categories: data.Categories,
			Location:   data.Location,
		})
		switch {
		case err == nil:
			render.Message(w, "Verification email sent")
		case errors.Is(err, apperrors.ErrUsernameAndEmailTaken):
			render.Error(w, "User with this username and email already exists", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUsernameTaken):
			render.Error(w, "User with this username already exists", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrEmailTaken):
			render.Error(w, "User with this email already exists", http.StatusBadRequest)
		default:
			l.Error("Failed to pre-register user", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleResendVerification(reg registrationService, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		err := reg.Resend(r.Context(), data.Email)
		switch {
		case err == nil:
			render.Message(w, "Verification email resent")
		case errors.Is(err, apperrors.ErrNoPendingRegistration):
			render.Error(w, "No pending registration for this email", http.StatusBadRequest)
		default:
			l.Error("Failed to resend verification email", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleVerifyEmail(reg registrationService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := reg.Verify(r.Context(), r.PathValue("token"))
		switch {
		case err == nil:
			render.MessageWithStatus(w, "Email verified and account created successfully", http.StatusCreated)
		case errors.Is(err, apperrors.ErrLinkInvalid), errors.Is(err, apperrors.ErrLinkExpired):
			render.Error(w, "Verification link is invalid or has expired", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrRegistrationNotFound):
			render.Error(w, "Registration request not found or has expired", http.StatusBadRequest)
		default:
			l.Error("Failed to verify email", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type response struct {
		Message     string `json:"message"`
		AccessToken string `json:"access_token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		issued, err := auth.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "Login successful", AccessToken: issued.Value})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrEmailNotVerified):
			render.Error(w, "Email not verified", http.StatusForbidden)
		default:
			l.Error("Failed to login user", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}

func handleLogout(auth authService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
			return
		}

		auth.Logout(session)
		render.Message(w, "Successfully logged out")
	})
}

func handleForgotPassword(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		if data.Email == "" {
			render.Error(w, "Email is required", http.StatusBadRequest)
			return
		}

		err := auth.ForgotPassword(r.Context(), data.Email)
		if err != nil {
			l.Error("Failed to process forgot password request", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
			return
		}

		render.Message(w, "If the email exists, a reset link has been sent.")
	})
}

func handleResetPassword(auth authService, l logger.Logger) http.Handler {
	type request struct {
		NewPassword string `json:"new_password"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data request
		_ = json.NewDecoder(r.Body).Decode(&data)

		if data.NewPassword == "" {
			render.Error(w, "New password is required", http.StatusBadRequest)
			return
		}

		err := auth.ResetPassword(r.Context(), r.PathValue("token"), data.NewPassword)
		switch {
		case err == nil:
			render.Message(w, "Password has been reset successfully")
		case errors.Is(err, apperrors.ErrLinkInvalid):
			render.Error(w, "Invalid reset link", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrLinkExpired):
			render.Error(w, "Reset link has expired", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, "Invalid token or user does not exist", http.StatusBadRequest)
		default:
			l.Error("Failed to reset password", "error", err)
			render.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		}
	})
}
