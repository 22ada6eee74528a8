package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/secondhandhub/marketplace/internal/apperrors"
	"github.com/secondhandhub/marketplace/internal/handlers/render"
	"github.com/secondhandhub/marketplace/internal/handlers/userctx"
	"github.com/secondhandhub/marketplace/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.Session, error)
}

func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := as.Auth(r.Context(), r)
			if err != nil {
				switch {
				case errors.Is(err, apperrors.ErrMissingAuthHeader):
					render.AuthError(w, "Missing Authorization Header")
				case errors.Is(err, apperrors.ErrTokenRevoked):
					render.AuthError(w, "Token has been revoked")
				default:
					render.AuthError(w, "Invalid token")
				}
				return
			}

			ctx := userctx.New(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
