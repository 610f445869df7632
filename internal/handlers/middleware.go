package handlers

import (
	"context"
	"net/http"
	"strings"

	"intake-crm/internal/models"
	"intake-crm/internal/services"
)

type contextKey string

const adminContextKey contextKey = "admin"

func AdminFromContext(ctx context.Context) *models.AdminUser {
	admin, _ := ctx.Value(adminContextKey).(*models.AdminUser)
	return admin
}

// RequireAuth checks the bearer token and injects the admin into the request
// context. OPTIONS passes through so CORS preflights are never challenged.
func RequireAuth(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				models.RespondWithJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Token ausente"))
				return
			}

			admin, err := auth.CurrentUser(token)
			if err != nil {
				models.RespondWithJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Sessão expirada ou inválida"))
				return
			}

			ctx := context.WithValue(r.Context(), adminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
