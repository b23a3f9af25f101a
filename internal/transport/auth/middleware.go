package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"collectra/internal/repository"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

type TokenRepo interface {
	FindByPlainToken(ctx context.Context, plainToken string) (*repository.AccessToken, error)
}

// Middleware authenticates requests by bearer token (header or `token` query
// parameter) and stores the owner's user id in the request context.
func Middleware(tokenRepo TokenRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow OPTIONS (CORS preflight) to pass through
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			var tok *repository.AccessToken

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				plainToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if plainToken != "" {
					t, err := tokenRepo.FindByPlainToken(r.Context(), plainToken)
					if err == nil {
						tok = t
					} else {
						log.Printf("[AUTH] token lookup (header) error: %v", err)
					}
				}
			}

			if tok == nil {
				if token := r.URL.Query().Get("token"); token != "" {
					t, err := tokenRepo.FindByPlainToken(r.Context(), token)
					if err == nil {
						tok = t
					} else {
						log.Printf("[AUTH] token lookup (query) error: %v", err)
					}
				}
			}

			if tok == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			// Stored as string to match the imported_by / created_by columns.
			uid := fmt.Sprintf("%d", tok.UserID)
			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (string, error) {
	v, ok := ctx.Value(UserIDKey).(string)
	if !ok || v == "" {
		return "", errors.New("userID not found in context")
	}
	return v, nil
}
