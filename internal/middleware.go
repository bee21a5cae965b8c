package internal

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

// SessionStore is what the middleware reads to authenticate a request.
type SessionStore interface {
	auth.RefreshStore
	DoesRefreshTokenExist(ctx context.Context, token string) (string, error)
	GetUserById(ctx context.Context, userID pgtype.UUID) (database.User, error)
}

// Middleware validates the client's JWT and loads the current user into the
// request context.
func Middleware(db SessionStore, tokens auth.TokenConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// A refresh token that is present but revoked or expired ends the
			// session regardless of the access token.
			refreshTokCookie, err := r.Cookie(auth.RefreshCookie)
			if err == nil {
				if _, err = db.DoesRefreshTokenExist(ctx, refreshTokCookie.Value); err != nil {
					unauthenticated(w, r)
					return
				}
			}

			userID, err := resolveUser(w, r, db, tokens)
			if err != nil {
				log.Printf("middleware: %v", err)
				unauthenticated(w, r)
				return
			}

			user, err := db.GetUserById(ctx, pgtype.UUID{Bytes: userID, Valid: true})
			if err != nil {
				log.Printf("middleware: failed to load user: %v", err)
				unauthenticated(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCurrentUser(ctx, user.ToModel())))
		})
	}
}

// resolveUser validates the JWT if it exists. If it does not exist or is not
// valid, the refresh token is used to issue a new JWT.
func resolveUser(w http.ResponseWriter, r *http.Request, db SessionStore, tokens auth.TokenConfig) (uuid.UUID, error) {
	if jwtCookie, err := r.Cookie(auth.AccessCookie); err == nil {
		if id, err := auth.ValidateJWT(jwtCookie.Value, tokens.Secret); err == nil {
			return id, nil
		}
	}
	return auth.RefreshSession(w, r, db, tokens)
}

// RequireRole rejects requests whose user does not hold one of roles. It
// must run after Middleware.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.CurrentUser(r.Context())
			if !ok {
				unauthenticated(w, r)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "You do not have access to this resource.")
		})
	}
}

// API requests get a 401, page requests are sent to the login page.
func unauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" ||
		strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	http.Redirect(w, r, "/account/login", http.StatusSeeOther)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}
