package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/database"
)

const (
	AccessCookie  = "jwt"
	RefreshCookie = "refresh_token"
)

// TokenConfig carries the signing secret and token lifetimes.
type TokenConfig struct {
	Secret        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

// RefreshStore is the part of the database the session helpers need.
type RefreshStore interface {
	CreateRefreshToken(ctx context.Context, arg database.CreateRefreshTokenParams) (database.RefreshToken, error)
	GetUserFromRefreshTok(ctx context.Context, token string) (pgtype.UUID, error)
}

func MakeRefreshToken(ctx context.Context, db RefreshStore, userID uuid.UUID, expiresIn time.Duration) (string, error) {
	rnd := make([]byte, 32)

	// rand.Read() never returns an error.
	_, _ = rand.Read(rnd)
	rndStr := hex.EncodeToString(rnd)

	now := time.Now().UTC()
	refreshToken, err := db.CreateRefreshToken(ctx, database.CreateRefreshTokenParams{
		Token:     rndStr,
		CreatedAt: pgtype.Timestamptz{Time: now, Valid: true},
		UserID:    pgtype.UUID{Bytes: userID, Valid: true},
		ExpiresAt: pgtype.Timestamptz{Time: now.Add(expiresIn), Valid: true},
	})
	if err != nil {
		return "", fmt.Errorf("internal/auth: database error: %w", err)
	}

	return refreshToken.Token, nil
}

// SetTokensAndCookies issues a refresh token and an access token for userID
// and writes both cookies.
func SetTokensAndCookies(w http.ResponseWriter, r *http.Request, db RefreshStore, cfg TokenConfig, userID uuid.UUID) error {
	refreshTok, err := MakeRefreshToken(r.Context(), db, userID, cfg.RefreshTTL)
	if err != nil {
		return err
	}

	jwtString, err := MakeJWT(userID, cfg.Secret, cfg.AccessTTL)
	if err != nil {
		return fmt.Errorf("internal/auth: failed to make JWT: %w", err)
	}

	http.SetCookie(w, cfg.cookie(RefreshCookie, refreshTok, cfg.RefreshTTL))
	http.SetCookie(w, cfg.cookie(AccessCookie, jwtString, cfg.AccessTTL))
	return nil
}

// RefreshSession issues a new access token from the refresh token cookie.
func RefreshSession(w http.ResponseWriter, r *http.Request, db RefreshStore, cfg TokenConfig) (uuid.UUID, error) {
	refreshTokCookie, err := r.Cookie(RefreshCookie)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: missing refresh token: %w", err)
	}

	userID, err := db.GetUserFromRefreshTok(r.Context(), refreshTokCookie.Value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: failed to retrieve user from refresh token: %w", err)
	}

	jwtString, err := MakeJWT(userID.Bytes, cfg.Secret, cfg.AccessTTL)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: failed to make JWT: %w", err)
	}

	http.SetCookie(w, cfg.cookie(AccessCookie, jwtString, cfg.AccessTTL))

	return userID.Bytes, nil
}

// ClearCookies expires both session cookies.
func ClearCookies(w http.ResponseWriter, cfg TokenConfig) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := cfg.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (cfg TokenConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   cfg.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
