package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/testutil"
)

func TestHashPassword(t *testing.T) {
	t.Run("unique hashes", func(t *testing.T) {
		pw := "password1234"
		hash, err := HashPassword(pw)
		if err != nil {
			t.Fatalf("password hash fail #1: %+v", err)
		}

		hash2, err := HashPassword(pw)
		if err != nil {
			t.Fatalf("password hash fail #2: %+v", err)
		}

		if hash == hash2 {
			t.Fatalf("hash and hash2 are the same hashes; should be different: %s, %s", hash, hash2)
		}
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := HashPassword("")
		if err != nil {
			t.Errorf("HashPassword() failed on empty string: %+v", err)
		}
	})
}

func TestCheckPasswordHash(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		checkPw   string
		hash      string
		wantErr   bool
		wantMatch bool
	}{
		{"correct pw", "mypassword1234", "mypassword1234", "", false, true},
		{"incorrect pw", "mypassword1234", "passwordDD1234", "", false, false},
		{"wrong hash", "mypassword1234", "passwordDD1234", "not-a-hash", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hash string
			var err error

			if tt.hash != "" {
				hash = tt.hash
			} else {
				hash, err = HashPassword(tt.password)
				if err != nil {
					t.Fatalf("%+v", err)
				}
			}

			isMatch, err := CheckPasswordHash(tt.checkPw, hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckPasswordHash() error = %+v", err)
			}
			if isMatch != tt.wantMatch {
				t.Errorf("CheckPasswordHash() = %v, want %v", isMatch, tt.wantMatch)
			}
		})
	}
}

func TestJWT(t *testing.T) {
	t.Run("Valid_JWT", func(t *testing.T) {
		userID := uuid.New()
		tokenString, err := MakeJWT(userID, "validtokensecret", 15*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}
		gotUserID, err := ValidateJWT(tokenString, "validtokensecret")
		if err != nil {
			t.Fatalf("ValidateJWT() error = %+v", err)
		}
		if gotUserID != userID {
			t.Errorf("want = %+v, got = %+v", userID, gotUserID)
		}
	})

	t.Run("Incorrect_secret", func(t *testing.T) {
		tokenString, err := MakeJWT(uuid.New(), "validtokensecret", 15*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}
		if _, err = ValidateJWT(tokenString, "fakesecret"); err == nil {
			t.Fatal("ValidateJWT() expected error for wrong secret")
		}
	})

	t.Run("Expired_token", func(t *testing.T) {
		tokenString, err := MakeJWT(uuid.New(), "validtokensecret", -1*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}
		if _, err = ValidateJWT(tokenString, "validtokensecret"); err == nil {
			t.Fatal("ValidateJWT() expected error for expired token")
		}
	})

	t.Run("Corrupt_token", func(t *testing.T) {
		if _, err := ValidateJWT("corrupttoken", "validtokensecret"); err == nil {
			t.Fatal("ValidateJWT() expected error for corrupt token")
		}
	})
}

func TestGetUserFromContext(t *testing.T) {
	t.Run("is_valid_UUID", func(t *testing.T) {
		wantUserID := uuid.New()
		gotUserID, err := GetUserFromContext(WithUser(context.Background(), wantUserID))
		if err != nil {
			t.Fatalf("GetUserFromContext(): expected userID but got error = %+v", err)
		}
		if gotUserID != wantUserID {
			t.Errorf("want %+v but got %+v", wantUserID, gotUserID)
		}
	})

	t.Run("invalid_UUID", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), UserIDKey, "not-UUID")
		if _, err := GetUserFromContext(ctx); err == nil {
			t.Fatal("GetUserFromContext(): expected error but got none")
		}
	})

	t.Run("nil_UUID", func(t *testing.T) {
		ctx := WithUser(context.Background(), uuid.Nil)
		if _, err := GetUserFromContext(ctx); err == nil {
			t.Fatal("GetUserFromContext(): expected error but got none")
		}
	})

	t.Run("no_context", func(t *testing.T) {
		if _, err := GetUserFromContext(context.Background()); err == nil {
			t.Fatal("GetUserFromContext(): expected error but got none")
		}
	})
}

type fakeRefreshStore struct {
	tokens map[string]database.CreateRefreshTokenParams
	err    error
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{tokens: make(map[string]database.CreateRefreshTokenParams)}
}

func (f *fakeRefreshStore) CreateRefreshToken(ctx context.Context, arg database.CreateRefreshTokenParams) (database.RefreshToken, error) {
	if f.err != nil {
		return database.RefreshToken{}, f.err
	}
	f.tokens[arg.Token] = arg
	return database.RefreshToken{Token: arg.Token, UserID: arg.UserID, CreatedAt: arg.CreatedAt, ExpiresAt: arg.ExpiresAt}, nil
}

func (f *fakeRefreshStore) GetUserFromRefreshTok(ctx context.Context, token string) (pgtype.UUID, error) {
	arg, ok := f.tokens[token]
	if !ok || arg.ExpiresAt.Time.Before(time.Now()) {
		return pgtype.UUID{}, pgx.ErrNoRows
	}
	return arg.UserID, nil
}

var testTokens = TokenConfig{
	Secret:     "validtokensecret",
	AccessTTL:  5 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}

func TestSetTokensAndCookies(t *testing.T) {
	store := newFakeRefreshStore()
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/account/login", nil)

	require.NoError(t, SetTokensAndCookies(rec, req, store, testTokens, userID))

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, AccessCookie)
	require.Contains(t, cookies, RefreshCookie)
	assert.True(t, cookies[AccessCookie].HttpOnly)

	gotID, err := ValidateJWT(cookies[AccessCookie].Value, testTokens.Secret)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Contains(t, store.tokens, cookies[RefreshCookie].Value)
}

func TestRefreshSession(t *testing.T) {
	store := newFakeRefreshStore()
	userID := uuid.New()

	tok, err := MakeRefreshToken(context.Background(), store, userID, time.Hour)
	require.NoError(t, err)

	t.Run("valid_refresh_token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: tok})

		gotID, err := RefreshSession(rec, req, store, testTokens)
		require.NoError(t, err)
		assert.Equal(t, userID, gotID)
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("missing_cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)

		_, err := RefreshSession(rec, req, store, testTokens)
		assert.ErrorIs(t, err, http.ErrNoCookie)
	})

	t.Run("unknown_token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/chat", nil)
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "invalid-refresh-token"})

		_, err := RefreshSession(rec, req, store, testTokens)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("store_error", func(t *testing.T) {
		broken := newFakeRefreshStore()
		broken.err = errors.New("db down")
		_, err := MakeRefreshToken(context.Background(), broken, userID, time.Hour)
		assert.Error(t, err)
	})
}

func TestMakeRefreshTokenDB(t *testing.T) {
	pool := testutil.DbInit(t)
	queries := database.New(pool)
	user := testutil.CreateUser(t, queries, "dummy")

	t.Run("valid_refresh_token", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		tokenString, err := MakeRefreshToken(ctx, queries, user.UserID.Bytes, 7*24*time.Hour)
		require.NoError(t, err)

		tokenFromDB, err := queries.GetRefreshToken(ctx, tokenString)
		require.NoError(t, err)
		assert.Equal(t, tokenString, tokenFromDB.Token)
		assert.True(t, tokenFromDB.Valid)
	})

	t.Run("expired_token", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		tokenString, err := MakeRefreshToken(ctx, queries, user.UserID.Bytes, -1*time.Millisecond)
		require.NoError(t, err)

		tokenFromDB, err := queries.GetRefreshToken(ctx, tokenString)
		require.NoError(t, err)
		assert.False(t, tokenFromDB.Valid)

		_, err = queries.GetUserFromRefreshTok(ctx, tokenString)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("revoked_token", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		tokenString, err := MakeRefreshToken(ctx, queries, user.UserID.Bytes, time.Hour)
		require.NoError(t, err)
		require.NoError(t, queries.RevokeRefreshToken(ctx, tokenString))

		_, err = queries.DoesRefreshTokenExist(ctx, tokenString)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}
