package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

const minPasswordLen = 6

// AccountStore is the part of the database the account handlers use.
type AccountStore interface {
	auth.RefreshStore
	CreateAccount(ctx context.Context, arg database.CreateAccountParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserWithPasswordByEmail(ctx context.Context, email string) (database.GetUserWithPasswordByEmailRow, error)
	GetNeighborhood(ctx context.Context, id pgtype.UUID) (database.Neighborhood, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// SignupInput is a validated registration.
type SignupInput struct {
	Name           string
	Email          string
	Password       string
	Role           model.Role
	NeighborhoodID *uuid.UUID
}

// FormError is a validation message that can be shown to the user as is.
type FormError string

func (e FormError) Error() string { return string(e) }

func invalid(msg string) error {
	return FormError(msg)
}

// ParseSignup validates the signup form. ADMIN cannot be chosen at signup.
func ParseSignup(r *http.Request) (SignupInput, error) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	confirmPw := r.PostFormValue("confirm_password")

	if name == "" {
		return SignupInput{}, invalid("Name is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return SignupInput{}, invalid("Invalid email address.")
	}
	if len(password) < minPasswordLen {
		return SignupInput{}, invalid(fmt.Sprintf("Password must have at least %d characters.", minPasswordLen))
	}
	// Validate password by comparing main and confirm.
	if password != confirmPw {
		return SignupInput{}, invalid("Passwords do not match!")
	}

	role := model.RoleResident
	if v := r.PostFormValue("role"); v != "" {
		parsed, err := model.ParseRole(v)
		if err != nil || parsed == model.RoleAdmin {
			return SignupInput{}, invalid("Invalid role.")
		}
		role = parsed
	}

	hoodStr := strings.TrimSpace(r.PostFormValue("neighborhood_id"))
	if hoodStr == "" {
		return SignupInput{}, invalid("Neighborhood is required.")
	}
	hood, err := uuid.Parse(hoodStr)
	if err != nil {
		return SignupInput{}, invalid("Invalid neighborhood.")
	}

	return SignupInput{
		Name:           name,
		Email:          email,
		Password:       password,
		Role:           role,
		NeighborhoodID: &hood,
	}, nil
}

// CreateAccount stores the user and its password hash in one transaction.
func CreateAccount(ctx context.Context, db AccountStore, in SignupInput) (database.User, error) {
	hashedPw, err := auth.HashPassword(in.Password)
	if err != nil {
		return database.User{}, fmt.Errorf("argon2id hash creation failed: %w", err)
	}

	return db.CreateAccount(ctx, database.CreateAccountParams{
		User: database.CreateUserParams{
			UserID:         database.UUID(uuid.New()),
			Name:           in.Name,
			Email:          in.Email,
			Role:           string(in.Role),
			NeighborhoodID: database.NullUUID(in.NeighborhoodID),
			Plan:           string(model.PlanFree),
		},
		HashedPassword: hashedPw,
		CreatedAt:      pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
}

// EnsureAdmin creates the administrator account if it does not exist yet.
func EnsureAdmin(ctx context.Context, db AccountStore, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	_, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !database.IsNotFound(err) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if _, err := CreateAccount(ctx, db, SignupInput{
		Name:     "Administrador",
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "admin account created", slog.String("email", email))
	return nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(1 << 20)
	}
	return r.ParseForm()
}

// SubmitSignupForm handles user account creation.
func SubmitSignupForm(db AccountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := parseForm(r); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid form data.")
			log.Printf("failed to parse form values: %v", err)
			return
		}

		in, err := ParseSignup(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := db.GetNeighborhood(ctx, database.NullUUID(in.NeighborhoodID)); err != nil {
			if database.IsNotFound(err) {
				respondError(w, http.StatusBadRequest, "Invalid neighborhood.")
				return
			}
			respondStoreError(w, err, "Neighborhood")
			return
		}

		user, err := CreateAccount(ctx, db, in)
		if err != nil {
			if database.IsUniqueViolation(err) {
				respondError(w, http.StatusConflict, "Email is already registered.")
				return
			}
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Server error.")
			return
		}

		respondJSON(w, http.StatusCreated, user.ToModel())

		slog.InfoContext(ctx, "user signed up",
			slog.String("email", user.Email),
			slog.String("role", user.Role))
	}
}

// SubmitLoginForm handles user login.
func SubmitLoginForm(db AccountStore, tokens auth.TokenConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := parseForm(r); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid form data.")
			log.Printf("failed to parse form values: %v", err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
		password := r.PostFormValue("password")

		user, err := db.GetUserWithPasswordByEmail(ctx, email)
		if err != nil {
			if !database.IsNotFound(err) {
				log.Printf("failed to retrieve user from db: %v", err)
			}
			respondError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}

		ok, err := auth.CheckPasswordHash(password, user.HashedPassword)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("cannot verify password, hash may be corrupted: %v", err)
			return
		}
		if !ok {
			respondError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}

		if err := auth.SetTokensAndCookies(w, r, db, tokens, user.UserID.Bytes); err != nil {
			log.Printf("%v", err)
			respondError(w, http.StatusInternalServerError, "Server error.")
			return
		}

		respondJSON(w, http.StatusOK, model.User{
			ID:             user.UserID.Bytes,
			Name:           user.Name,
			Email:          user.Email,
			Role:           model.Role(user.Role),
			NeighborhoodID: database.UUIDPtr(user.NeighborhoodID),
			Plan:           model.PlanID(user.Plan),
		})

		slog.InfoContext(ctx, "user logged in",
			slog.String("email", user.Email))
	}
}

// SubmitLogoutReq revokes the user's refresh token and clears both cookies.
func SubmitLogoutReq(db AccountStore, tokens auth.TokenConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshTok, err := r.Cookie(auth.RefreshCookie)
		if err == nil {
			if err := db.RevokeRefreshToken(r.Context(), refreshTok.Value); err != nil {
				log.Printf("failed to process token revocation: %v", err)
			}
		}

		auth.ClearCookies(w, tokens)
		w.WriteHeader(http.StatusNoContent)

		log.Printf("user logged out")
	}
}

// RefreshToken issues a new JWT from the refresh token cookie.
func RefreshToken(db AccountStore, tokens auth.TokenConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RefreshSession(w, r, db, tokens); err != nil {
			if !errors.Is(err, http.ErrNoCookie) && !database.IsNotFound(err) {
				log.Printf("handler/refresh token: %v", err)
			}
			respondError(w, http.StatusUnauthorized, "Session expired.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
