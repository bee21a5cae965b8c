package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/atalaia/internal/auth"
	"github.com/johndosdos/atalaia/internal/database"
	"github.com/johndosdos/atalaia/internal/model"
)

// fakeStore is an in-memory stand-in for *database.Queries.
type fakeStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]database.User
	passwords     map[uuid.UUID]string
	tokens        map[string]database.CreateRefreshTokenParams
	revoked       map[string]bool
	neighborhoods map[uuid.UUID]database.Neighborhood
	protocols     []database.CameraProtocol
	// passwordErr fails the password write of CreateAccount.
	passwordErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uuid.UUID]database.User),
		passwords:     make(map[uuid.UUID]string),
		tokens:        make(map[string]database.CreateRefreshTokenParams),
		revoked:       make(map[string]bool),
		neighborhoods: make(map[uuid.UUID]database.Neighborhood),
	}
}

func (f *fakeStore) addNeighborhood(name string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.neighborhoods[id] = database.Neighborhood{
		ID:        database.UUID(id),
		Name:      name,
		IframeUrl: "https://cam.test/" + strings.ToLower(name),
		CreatedAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	}
	return id
}

func (f *fakeStore) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == arg.Email {
			return database.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := database.User{
		UserID:         arg.UserID,
		Name:           arg.Name,
		Email:          arg.Email,
		Role:           arg.Role,
		NeighborhoodID: arg.NeighborhoodID,
		Plan:           arg.Plan,
		CreatedAt:      pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	}
	f.users[arg.UserID.Bytes] = u
	return u, nil
}

// CreateAccount mirrors the transaction of database.Store: a failed
// password write leaves no user behind.
func (f *fakeStore) CreateAccount(ctx context.Context, arg database.CreateAccountParams) (database.User, error) {
	u, err := f.CreateUser(ctx, arg.User)
	if err != nil {
		return database.User{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.passwordErr != nil {
		delete(f.users, u.UserID.Bytes)
		return database.User{}, f.passwordErr
	}
	f.passwords[u.UserID.Bytes] = arg.HashedPassword
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func (f *fakeStore) GetUserWithPasswordByEmail(ctx context.Context, email string) (database.GetUserWithPasswordByEmailRow, error) {
	u, err := f.GetUserByEmail(ctx, email)
	if err != nil {
		return database.GetUserWithPasswordByEmailRow{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return database.GetUserWithPasswordByEmailRow{
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		NeighborhoodID: u.NeighborhoodID,
		Plan:           u.Plan,
		HashedPassword: f.passwords[u.UserID.Bytes],
	}, nil
}

func (f *fakeStore) UpdateUserPlan(ctx context.Context, arg database.UpdateUserPlanParams) (database.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.UserID.Bytes]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	u.Plan = arg.Plan
	f.users[arg.UserID.Bytes] = u
	return u, nil
}

func (f *fakeStore) CreateRefreshToken(ctx context.Context, arg database.CreateRefreshTokenParams) (database.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[arg.Token] = arg
	return database.RefreshToken{Token: arg.Token, UserID: arg.UserID, CreatedAt: arg.CreatedAt, ExpiresAt: arg.ExpiresAt}, nil
}

func (f *fakeStore) GetUserFromRefreshTok(ctx context.Context, token string) (pgtype.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	arg, ok := f.tokens[token]
	if !ok || f.revoked[token] || arg.ExpiresAt.Time.Before(time.Now()) {
		return pgtype.UUID{}, pgx.ErrNoRows
	}
	return arg.UserID, nil
}

func (f *fakeStore) RevokeRefreshToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[token] = true
	return nil
}

func (f *fakeStore) ListNeighborhoods(ctx context.Context) ([]database.Neighborhood, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]database.Neighborhood, 0, len(f.neighborhoods))
	for _, n := range f.neighborhoods {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) SearchNeighborhoods(ctx context.Context, name string) ([]database.Neighborhood, error) {
	all, _ := f.ListNeighborhoods(ctx)
	var out []database.Neighborhood
	for _, n := range all {
		if strings.Contains(strings.ToLower(n.Name), strings.ToLower(name)) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) GetNeighborhood(ctx context.Context, id pgtype.UUID) (database.Neighborhood, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.neighborhoods[id.Bytes]
	if !ok || !id.Valid {
		return database.Neighborhood{}, pgx.ErrNoRows
	}
	return n, nil
}

func (f *fakeStore) CreateNeighborhood(ctx context.Context, arg database.CreateNeighborhoodParams) (database.Neighborhood, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	n := database.Neighborhood{
		ID:        database.UUID(id),
		Name:      arg.Name,
		IframeUrl: arg.IframeUrl,
		Lat:       arg.Lat,
		Lng:       arg.Lng,
		CreatedAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	}
	f.neighborhoods[id] = n
	return n, nil
}

func (f *fakeStore) DeleteNeighborhood(ctx context.Context, id pgtype.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.neighborhoods[id.Bytes]; !ok {
		return 0, nil
	}
	delete(f.neighborhoods, id.Bytes)
	return 1, nil
}

func (f *fakeStore) CreateCameraProtocol(ctx context.Context, arg database.CreateCameraProtocolParams) (database.CameraProtocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := database.CameraProtocol{
		ID:          database.UUID(uuid.New()),
		CameraName:  arg.CameraName,
		Rtmp:        arg.Rtmp,
		Rtsp:        arg.Rtsp,
		Lat:         arg.Lat,
		Lng:         arg.Lng,
		UserID:      arg.UserID,
		RequestedBy: arg.RequestedBy,
		CreatedAt:   pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	}
	f.protocols = append(f.protocols, p)
	return p, nil
}

func (f *fakeStore) ListCameraProtocols(ctx context.Context) ([]database.CameraProtocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]database.CameraProtocol(nil), f.protocols...), nil
}

// withUser runs next as user.
func withUser(user model.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithCurrentUser(r.Context(), user)))
	})
}

func resident(hood *uuid.UUID) model.User {
	return model.User{
		ID:             uuid.New(),
		Name:           "Ana",
		Email:          "ana@test.com",
		Role:           model.RoleResident,
		NeighborhoodID: hood,
		Plan:           model.PlanFree,
	}
}

func admin() model.User {
	return model.User{ID: uuid.New(), Name: "Admin", Email: "admin@test.com", Role: model.RoleAdmin, Plan: model.PlanFree}
}

var testTokens = auth.TokenConfig{
	Secret:     "handlersecret",
	AccessTTL:  5 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}
