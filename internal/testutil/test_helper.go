// Package testutil sets up the postgres database used by integration tests.
package testutil

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/johndosdos/atalaia/internal/database"
	schema "github.com/johndosdos/atalaia/sql"
)

func ProjectRoot() string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "../../")
	return root
}

// DbInit connects to TEST_DB_URL and migrates a clean schema. The test is
// skipped when TEST_DB_URL is not set. Migrations are rolled back when the
// test finishes.
func DbInit(t testing.TB) *pgxpool.Pool {
	t.Helper()

	if err := godotenv.Load(filepath.Join(ProjectRoot(), ".env")); err != nil {
		log.Printf("failed to load .env file: %+v", err)
	}

	testURL := os.Getenv("TEST_DB_URL")
	if testURL == "" {
		t.Skip("TEST_DB_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err := pgxpool.New(ctx, testURL)
	if err != nil {
		t.Fatalf("could not connect to the postgresql database: %v", err)
	}

	goose.SetBaseFS(schema.Migrations)
	_ = goose.SetDialect("postgres")

	dbForGoose := stdlib.OpenDBFromPool(dbPool)
	if err := goose.Reset(dbForGoose, schema.MigrationsDir); err != nil {
		dbForGoose.Close()
		t.Fatalf("goose.Reset() error = %+v", err)
	}
	if err := goose.Up(dbForGoose, schema.MigrationsDir); err != nil {
		dbForGoose.Close()
		t.Fatalf("goose.Up() error = %+v", err)
	}

	t.Cleanup(func() {
		if err := goose.Reset(dbForGoose, schema.MigrationsDir); err != nil {
			t.Logf("goose.Reset() error = %+v", err)
		}
		if err := dbForGoose.Close(); err != nil {
			t.Logf("db.Close() error = %+v", err)
		}
		dbPool.Close()
	})

	return dbPool
}

// CreateUser inserts a resident with a unique email.
func CreateUser(t testing.TB, q *database.Queries, name string) database.User {
	t.Helper()

	user, err := q.CreateUser(context.Background(), database.CreateUserParams{
		UserID: database.UUID(uuid.New()),
		Name:   name,
		Email:  uuid.NewString() + "@test.com",
		Role:   "RESIDENT",
		Plan:   "FREE",
	})
	if err != nil {
		t.Fatalf("failed to create user: %+v", err)
	}
	return user
}
