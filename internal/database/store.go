package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is Queries bound to a pool, with support for transactions.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: New(pool), pool: pool}
}

// ExecTx runs fn inside one transaction. It commits when fn returns nil and
// rolls back otherwise.
func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(s.WithTx(tx))
	})
}

type CreateAccountParams struct {
	User           CreateUserParams
	HashedPassword string
	CreatedAt      pgtype.Timestamptz
}

// CreateAccount writes a user and its password hash. Either both rows are
// stored or neither is.
func (s *Store) CreateAccount(ctx context.Context, arg CreateAccountParams) (User, error) {
	var user User
	err := s.ExecTx(ctx, func(q *Queries) error {
		var err error
		user, err = q.CreateUser(ctx, arg.User)
		if err != nil {
			return fmt.Errorf("failed to create user entry in database: %w", err)
		}

		_, err = q.CreatePassword(ctx, CreatePasswordParams{
			UserID:         user.UserID,
			HashedPassword: arg.HashedPassword,
			CreatedAt:      arg.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to create password entry in database: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
