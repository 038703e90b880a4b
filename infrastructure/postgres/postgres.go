// Package postgres provides PostgreSQL-backed repositories for users, rooms
// and messages, and the goose migrations creating their schema.
package postgres

import (
	"chat-rooms/errors"
	"chat-rooms/infrastructure/postgres/migrations"
	"chat-rooms/repositories"
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Open connects to dsn, migrates the schema and returns a store owning the connection pool.
func Open(ctx context.Context, dsn string) (repositories.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return repositories.Store{}, fmt.Errorf("db open error: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return repositories.Store{}, fmt.Errorf("db ping error: %w", err)
	}
	if err = RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return repositories.Store{}, fmt.Errorf("migration error: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wires the repositories on an already migrated database.
func NewStore(db *sql.DB) repositories.Store {
	return repositories.NewStore(
		NewUserRepository(db),
		NewRoomRepository(db),
		NewMessageRepository(db),
		db.Close,
	)
}

// withTx runs fn in a transaction, committing on success and rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func dbError(err error) error {
	return errors.Internal(fmt.Errorf("db error: %w", err))
}
