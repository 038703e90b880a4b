package postgres

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/repositories"
	"context"
	"database/sql"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repositories.IUserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, username, passwordHash).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, errors.ErrUsernameTaken
		}
		return domain.User{}, dbError(err)
	}
	return domain.User{ID: domain.UserID(id), Username: username, PasswordHash: passwordHash}, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	query := `
		SELECT id, username, password_hash, token, session_id
		FROM users
		WHERE id = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, int64(id)))
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	query := `
		SELECT id, username, password_hash, token, session_id
		FROM users
		WHERE username = $1
	`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// SwapToken relies on the row lock taken by UPDATE: concurrent swaps with the
// same old token serialize and only the first one matches.
func (r *UserRepository) SwapToken(ctx context.Context, id domain.UserID, oldToken, newToken string) error {
	query := `
		UPDATE users
		SET token = $3
		WHERE id = $1 AND token = $2 AND token <> ''
	`
	res, err := r.db.ExecContext(ctx, query, int64(id), oldToken, newToken)
	if err != nil {
		return dbError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dbError(err)
	}
	if affected == 1 {
		return nil
	}
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Token == "" {
		return errors.ErrEmptyToken
	}
	return errors.ErrTokenMismatch
}

func (r *UserRepository) SetSession(ctx context.Context, id domain.UserID, token, sessionID string) error {
	query := `
		UPDATE users
		SET token = $2, session_id = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, int64(id), token, sessionID)
	if err != nil {
		return dbError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dbError(err)
	}
	if affected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) RevokeSession(ctx context.Context, id domain.UserID, sessionID string) (bool, error) {
	query := `
		UPDATE users
		SET token = '', session_id = ''
		WHERE id = $1 AND session_id = $2 AND token <> ''
	`
	res, err := r.db.ExecContext(ctx, query, int64(id), sessionID)
	if err != nil {
		return false, dbError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, dbError(err)
	}
	return affected == 1, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		user domain.User
		id   int64
	)
	if err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.Token, &user.SessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, errors.ErrUserNotFound
		}
		return domain.User{}, dbError(err)
	}
	user.ID = domain.UserID(id)
	return user, nil
}
