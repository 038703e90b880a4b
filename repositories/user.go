package repositories

import (
	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewUserRepository(db *badger.DB, seq *badger.Sequence) IUserRepository {
	return &UserRepository{db: db, seq: seq}
}

// userRecord is the persisted shape of a user.
type userRecord struct {
	ID           int64  `cbor:"id"`
	Username     string `cbor:"username"`
	PasswordHash string `cbor:"password_hash"`
	Token        string `cbor:"token"`
	SessionID    string `cbor:"session_id"`
}

// CreateUser stores a new logged-out user. The username index and the record
// are written in the same transaction so uniqueness holds under concurrency.
func (u *UserRepository) CreateUser(_ context.Context, username, passwordHash string) (domain.User, error) {
	var user domain.User
	err := update(u.db, func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUsernameTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		id, err := nextID(u.seq)
		if err != nil {
			return err
		}
		user = domain.User{ID: domain.UserID(id), Username: username, PasswordHash: passwordHash}
		if err = putUser(txn, user); err != nil {
			return err
		}
		return txn.Set(usernameKey(username), []byte(strconv.FormatInt(id, 10)))
	})
	if err != nil {
		return domain.User{}, wrapStorage(err)
	}
	return user, nil
}

func (u *UserRepository) GetUserByID(_ context.Context, id domain.UserID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, wrapStorage(err)
}

func (u *UserRepository) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err == badger.ErrKeyNotFound {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return err
		}
		user, err = getUser(txn, domain.UserID(id))
		return err
	})
	return user, wrapStorage(err)
}

// SwapToken is a compare-and-swap on the token column. Badger's optimistic
// transactions make the read and the write atomic: when two requests race with
// the same token, the loser either reads the winner's token or conflicts on
// commit. Both cases fail with ErrTokenMismatch.
func (u *UserRepository) SwapToken(_ context.Context, id domain.UserID, oldToken, newToken string) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		if user.Token == "" {
			return errors.ErrEmptyToken
		}
		if !auth.TokensEqual(user.Token, oldToken) {
			return errors.ErrTokenMismatch
		}
		user.Token = newToken
		return putUser(txn, user)
	})
	if err == badger.ErrConflict {
		return errors.ErrTokenMismatch
	}
	return wrapStorage(err)
}

func (u *UserRepository) SetSession(_ context.Context, id domain.UserID, token, sessionID string) error {
	err := update(u.db, func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		user.Token = token
		user.SessionID = sessionID
		return putUser(txn, user)
	})
	return wrapStorage(err)
}

func (u *UserRepository) RevokeSession(_ context.Context, id domain.UserID, sessionID string) (bool, error) {
	revoked := false
	err := update(u.db, func(txn *badger.Txn) error {
		revoked = false
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		if user.SessionID != sessionID || user.Token == "" {
			return nil
		}
		user.Token = ""
		user.SessionID = ""
		revoked = true
		return putUser(txn, user)
	})
	return revoked, wrapStorage(err)
}

func getUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	item, err := txn.Get(userKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	var record userRecord
	if err = item.Value(func(val []byte) error {
		return unmarshal(val, &record)
	}); err != nil {
		return domain.User{}, err
	}
	return toDomainUser(record), nil
}

func putUser(txn *badger.Txn, user domain.User) error {
	data, err := marshal(fromDomainUser(user))
	if err != nil {
		return err
	}
	return txn.Set(userKey(user.ID), data)
}

// wrapStorage keeps taxonomy errors as they are and marks everything else internal.
func wrapStorage(err error) error {
	if err == nil || errors.IsAuth(err) || errors.IsDomain(err) {
		return err
	}
	return errors.Internal(err)
}

func fromDomainUser(user domain.User) userRecord {
	return userRecord{
		ID:           int64(user.ID),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Token:        user.Token,
		SessionID:    user.SessionID,
	}
}

func toDomainUser(record userRecord) domain.User {
	return domain.User{
		ID:           domain.UserID(record.ID),
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		Token:        record.Token,
		SessionID:    record.SessionID,
	}
}
