package repositories

import (
	"chat-rooms/domain"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const (
	maxConflictRetries = 3
	sequenceBandwidth  = 100
)

// Key layout. Ids are zero padded so prefix scans come back in id order.
const (
	userSequenceKey = "seq:user"
	roomSequenceKey = "seq:room"
)

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("user:id:%020d", id))
}

func usernameKey(username string) []byte {
	return []byte("user:name:" + username)
}

func roomKey(id domain.RoomID) []byte {
	return []byte(fmt.Sprintf("room:%020d", id))
}

func roomMemberPrefix(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("member:room:%020d:", roomID))
}

func roomMemberKey(roomID domain.RoomID, userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("member:room:%020d:%020d", roomID, userID))
}

func userRoomPrefix(userID domain.UserID) []byte {
	return []byte(fmt.Sprintf("member:user:%020d:", userID))
}

func userRoomKey(userID domain.UserID, roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("member:user:%020d:%020d", userID, roomID))
}

func messagePrefix(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("msg:%020d:", roomID))
}

// idFromKeySuffix parses the trailing zero padded id of a membership key.
func idFromKeySuffix(key []byte, prefixLen int) (int64, error) {
	return strconv.ParseInt(string(key[prefixLen:]), 10, 64)
}

// update runs fn in a read-write transaction, retrying when badger reports a
// conflict with a concurrent transaction. fn re-reads its state on every attempt.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
	}
	return err
}

// nextID leases ids from a badger sequence. Ids start at 1.
func nextID(seq *badger.Sequence) (int64, error) {
	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

// NewBadgerStore wires the badger repositories on an open database.
// Closing the store releases the id sequences, it does not close db.
func NewBadgerStore(db *badger.DB, log *slog.Logger) (Store, error) {
	userSeq, err := db.GetSequence([]byte(userSequenceKey), sequenceBandwidth)
	if err != nil {
		return Store{}, fmt.Errorf("user sequence: %w", err)
	}
	roomSeq, err := db.GetSequence([]byte(roomSequenceKey), sequenceBandwidth)
	if err != nil {
		_ = userSeq.Release()
		return Store{}, fmt.Errorf("room sequence: %w", err)
	}
	return NewStore(
		NewUserRepository(db, userSeq),
		NewRoomRepository(db, roomSeq),
		NewMessageRepository(db, log),
		userSeq.Release,
		roomSeq.Release,
	), nil
}

// OpenBadgerStore opens the database and wires the repositories on it.
// Closing the store also closes the database.
func OpenBadgerStore(opts badger.Options, log *slog.Logger) (Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return Store{}, fmt.Errorf("database opening failed: %w", err)
	}
	store, err := NewBadgerStore(db, log)
	if err != nil {
		_ = db.Close()
		return Store{}, err
	}
	// Closers run in reverse, the database goes last.
	store.closers = append([]func() error{db.Close}, store.closers...)
	return store, nil
}
