package repositories

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"

	"github.com/dgraph-io/badger/v4"
)

type RoomRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewRoomRepository(db *badger.DB, seq *badger.Sequence) IRoomRepository {
	return &RoomRepository{db: db, seq: seq}
}

type roomRecord struct {
	ID   int64  `cbor:"id"`
	Name string `cbor:"name"`
}

// CreateRoom writes the room and the creator's membership in both index directions.
func (r *RoomRepository) CreateRoom(_ context.Context, name string, creator domain.UserID) (domain.Room, error) {
	var room domain.Room
	err := update(r.db, func(txn *badger.Txn) error {
		id, err := nextID(r.seq)
		if err != nil {
			return err
		}
		room = domain.Room{ID: domain.RoomID(id), Name: name}
		data, err := marshal(roomRecord{ID: id, Name: name})
		if err != nil {
			return err
		}
		if err = txn.Set(roomKey(room.ID), data); err != nil {
			return err
		}
		return setMembership(txn, room.ID, creator)
	})
	if err != nil {
		return domain.Room{}, wrapStorage(err)
	}
	return room, nil
}

func (r *RoomRepository) GetRoom(_ context.Context, id domain.RoomID) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = getRoom(txn, id)
		return err
	})
	return room, wrapStorage(err)
}

// AddMember checks the room first, then the inviter, then the invitee, so a
// missing room is reported before a missing membership.
func (r *RoomRepository) AddMember(_ context.Context, roomID domain.RoomID, inviter, invitee domain.UserID) error {
	err := update(r.db, func(txn *badger.Txn) error {
		if _, err := getRoom(txn, roomID); err != nil {
			return err
		}
		ok, err := hasMembership(txn, roomID, inviter)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrNotAMember
		}
		ok, err = hasMembership(txn, roomID, invitee)
		if err != nil {
			return err
		}
		if ok {
			return errors.ErrAlreadyMember
		}
		return setMembership(txn, roomID, invitee)
	})
	return wrapStorage(err)
}

func (r *RoomRepository) IsMember(_ context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	var ok bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = hasMembership(txn, roomID, userID)
		return err
	})
	return ok, wrapStorage(err)
}

func (r *RoomRepository) ListMembers(_ context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	var members []domain.UserID
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := scanIDs(txn, roomMemberPrefix(roomID))
		for _, id := range ids {
			members = append(members, domain.UserID(id))
		}
		return err
	})
	return members, wrapStorage(err)
}

func (r *RoomRepository) ListRoomsForUser(_ context.Context, userID domain.UserID) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := scanIDs(txn, userRoomPrefix(userID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			room, err := getRoom(txn, domain.RoomID(id))
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	return rooms, wrapStorage(err)
}

func getRoom(txn *badger.Txn, id domain.RoomID) (domain.Room, error) {
	item, err := txn.Get(roomKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	var record roomRecord
	if err = item.Value(func(val []byte) error {
		return unmarshal(val, &record)
	}); err != nil {
		return domain.Room{}, err
	}
	return domain.Room{ID: domain.RoomID(record.ID), Name: record.Name}, nil
}

func hasMembership(txn *badger.Txn, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	_, err := txn.Get(roomMemberKey(roomID, userID))
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, err
	}
}

func setMembership(txn *badger.Txn, roomID domain.RoomID, userID domain.UserID) error {
	if err := txn.Set(roomMemberKey(roomID, userID), nil); err != nil {
		return err
	}
	return txn.Set(userRoomKey(userID, roomID), nil)
}

// scanIDs collects the ids encoded in the suffix of every key under prefix.
func scanIDs(txn *badger.Txn, prefix []byte) ([]int64, error) {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var ids []int64
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		id, err := idFromKeySuffix(it.Item().Key(), len(prefix))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
