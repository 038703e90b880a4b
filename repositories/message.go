package repositories

import (
	"chat-rooms/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) IMessageRepository {
	return &MessageRepository{db: db, log: log}
}

type messageRecord struct {
	RoomID int64  `cbor:"room_id"`
	UserID int64  `cbor:"user_id"`
	Text   string `cbor:"text"`
	At     int64  `cbor:"at"`
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep both messages if two of them share the same nanosecond.
func (m *MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		messagePrefix(message.RoomID),
		message.Date.UnixNano(),
		uuid.New(),
	)
	data, err := marshal(fromDomainMessage(message))
	if err != nil {
		return wrapStorage(err)
	}
	return wrapStorage(m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	}))
}

// GetMessages retrieves the messages of a room using a forward prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
func (m *MessageRepository) GetMessages(_ context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(roomID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record messageRecord
			if err := it.Item().Value(func(val []byte) error {
				return unmarshal(val, &record)
			}); err != nil {
				return err
			}
			messages = append(messages, toDomainMessage(record))
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	m.log.Debug("Loaded room history", "room_id", roomID, "count", len(messages))
	return messages, nil
}

func fromDomainMessage(message domain.Message) messageRecord {
	return messageRecord{
		RoomID: int64(message.RoomID),
		UserID: int64(message.UserID),
		Text:   message.Text,
		At:     message.Date.UnixNano(),
	}
}

func toDomainMessage(record messageRecord) domain.Message {
	return domain.Message{
		Date:   time.Unix(0, record.At).UTC(),
		RoomID: domain.RoomID(record.RoomID),
		UserID: domain.UserID(record.UserID),
		Text:   record.Text,
	}
}
