package postgres

import (
	"chat-rooms/domain"
	"chat-rooms/repositories"
	"context"
	"time"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) repositories.IMessageRepository {
	return &MessageRepository{db: db}
}

// StoreMessage keeps the date as unix nanoseconds, timestamptz would truncate to microseconds.
func (r *MessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	query := `
		INSERT INTO messages (room_id, user_id, text, sent_at_ns)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(message.RoomID), int64(message.UserID), message.Text, message.Date.UnixNano())
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *MessageRepository) GetMessages(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	query := `
		SELECT room_id, user_id, text, sent_at_ns
		FROM messages
		WHERE room_id = $1
		ORDER BY sent_at_ns, id
	`
	rows, err := r.db.QueryContext(ctx, query, int64(roomID))
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			room, user, at int64
			text           string
		)
		if err = rows.Scan(&room, &user, &text, &at); err != nil {
			return nil, dbError(err)
		}
		messages = append(messages, domain.Message{
			Date:   time.Unix(0, at).UTC(),
			RoomID: domain.RoomID(room),
			UserID: domain.UserID(user),
			Text:   text,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return messages, nil
}
