package postgres

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/repositories"
	"context"
	"database/sql"
)

type RoomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) repositories.IRoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) CreateRoom(ctx context.Context, name string, creator domain.UserID) (domain.Room, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx DBTX) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO rooms (name)
			VALUES ($1)
			RETURNING id
		`, name).Scan(&id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO memberships (room_id, user_id)
			VALUES ($1, $2)
		`, id, int64(creator))
		return err
	})
	if err != nil {
		return domain.Room{}, dbError(err)
	}
	return domain.Room{ID: domain.RoomID(id), Name: name}, nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	query := `
		SELECT id, name
		FROM rooms
		WHERE id = $1
	`
	var (
		room   domain.Room
		roomID int64
	)
	if err := r.db.QueryRowContext(ctx, query, int64(id)).Scan(&roomID, &room.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, errors.ErrRoomNotFound
		}
		return domain.Room{}, dbError(err)
	}
	room.ID = domain.RoomID(roomID)
	return room, nil
}

// AddMember copies the inviter's membership row onto the invitee, so the
// insert matches nothing when the inviter is not in the room.
func (r *RoomRepository) AddMember(ctx context.Context, roomID domain.RoomID, inviter, invitee domain.UserID) error {
	if _, err := r.GetRoom(ctx, roomID); err != nil {
		return err
	}
	query := `
		INSERT INTO memberships (room_id, user_id)
		SELECT room_id, $3
		FROM memberships
		WHERE room_id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, int64(roomID), int64(inviter), int64(invitee))
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyMember
		}
		return dbError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dbError(err)
	}
	if affected == 0 {
		return errors.ErrNotAMember
	}
	return nil
}

func (r *RoomRepository) IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM memberships WHERE room_id = $1 AND user_id = $2
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, int64(roomID), int64(userID)).Scan(&ok); err != nil {
		return false, dbError(err)
	}
	return ok, nil
}

func (r *RoomRepository) ListMembers(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	query := `
		SELECT user_id
		FROM memberships
		WHERE room_id = $1
		ORDER BY user_id
	`
	rows, err := r.db.QueryContext(ctx, query, int64(roomID))
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var members []domain.UserID
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, dbError(err)
		}
		members = append(members, domain.UserID(id))
	}
	if err = rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return members, nil
}

func (r *RoomRepository) ListRoomsForUser(ctx context.Context, userID domain.UserID) ([]domain.Room, error) {
	query := `
		SELECT r.id, r.name
		FROM rooms r
		JOIN memberships m ON m.room_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.id
	`
	rows, err := r.db.QueryContext(ctx, query, int64(userID))
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err = rows.Scan(&id, &name); err != nil {
			return nil, dbError(err)
		}
		rooms = append(rooms, domain.Room{ID: domain.RoomID(id), Name: name})
	}
	if err = rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return rooms, nil
}
