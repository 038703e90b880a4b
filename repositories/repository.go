//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repositories.go -package=mocks
package repositories

import (
	"chat-rooms/domain"
	"context"
)

// IUserRepository owns the user record, including its token column.
// The token is only ever changed through SwapToken, SetSession and RevokeSession.
type IUserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id domain.UserID) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	// SwapToken replaces the stored token with newToken only if it currently equals oldToken.
	// It fails with ErrUserNotFound, ErrEmptyToken or ErrTokenMismatch.
	SwapToken(ctx context.Context, id domain.UserID, oldToken, newToken string) error
	// SetSession unconditionally stores a token and the session it belongs to.
	// Empty values log the user out.
	SetSession(ctx context.Context, id domain.UserID, token, sessionID string) error
	// RevokeSession logs the user out only if sessionID is still the current session.
	RevokeSession(ctx context.Context, id domain.UserID, sessionID string) (bool, error)
}

type IRoomRepository interface {
	// CreateRoom persists the room and the creator's membership together.
	CreateRoom(ctx context.Context, name string, creator domain.UserID) (domain.Room, error)
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
	// AddMember inserts the invitee's membership if the inviter is a member.
	// It fails with ErrRoomNotFound, ErrNotAMember or ErrAlreadyMember.
	AddMember(ctx context.Context, roomID domain.RoomID, inviter, invitee domain.UserID) error
	IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error)
	ListMembers(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error)
	// ListRoomsForUser returns the rooms visible to a user ordered by room id.
	ListRoomsForUser(ctx context.Context, userID domain.UserID) ([]domain.Room, error)
}

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	// GetMessages returns the full history of a room in chronological order.
	GetMessages(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error)
}

// Store groups the repositories backing one storage driver.
type Store struct {
	Users    IUserRepository
	Rooms    IRoomRepository
	Messages IMessageRepository
	closers  []func() error
}

func NewStore(users IUserRepository, rooms IRoomRepository, messages IMessageRepository, closers ...func() error) Store {
	return Store{Users: users, Rooms: rooms, Messages: messages, closers: closers}
}

// Close releases driver resources in reverse registration order.
func (s Store) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
