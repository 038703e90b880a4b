//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-rooms/auth"
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/moderation"
	"chat-rooms/repositories"
	"context"
	"log/slog"
	"time"
)

// IChatService runs every mutation as: rotate the token, do the domain work,
// fan out. The rotated token is returned even when the domain work fails,
// the presented one is already consumed.
type IChatService interface {
	CreateRoom(ctx context.Context, req auth.CreateRoomRequest) (domain.Room, string, error)
	PostMessage(ctx context.Context, req auth.PostMessageRequest) (domain.Message, string, error)
	Invite(ctx context.Context, req auth.InviteRequest) (domain.Room, string, error)
}

type ChatService struct {
	log       *slog.Logger
	auth      IAuthService
	users     repositories.IUserRepository
	rooms     repositories.IRoomRepository
	messages  repositories.IMessageRepository
	fanout    contract.IRoomFanout
	censor    moderation.ICensor
	sequencer *roomSequencer
}

func NewChatService(
	log *slog.Logger,
	authService IAuthService,
	store repositories.Store,
	fanout contract.IRoomFanout,
	censor moderation.ICensor,
) IChatService {
	return &ChatService{
		log:       log,
		auth:      authService,
		users:     store.Users,
		rooms:     store.Rooms,
		messages:  store.Messages,
		fanout:    fanout,
		censor:    censor,
		sequencer: newRoomSequencer(time.Now),
	}
}

func (s *ChatService) CreateRoom(ctx context.Context, req auth.CreateRoomRequest) (domain.Room, string, error) {
	userID := domain.UserID(req.UserID)
	token, err := s.auth.ValidateAndRotate(ctx, userID, req.Token)
	if err != nil {
		return domain.Room{}, "", err
	}
	if err = auth.Validate(req); err != nil {
		return domain.Room{}, token, err
	}

	room, err := s.rooms.CreateRoom(ctx, req.Name, userID)
	if err != nil {
		return domain.Room{}, token, err
	}
	s.fanout.OnRoomCreated(room, userID)
	s.log.Info("Room created", "room_id", room.ID, "user_id", userID)
	return room, token, nil
}

func (s *ChatService) PostMessage(ctx context.Context, req auth.PostMessageRequest) (domain.Message, string, error) {
	userID := domain.UserID(req.UserID)
	roomID := domain.RoomID(req.RoomID)
	token, err := s.auth.ValidateAndRotate(ctx, userID, req.Token)
	if err != nil {
		return domain.Message{}, "", err
	}
	if err = auth.Validate(req); err != nil {
		return domain.Message{}, token, err
	}
	if err = s.checkMember(ctx, roomID, userID); err != nil {
		return domain.Message{}, token, err
	}

	text := req.Text
	if s.censor != nil {
		text, _ = s.censor.Censor(text)
	}

	// Persist and publish under the room lock so every subscriber sees the
	// room's messages in storage order.
	clock := s.sequencer.lock(roomID)
	defer clock.unlock()

	message := domain.Message{Date: clock.next(), RoomID: roomID, UserID: userID, Text: text}
	if err = s.messages.StoreMessage(ctx, message); err != nil {
		return domain.Message{}, token, err
	}
	if err = s.fanout.OnMessageCreated(ctx, message); err != nil {
		// Stored anyway; open streams catch up on their next backlog replay.
		s.log.Error("Message fan-out failed", "room_id", roomID, "error", err)
	}
	return message, token, nil
}

func (s *ChatService) Invite(ctx context.Context, req auth.InviteRequest) (domain.Room, string, error) {
	inviter := domain.UserID(req.UserID)
	roomID := domain.RoomID(req.RoomID)
	token, err := s.auth.ValidateAndRotate(ctx, inviter, req.Token)
	if err != nil {
		return domain.Room{}, "", err
	}
	if err = auth.Validate(req); err != nil {
		return domain.Room{}, token, err
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, token, err
	}
	invitee, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, errors.ErrUserNotFound) {
		return domain.Room{}, token, errors.ErrInviteeNotFound
	}
	if err != nil {
		return domain.Room{}, token, err
	}

	// Holding the room lock keeps messages posted meanwhile behind the history replay.
	clock := s.sequencer.lock(roomID)
	defer clock.unlock()

	if err = s.rooms.AddMember(ctx, roomID, inviter, invitee.ID); err != nil {
		return domain.Room{}, token, err
	}
	if err = s.fanout.OnInviteAccepted(ctx, room, invitee.ID); err != nil {
		s.log.Error("Invite fan-out failed", "room_id", roomID, "user_id", invitee.ID, "error", err)
	}
	s.log.Info("User invited", "room_id", roomID, "inviter", inviter, "invitee", invitee.ID)
	return room, token, nil
}

func (s *ChatService) checkMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return err
	}
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotAMember
	}
	return nil
}
