package runtime

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/repositories"
	"context"
	"fmt"
	"log/slog"
)

// RoomFanout turns room level facts into per-user publishes.
// It does not order anything itself: callers publish one room at a time.
type RoomFanout struct {
	log      *slog.Logger
	bus      contract.IEventBus
	rooms    repositories.IRoomRepository
	messages repositories.IMessageRepository
}

func NewRoomFanout(
	log *slog.Logger,
	bus contract.IEventBus,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
) contract.IRoomFanout {
	return &RoomFanout{log: log, bus: bus, rooms: rooms, messages: messages}
}

// OnMessageCreated publishes to every member of the room, the author included.
func (f *RoomFanout) OnMessageCreated(ctx context.Context, message domain.Message) error {
	members, err := f.rooms.ListMembers(ctx, message.RoomID)
	if err != nil {
		return fmt.Errorf("list members of room %d: %w", message.RoomID, err)
	}
	envelope := event.MessageCreated{Message: message}
	delivered := 0
	for _, member := range members {
		if f.bus.Publish(member, envelope) {
			delivered++
		}
	}
	f.log.Debug("Message fanned out",
		"room_id", message.RoomID, "members", len(members), "delivered", delivered)
	return nil
}

// OnRoomCreated only reaches the creator, nobody else is a member yet.
func (f *RoomFanout) OnRoomCreated(room domain.Room, creator domain.UserID) {
	f.bus.Publish(creator, event.RoomCreated{Room: room})
}

// OnInviteAccepted gives an already open stream of the invitee the room and
// its whole history, so it catches up without reconnecting.
func (f *RoomFanout) OnInviteAccepted(ctx context.Context, room domain.Room, invitee domain.UserID) error {
	if !f.bus.Publish(invitee, event.RoomCreated{Room: room}) {
		// No live receiver, the next stream replays the room from storage.
		return nil
	}
	history, err := f.messages.GetMessages(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("history of room %d: %w", room.ID, err)
	}
	for _, message := range history {
		f.bus.Publish(invitee, event.MessageCreated{Message: message})
	}
	f.log.Debug("Invitee caught up", "room_id", room.ID, "user_id", invitee, "messages", len(history))
	return nil
}
