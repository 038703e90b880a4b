package event

import (
	"chat-rooms/domain"
	"fmt"
)

type Kind string

const (
	RoomCreatedKind    Kind = "room"
	MessageCreatedKind Kind = "message"
)

// Envelope is the unit carried by the bus and written to streams.
// The set of implementations is closed: RoomCreated and MessageCreated.
type Envelope interface {
	Kind() Kind
	isEnvelope()
}

type RoomCreated struct {
	Room domain.Room
}

func (RoomCreated) Kind() Kind  { return RoomCreatedKind }
func (RoomCreated) isEnvelope() {}

type MessageCreated struct {
	Message domain.Message
}

func (MessageCreated) Kind() Kind  { return MessageCreatedKind }
func (MessageCreated) isEnvelope() {}

// RoomID returns the room an envelope belongs to.
func RoomID(e Envelope) domain.RoomID {
	return Match(e,
		func(r RoomCreated) domain.RoomID { return r.Room.ID },
		func(m MessageCreated) domain.RoomID { return m.Message.RoomID },
	)
}

// Match dispatches e to the handler of its variant.
// Both handlers are mandatory so every consumer covers every variant.
func Match[T any](e Envelope, onRoom func(RoomCreated) T, onMessage func(MessageCreated) T) T {
	switch v := e.(type) {
	case RoomCreated:
		return onRoom(v)
	case MessageCreated:
		return onMessage(v)
	default:
		panic(fmt.Sprintf("event: unknown envelope %T", e))
	}
}
