package event

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"encoding/json"
	"fmt"
	"time"
)

// wireEnvelope is the JSON shape written on the stream.
// Type selects between the room shape {id, name} and the message shape
// {date, roomId, userId, text}. Date is expressed in unix milliseconds.
type wireEnvelope struct {
	Type   Kind   `json:"type"`
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Date   int64  `json:"date,omitempty"`
	RoomID int64  `json:"roomId,omitempty"`
	UserID int64  `json:"userId,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Encode renders an envelope as a single-line JSON object.
func Encode(e Envelope) ([]byte, error) {
	wire := Match(e,
		func(r RoomCreated) wireEnvelope {
			return wireEnvelope{Type: RoomCreatedKind, ID: int64(r.Room.ID), Name: r.Room.Name}
		},
		func(m MessageCreated) wireEnvelope {
			return wireEnvelope{
				Type:   MessageCreatedKind,
				Date:   m.Message.Date.UnixMilli(),
				RoomID: int64(m.Message.RoomID),
				UserID: int64(m.Message.UserID),
				Text:   m.Message.Text,
			}
		},
	)
	return json.Marshal(wire)
}

// Decode parses a JSON object produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidEnvelope, err)
	}
	switch wire.Type {
	case RoomCreatedKind:
		return RoomCreated{Room: domain.Room{ID: domain.RoomID(wire.ID), Name: wire.Name}}, nil
	case MessageCreatedKind:
		return MessageCreated{Message: domain.Message{
			Date:   time.UnixMilli(wire.Date).UTC(),
			RoomID: domain.RoomID(wire.RoomID),
			UserID: domain.UserID(wire.UserID),
			Text:   wire.Text,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrInvalidEnvelope, wire.Type)
	}
}
