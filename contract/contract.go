//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IReceiver is one independent read cursor over a user's channel.
type IReceiver interface {
	// Recv blocks until the next envelope, a lag report, channel closure or ctx end.
	Recv(ctx context.Context) (event.Envelope, error)
	Close()
}

type IEventBus interface {
	Subscribe(userID domain.UserID) IReceiver
	// Publish never blocks and reports whether a live receiver could see the envelope.
	Publish(userID domain.UserID, envelope event.Envelope) bool
	// Revoke closes the user's channel, ending every receiver on it.
	Revoke(userID domain.UserID)
	Stats() BusStats
}

type BusStats struct {
	Channels  int    `json:"channels"`
	Receivers int    `json:"receivers"`
	Capacity  int    `json:"capacity"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Lagged    uint64 `json:"lagged"`
}

type IRoomFanout interface {
	OnMessageCreated(ctx context.Context, message domain.Message) error
	OnRoomCreated(room domain.Room, creator domain.UserID)
	OnInviteAccepted(ctx context.Context, room domain.Room, invitee domain.UserID) error
}
