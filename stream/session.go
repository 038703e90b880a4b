// Package stream serves one live connection: it authenticates the caller,
// replays every visible room and message, then tails the user's bus channel.
package stream

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/repositories"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

type State int32

const (
	Authenticating State = iota
	BacklogReplay
	Live
	Closed
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case BacklogReplay:
		return "backlog_replay"
	case Live:
		return "live"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Emitter writes one envelope to the client. An error means the client is gone.
type Emitter interface {
	Emit(envelope event.Envelope) error
}

// Authenticator checks stream credentials without rotating them.
type Authenticator interface {
	// CheckStream returns the session the credential belongs to.
	CheckStream(ctx context.Context, userID domain.UserID, credential string) (string, error)
	RevokeSession(ctx context.Context, userID domain.UserID, sessionID string) error
}

type Server struct {
	log      *slog.Logger
	auth     Authenticator
	bus      contract.IEventBus
	rooms    repositories.IRoomRepository
	messages repositories.IMessageRepository
}

func NewServer(
	log *slog.Logger,
	auth Authenticator,
	bus contract.IEventBus,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
) *Server {
	return &Server{log: log, auth: auth, bus: bus, rooms: rooms, messages: messages}
}

// Session is one open stream. It is driven by a single goroutine.
type Session struct {
	server    *Server
	log       *slog.Logger
	userID    domain.UserID
	sessionID string
	receiver  contract.IReceiver
	state     atomic.Int32

	seenRooms map[domain.RoomID]struct{}
	highWater map[domain.RoomID]time.Time
}

// Open authenticates the caller. On failure the session never exists and the
// caller answers unauthorized. On success the receiver is already subscribed,
// so nothing published from now on can fall between backlog and live tail.
func (s *Server) Open(ctx context.Context, userID domain.UserID, credential string) (*Session, error) {
	sessionID, err := s.auth.CheckStream(ctx, userID, credential)
	if err != nil {
		s.log.Debug("Stream rejected", "user_id", userID, "error", err)
		return nil, err
	}
	session := &Session{
		server:    s,
		log:       s.log.With("user_id", userID),
		userID:    userID,
		sessionID: sessionID,
		receiver:  s.bus.Subscribe(userID),
		seenRooms: make(map[domain.RoomID]struct{}),
		highWater: make(map[domain.RoomID]time.Time),
	}
	session.setState(BacklogReplay)
	return session, nil
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Run replays the backlog and then forwards live envelopes until ctx ends,
// the client goes away or the channel is closed. It always releases the receiver.
func (s *Session) Run(ctx context.Context, emitter Emitter) error {
	defer s.close()

	if err := s.replay(ctx, emitter); err != nil {
		return err
	}
	s.setState(Live)
	s.log.Debug("Stream live")

	for {
		envelope, err := s.receiver.Recv(ctx)
		switch {
		case err == nil:
			if !s.admit(envelope) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if err = emitter.Emit(envelope); err != nil {
				return fmt.Errorf("emit live envelope: %w", err)
			}
		case errors.Is(err, errors.ErrLagged):
			s.log.Warn("Stream lagged, skipping", "error", err)
		case errors.Is(err, errors.ErrChannelClosed):
			s.log.Warn("Bus channel closed, revoking session")
			if revokeErr := s.server.auth.RevokeSession(context.WithoutCancel(ctx), s.userID, s.sessionID); revokeErr != nil {
				s.log.Error("Failed to revoke session", "error", revokeErr)
			}
			return err
		case ctx.Err() != nil:
			// Shutdown or client gone: stop without writing anything else.
			return nil
		default:
			return err
		}
	}
}

// replay emits every visible room by id, then every message of those rooms by date.
func (s *Session) replay(ctx context.Context, emitter Emitter) error {
	rooms, err := s.server.rooms.ListRoomsForUser(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	slices.SortFunc(rooms, func(a, b domain.Room) int {
		return cmp.Compare(a.ID, b.ID)
	})

	histories := make([][]domain.Message, 0, len(rooms))
	for _, room := range rooms {
		history, err := s.server.messages.GetMessages(ctx, room.ID)
		if err != nil {
			return fmt.Errorf("history of room %d: %w", room.ID, err)
		}
		histories = append(histories, history)
	}
	messages := lo.Flatten(histories)
	slices.SortStableFunc(messages, func(a, b domain.Message) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	backlog := make([]event.Envelope, 0, len(rooms)+len(messages))
	for _, room := range rooms {
		backlog = append(backlog, event.RoomCreated{Room: room})
	}
	for _, message := range messages {
		backlog = append(backlog, event.MessageCreated{Message: message})
	}
	for _, envelope := range backlog {
		if ctx.Err() != nil {
			return nil
		}
		s.admit(envelope)
		if err = emitter.Emit(envelope); err != nil {
			return fmt.Errorf("emit backlog: %w", err)
		}
	}
	s.log.Debug("Backlog replayed", "rooms", len(rooms), "messages", len(messages))
	return nil
}

// admit reports whether an envelope is new to this stream and records it.
// Message dates are strictly increasing within a room, so anything at or
// below the room's high-water mark was already sent.
func (s *Session) admit(envelope event.Envelope) bool {
	return event.Match(envelope,
		func(r event.RoomCreated) bool {
			if _, ok := s.seenRooms[r.Room.ID]; ok {
				return false
			}
			s.seenRooms[r.Room.ID] = struct{}{}
			return true
		},
		func(m event.MessageCreated) bool {
			mark, ok := s.highWater[m.Message.RoomID]
			if ok && !mark.Before(m.Message.Date) {
				return false
			}
			s.highWater[m.Message.RoomID] = m.Message.Date
			return true
		},
	)
}

func (s *Session) close() {
	s.receiver.Close()
	s.setState(Closed)
	s.log.Debug("Stream closed")
}
