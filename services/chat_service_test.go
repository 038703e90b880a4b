package services_test

import (
	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/mocks"
	"chat-rooms/moderation"
	"chat-rooms/repositories"
	"chat-rooms/services"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type chatFixture struct {
	svc      services.IChatService
	auth     *mocks.MockIAuthService
	users    *mocks.MockIUserRepository
	rooms    *mocks.MockIRoomRepository
	messages *mocks.MockIMessageRepository
	fanout   *mocks.MockIRoomFanout
}

func newChatFixture(t *testing.T) chatFixture {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	f := chatFixture{
		auth:     mocks.NewMockIAuthService(ctrl),
		users:    mocks.NewMockIUserRepository(ctrl),
		rooms:    mocks.NewMockIRoomRepository(ctrl),
		messages: mocks.NewMockIMessageRepository(ctrl),
		fanout:   mocks.NewMockIRoomFanout(ctrl),
	}
	censor, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)
	store := repositories.NewStore(f.users, f.rooms, f.messages)
	f.svc = services.NewChatService(log, f.auth, store, f.fanout, censor)
	return f
}

func session(userID int64, token string) auth.SessionRequest {
	return auth.SessionRequest{UserID: userID, Token: token}
}

func TestChatService_CreateRoom(t *testing.T) {
	t.Run("should create the room and notify the creator", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		room := domain.Room{ID: 1, Name: "General"}

		gomock.InOrder(
			f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil),
			f.rooms.EXPECT().CreateRoom(gomock.Any(), "General", domain.UserID(1)).Return(room, nil),
			f.fanout.EXPECT().OnRoomCreated(room, domain.UserID(1)),
		)

		created, token, err := f.svc.CreateRoom(context.Background(), auth.CreateRoomRequest{
			SessionRequest: session(1, "t1"), Name: "General",
		})
		req.NoError(err)
		req.Equal(room, created)
		req.Equal("t2", token)
	})

	t.Run("should stop at authentication", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "stale").Return("", errors.ErrTokenMismatch)

		_, token, err := f.svc.CreateRoom(context.Background(), auth.CreateRoomRequest{
			SessionRequest: session(1, "stale"), Name: "General",
		})
		req.ErrorIs(err, errors.ErrTokenMismatch)
		req.Empty(token)
	})

	t.Run("should keep the rotated token on an invalid request", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil)

		_, token, err := f.svc.CreateRoom(context.Background(), auth.CreateRoomRequest{
			SessionRequest: session(1, "t1"),
		})
		req.ErrorIs(err, errors.ErrInvalidRequest)
		req.Equal("t2", token)
	})
}

func TestChatService_PostMessage(t *testing.T) {
	t.Run("should censor, store then fan out", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		room := domain.Room{ID: 1, Name: "General"}

		var stored domain.Message
		gomock.InOrder(
			f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil),
			f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(room, nil),
			f.rooms.EXPECT().IsMember(gomock.Any(), domain.RoomID(1), domain.UserID(1)).Return(true, nil),
			f.messages.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, m domain.Message) error {
					stored = m
					return nil
				}),
			f.fanout.EXPECT().OnMessageCreated(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, m domain.Message) error {
					req.Equal(stored, m)
					return nil
				}),
		)

		message, token, err := f.svc.PostMessage(context.Background(), auth.PostMessageRequest{
			SessionRequest: session(1, "t1"), RoomID: 1, Text: "the badger is here",
		})
		req.NoError(err)
		req.Equal("t2", token)
		req.Equal("the ****** is here", message.Text)
		req.Equal(stored, message)
		req.False(message.Date.IsZero())
	})

	t.Run("should refuse a non member", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(2), "t1").Return("t2", nil)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(domain.Room{ID: 1}, nil)
		f.rooms.EXPECT().IsMember(gomock.Any(), domain.RoomID(1), domain.UserID(2)).Return(false, nil)

		_, token, err := f.svc.PostMessage(context.Background(), auth.PostMessageRequest{
			SessionRequest: session(2, "t1"), RoomID: 1, Text: "hi",
		})
		req.ErrorIs(err, errors.ErrNotAMember)
		req.Equal("t2", token)
	})

	t.Run("should refuse an unknown room", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(9)).Return(domain.Room{}, errors.ErrRoomNotFound)

		_, _, err := f.svc.PostMessage(context.Background(), auth.PostMessageRequest{
			SessionRequest: session(1, "t1"), RoomID: 9, Text: "hi",
		})
		req.ErrorIs(err, errors.ErrRoomNotFound)
	})

	t.Run("should succeed when only the fan-out fails", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(domain.Room{ID: 1}, nil)
		f.rooms.EXPECT().IsMember(gomock.Any(), domain.RoomID(1), domain.UserID(1)).Return(true, nil)
		f.messages.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).Return(nil)
		f.fanout.EXPECT().OnMessageCreated(gomock.Any(), gomock.Any()).Return(fmt.Errorf("members lookup"))

		_, token, err := f.svc.PostMessage(context.Background(), auth.PostMessageRequest{
			SessionRequest: session(1, "t1"), RoomID: 1, Text: "hi",
		})
		req.NoError(err)
		req.Equal("t2", token)
	})

	t.Run("should give strictly increasing dates under concurrency", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		const posts = 50
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), gomock.Any()).Return("next", nil).Times(posts)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(domain.Room{ID: 1}, nil).Times(posts)
		f.rooms.EXPECT().IsMember(gomock.Any(), domain.RoomID(1), domain.UserID(1)).Return(true, nil).Times(posts)

		var mu sync.Mutex
		var storeOrder, publishOrder []domain.Message
		f.messages.EXPECT().StoreMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m domain.Message) error {
				mu.Lock()
				storeOrder = append(storeOrder, m)
				mu.Unlock()
				return nil
			}).Times(posts)
		f.fanout.EXPECT().OnMessageCreated(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m domain.Message) error {
				mu.Lock()
				publishOrder = append(publishOrder, m)
				mu.Unlock()
				return nil
			}).Times(posts)

		var wg sync.WaitGroup
		for i := 0; i < posts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := f.svc.PostMessage(context.Background(), auth.PostMessageRequest{
					SessionRequest: session(1, fmt.Sprint("t", i)), RoomID: 1, Text: fmt.Sprint(i),
				})
				req.NoError(err)
			}(i)
		}
		wg.Wait()

		req.Equal(storeOrder, publishOrder)
		for i := 1; i < len(storeOrder); i++ {
			req.True(storeOrder[i-1].Date.Before(storeOrder[i].Date))
		}
	})
}

func TestChatService_Invite(t *testing.T) {
	room := domain.Room{ID: 1, Name: "General"}
	request := auth.InviteRequest{SessionRequest: session(1, "t1"), RoomID: 1, Username: "bob"}

	t.Run("should add the member and catch its stream up", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		gomock.InOrder(
			f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil),
			f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(room, nil),
			f.users.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(domain.User{ID: 2, Username: "bob"}, nil),
			f.rooms.EXPECT().AddMember(gomock.Any(), domain.RoomID(1), domain.UserID(1), domain.UserID(2)).Return(nil),
			f.fanout.EXPECT().OnInviteAccepted(gomock.Any(), room, domain.UserID(2)).Return(nil),
		)

		invited, token, err := f.svc.Invite(context.Background(), request)
		req.NoError(err)
		req.Equal(room, invited)
		req.Equal("t2", token)
	})

	t.Run("should report an unknown invitee as a domain error", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(room, nil)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(domain.User{}, errors.ErrUserNotFound)

		_, token, err := f.svc.Invite(context.Background(), request)
		req.ErrorIs(err, errors.ErrInviteeNotFound)
		req.True(errors.IsDomain(err))
		req.False(errors.IsAuth(err))
		req.Equal("t2", token)
	})

	t.Run("should reject a second invite", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t)
		f.auth.EXPECT().ValidateAndRotate(gomock.Any(), domain.UserID(1), "t1").Return("t2", nil)
		f.rooms.EXPECT().GetRoom(gomock.Any(), domain.RoomID(1)).Return(room, nil)
		f.users.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(domain.User{ID: 2}, nil)
		f.rooms.EXPECT().AddMember(gomock.Any(), domain.RoomID(1), domain.UserID(1), domain.UserID(2)).Return(errors.ErrAlreadyMember)

		_, _, err := f.svc.Invite(context.Background(), request)
		req.ErrorIs(err, errors.ErrAlreadyMember)
	})
}
