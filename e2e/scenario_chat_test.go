package e2e

import (
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ChatScenarioSuite struct {
	BaseSuite
}

func TestChatScenario(t *testing.T) {
	suite.Run(t, new(ChatScenarioSuite))
}

func (s *ChatScenarioSuite) TestInviteReplaysHistory() {
	ctx := context.Background()
	req := s.Require()
	suffix := time.Now().UnixNano()
	alice := fmt.Sprintf("alice-%d", suffix)
	bob := fmt.Sprintf("bob-%d", suffix)

	s.Step("Register alice and bob")
	a, err := s.API.Register(ctx, alice, "password123")
	req.NoError(err)
	b, err := s.API.Register(ctx, bob, "password123")
	req.NoError(err)
	aliceEvents := s.Subscribe(a.UserID, a.StreamToken)

	s.Step("Alice creates a room and posts")
	room, err := s.API.CreateRoom(ctx, a.UserID, a.Token, "General")
	req.NoError(err)
	created, ok := s.Next(aliceEvents).(event.RoomCreated)
	req.True(ok)
	req.Equal("General", created.Room.Name)

	message, err := s.API.PostMessage(ctx, a.UserID, room.Token, room.ID, "hi")
	req.NoError(err)
	posted, ok := s.Next(aliceEvents).(event.MessageCreated)
	req.True(ok)
	req.Equal("hi", posted.Message.Text)

	s.Step("Alice invites bob, bob connects")
	_, err = s.API.Invite(ctx, a.UserID, message.Token, room.ID, bob)
	req.NoError(err)
	bobEvents := s.Subscribe(b.UserID, b.StreamToken)
	replayed, ok := s.Next(bobEvents).(event.RoomCreated)
	req.True(ok)
	req.Equal(created.Room, replayed.Room)
	history, ok := s.Next(bobEvents).(event.MessageCreated)
	req.True(ok)
	req.Equal("hi", history.Message.Text)

	s.Step("Bob answers, alice receives it live")
	_, err = s.API.PostMessage(ctx, b.UserID, b.Token, room.ID, "hello")
	req.NoError(err)
	answer, ok := s.Next(aliceEvents).(event.MessageCreated)
	req.True(ok)
	req.Equal("hello", answer.Message.Text)

	s.Step("The consumed token is refused")
	_, err = s.API.CreateRoom(ctx, a.UserID, a.Token, "Again")
	req.Error(err)
}
