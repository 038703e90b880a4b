package server

import (
	"bufio"
	"bytes"
	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/moderation"
	"chat-rooms/observability"
	"chat-rooms/repositories"
	"chat-rooms/runtime"
	"chat-rooms/services"
	"chat-rooms/stream"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const eventTimeout = 3 * time.Second

type testServer struct {
	url string
	bus *runtime.Bus
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	store, err := repositories.NewBadgerStore(db, log)
	req.NoError(err)

	bus := runtime.NewBus(log, 16)
	censor, err := moderation.NewModerator(nil, '*', log)
	req.NoError(err)
	authService := services.NewAuthService(log, store.Users, bus, auth.NewStreamSigner("test-secret", time.Hour))
	fanout := runtime.NewRoomFanout(log, bus, store.Rooms, store.Messages)
	chatService := services.NewChatService(log, authService, store, fanout, censor)
	streams := stream.NewServer(log, authService, bus, store.Rooms, store.Messages)

	shutdown, cancel := context.WithCancel(context.Background())
	handlers := NewServer(shutdown, log, authService, chatService, streams, bus, observability.NewMonitor())
	srv := httptest.NewServer(handlers.Routes())

	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})
	t.Cleanup(srv.Close)
	// Runs before srv.Close so open streams return first.
	t.Cleanup(cancel)
	return testServer{url: srv.URL, bus: bus}
}

func (s testServer) post(t *testing.T, path string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(s.url+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s testServer) register(t *testing.T, username string) sessionResponse {
	t.Helper()
	var session sessionResponse
	status := s.post(t, "/user", credentialsRequest{Username: username, Password: "password123"}, &session)
	require.Equal(t, http.StatusCreated, status)
	return session
}

// subscribe opens the event stream and decodes its frames in the background.
// The channel is closed when the server ends the stream.
func (s testServer) subscribe(t *testing.T, userID int64, token string) <-chan event.Envelope {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/events/%d?token=%s", s.url, userID, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	t.Cleanup(func() { _ = resp.Body.Close() })

	events := make(chan event.Envelope, 64)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			envelope, err := event.Decode([]byte(data))
			if err != nil {
				return
			}
			events <- envelope
		}
	}()
	return events
}

func nextEvent(t *testing.T, events <-chan event.Envelope) event.Envelope {
	t.Helper()
	select {
	case envelope, ok := <-events:
		require.True(t, ok, "stream ended")
		return envelope
	case <-time.After(eventTimeout):
		t.Fatal("no event received")
		return nil
	}
}

func requireRoom(t *testing.T, envelope event.Envelope, id int64, name string) {
	t.Helper()
	room, ok := envelope.(event.RoomCreated)
	require.True(t, ok, "expected a room, got %T", envelope)
	require.Equal(t, domain.Room{ID: domain.RoomID(id), Name: name}, room.Room)
}

func requireMessage(t *testing.T, envelope event.Envelope, roomID, userID int64, text string) {
	t.Helper()
	message, ok := envelope.(event.MessageCreated)
	require.True(t, ok, "expected a message, got %T", envelope)
	require.Equal(t, domain.RoomID(roomID), message.Message.RoomID)
	require.Equal(t, domain.UserID(userID), message.Message.UserID)
	require.Equal(t, text, message.Message.Text)
}

func TestServer_ChatScenario(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	// Given alice logged in with her stream open, and bob registered
	alice := srv.register(t, "alice")
	bob := srv.register(t, "bob")
	var login sessionResponse
	req.Equal(http.StatusAccepted, srv.post(t, "/login", credentialsRequest{Username: "alice", Password: "password123"}, &login))
	aliceEvents := srv.subscribe(t, login.UserID, login.StreamToken)

	// When alice creates "General"
	var room roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/room", createRoomRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: login.Token},
		Name:           "General",
	}, &room))

	// Then her own stream announces it
	req.Equal(int64(1), room.ID)
	requireRoom(t, nextEvent(t, aliceEvents), 1, "General")

	// When she posts "hi" with the rotated token
	var message messageResponse
	req.Equal(http.StatusCreated, srv.post(t, "/message", postMessageRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: room.Token},
		RoomID:         1,
		Text:           "hi",
	}, &message))
	requireMessage(t, nextEvent(t, aliceEvents), 1, alice.UserID, "hi")

	// And invites bob
	var invited roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/invite", inviteRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: message.Token},
		RoomID:         1,
		Username:       "bob",
	}, &invited))

	// Then bob's stream replays the room and its history
	bobEvents := srv.subscribe(t, bob.UserID, bob.StreamToken)
	requireRoom(t, nextEvent(t, bobEvents), 1, "General")
	requireMessage(t, nextEvent(t, bobEvents), 1, alice.UserID, "hi")

	// When bob answers
	req.Equal(http.StatusCreated, srv.post(t, "/message", postMessageRequest{
		sessionRequest: sessionRequest{UserID: bob.UserID, Token: bob.Token},
		RoomID:         1,
		Text:           "hello",
	}, nil))

	// Then both open streams receive it
	requireMessage(t, nextEvent(t, aliceEvents), 1, bob.UserID, "hello")
	requireMessage(t, nextEvent(t, bobEvents), 1, bob.UserID, "hello")
}

func TestServer_Token_Is_Single_Use(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")

	// Given a first successful mutation
	var room roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/room", createRoomRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: alice.Token},
		Name:           "General",
	}, &room))
	req.NotEqual(alice.Token, room.Token)

	// When the consumed token is presented again
	var failure errorResponse
	status := srv.post(t, "/room", createRoomRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: alice.Token},
		Name:           "Other",
	}, &failure)

	// Then it is unauthorized and no token is handed out
	req.Equal(http.StatusUnauthorized, status)
	req.Equal("bad user id or token", failure.Reason)
	req.Empty(failure.Token)
}

func TestServer_Invite_Twice(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")
	srv.register(t, "bob")

	var room roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/room", createRoomRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: alice.Token},
		Name:           "General",
	}, &room))
	var first roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/invite", inviteRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: room.Token},
		RoomID:         room.ID,
		Username:       "bob",
	}, &first))

	// When bob is invited again
	var failure errorResponse
	status := srv.post(t, "/invite", inviteRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: first.Token},
		RoomID:         room.ID,
		Username:       "bob",
	}, &failure)

	// Then it is a bad request that still carries the rotated token
	req.Equal(http.StatusBadRequest, status)
	req.Equal("user is already a member of this room", failure.Reason)
	req.NotEmpty(failure.Token)
	req.NotEqual(first.Token, failure.Token)
}

func TestServer_Users(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")

	var failure errorResponse
	req.Equal(http.StatusBadRequest, srv.post(t, "/user", credentialsRequest{Username: "alice", Password: "password123"}, &failure))
	req.Equal("username already taken", failure.Reason)

	resp, err := http.Get(fmt.Sprintf("%s/user/%d", srv.url, alice.UserID))
	req.NoError(err)
	defer resp.Body.Close()
	var user userResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&user))
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(userResponse{UserID: alice.UserID, Username: "alice"}, user)

	missing, err := http.Get(srv.url + "/user/42")
	req.NoError(err)
	defer missing.Body.Close()
	req.Equal(http.StatusBadRequest, missing.StatusCode)

	req.Equal(http.StatusUnauthorized, srv.post(t, "/login", credentialsRequest{Username: "alice", Password: "wrong-password"}, nil))
}

func TestServer_Stream_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")

	resp, err := http.Get(fmt.Sprintf("%s/events/%d?token=nope", srv.url, alice.UserID))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Stream_Accepts_Rotating_Token(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")

	// When the stream is opened with the rotating token instead of the stream token
	events := srv.subscribe(t, alice.UserID, alice.Token)
	var room roomResponse
	req.Equal(http.StatusCreated, srv.post(t, "/room", createRoomRequest{
		sessionRequest: sessionRequest{UserID: alice.UserID, Token: alice.Token},
		Name:           "General",
	}, &room))

	// Then the already open stream survives the rotation
	requireRoom(t, nextEvent(t, events), room.ID, "General")
}

func TestServer_Logout_Ends_Stream(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	alice := srv.register(t, "alice")
	events := srv.subscribe(t, alice.UserID, alice.StreamToken)
	req.Eventually(func() bool { return srv.bus.Stats().Receivers == 1 }, eventTimeout, 10*time.Millisecond)

	// When alice logs out
	var out logoutResponse
	req.Equal(http.StatusOK, srv.post(t, "/logout", sessionRequest{UserID: alice.UserID, Token: alice.Token}, &out))
	req.Equal(alice.UserID, out.UserID)

	// Then her stream is closed and the stream token no longer works
	select {
	case _, ok := <-events:
		req.False(ok)
	case <-time.After(eventTimeout):
		t.Fatal("stream still open")
	}
	resp, err := http.Get(fmt.Sprintf("%s/events/%d?token=%s", srv.url, alice.UserID, alice.StreamToken))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_Malformed_Body(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	resp, err := http.Post(srv.url+"/room", "application/json", strings.NewReader("{"))
	req.NoError(err)
	defer resp.Body.Close()
	var failure errorResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&failure))
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	req.Equal("invalid request", failure.Reason)
}

func TestServer_Health_And_Stats(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	health, err := http.Get(srv.url + "/healthz")
	req.NoError(err)
	defer health.Body.Close()
	req.Equal(http.StatusOK, health.StatusCode)

	stats, err := http.Get(srv.url + "/debug/stats")
	req.NoError(err)
	defer stats.Body.Close()
	var snapshot observability.Snapshot
	req.NoError(json.NewDecoder(stats.Body).Decode(&snapshot))
	req.Equal(http.StatusOK, stats.StatusCode)
	req.Equal(16, snapshot.Bus.Capacity)
}
