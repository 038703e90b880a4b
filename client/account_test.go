package client

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeChat answers like the chat server for a single user.
type fakeChat struct {
	mu           sync.Mutex
	streamToken  string
	streamTokens []string
	lastToken    string
}

func (f *fakeChat) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusAccepted, Session{UserID: 1, Token: "t1", StreamToken: f.streamToken})
	})
	mux.HandleFunc("POST /room", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
			Name  string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastToken = body.Token
		f.mu.Unlock()
		if body.Name == "" {
			reply(w, http.StatusBadRequest, APIError{Reason: "invalid request", Token: "t3"})
			return
		}
		reply(w, http.StatusCreated, Room{ID: 1, Name: body.Name, Token: "t2"})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusOK, map[string]int64{"userId": 1})
	})
	mux.HandleFunc("GET /events/{userId}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.streamTokens = append(f.streamTokens, r.URL.Query().Get("token"))
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		data, _ := event.Encode(event.RoomCreated{Room: domain.Room{ID: 1, Name: "General"}})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
		http.NewResponseController(w).Flush()
		<-r.Context().Done()
	})
	return mux
}

func (f *fakeChat) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.streamTokens...)
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newAccount(t *testing.T, fake *fakeChat) (*Account, <-chan event.Envelope) {
	t.Helper()
	srv := httptest.NewServer(fake.routes())
	events := make(chan event.Envelope, 16)
	account := NewAccount(logs.GetLoggerFromLevel(slog.LevelDebug), NewAPI(srv.URL, nil), immediatePolicy(),
		func(e event.Envelope) { events <- e })
	t.Cleanup(srv.Close)
	t.Cleanup(account.Close)
	return account, events
}

func TestAccount_Login_Opens_Stream(t *testing.T) {
	req := require.New(t)
	fake := &fakeChat{streamToken: "stream"}
	account, events := newAccount(t, fake)

	session, err := account.Login(context.Background(), "alice", "password123")
	req.NoError(err)
	req.Equal(int64(1), session.UserID)

	select {
	case e := <-events:
		req.Equal(event.RoomCreated{Room: domain.Room{ID: 1, Name: "General"}}, e)
	case <-time.After(waitFor):
		t.Fatal("no event")
	}
	req.Equal([]string{"stream"}, fake.tokens())
	req.Eventually(func() bool { return account.StreamState() == Connected }, waitFor, 5*time.Millisecond)
}

func TestAccount_Adopts_Rotated_Tokens(t *testing.T) {
	req := require.New(t)
	fake := &fakeChat{}
	account, _ := newAccount(t, fake)
	_, err := account.Login(context.Background(), "alice", "password123")
	req.NoError(err)

	// When a mutation succeeds, then one fails with a rotated token
	room, err := account.CreateRoom(context.Background(), "General")
	req.NoError(err)
	req.Equal("t2", room.Token)
	_, err = account.CreateRoom(context.Background(), "")
	var apiErr *APIError
	req.ErrorAs(err, &apiErr)
	req.Equal(http.StatusBadRequest, apiErr.Status)

	// Then the account presents the latest token every time
	session, ok := account.Session()
	req.True(ok)
	req.Equal("t3", session.Token)
	_, _ = account.CreateRoom(context.Background(), "Again")
	fake.mu.Lock()
	req.Equal("t3", fake.lastToken)
	fake.mu.Unlock()

	// And without a stream token the controller follows the rotation
	req.Equal("t2", func() string {
		account.controller.mu.Lock()
		defer account.controller.mu.Unlock()
		return account.controller.token
	}())
}

func TestAccount_Logout(t *testing.T) {
	req := require.New(t)
	account, _ := newAccount(t, &fakeChat{streamToken: "stream"})
	_, err := account.Login(context.Background(), "alice", "password123")
	req.NoError(err)

	req.NoError(account.Logout(context.Background()))

	_, ok := account.Session()
	req.False(ok)
	req.Equal(Idle, account.StreamState())
	_, err = account.CreateRoom(context.Background(), "General")
	req.ErrorIs(err, ErrLoggedOut)
}

func TestAPI_Stream_Unauthorized(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reply(w, http.StatusUnauthorized, APIError{Reason: "bad user id or token"})
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, nil).OpenStream(context.Background(), 1, "nope")

	var apiErr *APIError
	req.ErrorAs(err, &apiErr)
	req.True(apiErr.Unauthorized())
	req.Equal("bad user id or token", apiErr.Reason)
}
