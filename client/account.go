package client

import (
	"chat-rooms/domain/event"
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrLoggedOut = errors.New("not logged in")

// Account holds the local session of one user and keeps its stream open.
// Every mutation adopts the rotated token it gets back, error answers included.
type Account struct {
	log        *slog.Logger
	api        *API
	controller *ReconnectController

	mu      sync.Mutex
	session *Session
}

func NewAccount(log *slog.Logger, api *API, policy RetryPolicy, onEvent func(event.Envelope)) *Account {
	a := &Account{log: log, api: api}
	a.controller = NewReconnectController(log, api, policy, onEvent, a.drop)
	return a
}

func (a *Account) Register(ctx context.Context, username, password string) (Session, error) {
	session, err := a.api.Register(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	a.open(ctx, session)
	return session, nil
}

func (a *Account) Login(ctx context.Context, username, password string) (Session, error) {
	session, err := a.api.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	a.open(ctx, session)
	return session, nil
}

// Logout stops the stream first so its end is not taken for a failure.
func (a *Account) Logout(ctx context.Context) error {
	session, err := a.current()
	if err != nil {
		return err
	}
	a.controller.Stop()
	a.drop()
	return a.api.Logout(ctx, session.UserID, session.Token)
}

func (a *Account) CreateRoom(ctx context.Context, name string) (Room, error) {
	session, err := a.current()
	if err != nil {
		return Room{}, err
	}
	room, err := a.api.CreateRoom(ctx, session.UserID, session.Token, name)
	a.adopt(room.Token, err)
	return room, err
}

func (a *Account) PostMessage(ctx context.Context, roomID int64, text string) (Message, error) {
	session, err := a.current()
	if err != nil {
		return Message{}, err
	}
	message, err := a.api.PostMessage(ctx, session.UserID, session.Token, roomID, text)
	a.adopt(message.Token, err)
	return message, err
}

func (a *Account) Invite(ctx context.Context, roomID int64, username string) (Room, error) {
	session, err := a.current()
	if err != nil {
		return Room{}, err
	}
	room, err := a.api.Invite(ctx, session.UserID, session.Token, roomID, username)
	a.adopt(room.Token, err)
	return room, err
}

func (a *Account) Session() (Session, bool) {
	session, err := a.current()
	return session, err == nil
}

func (a *Account) StreamState() State {
	return a.controller.State()
}

// Close stops the stream without logging out.
func (a *Account) Close() {
	a.controller.Stop()
}

func (a *Account) open(ctx context.Context, session Session) {
	a.mu.Lock()
	a.session = &session
	a.mu.Unlock()
	a.controller.Start(ctx, session.UserID, streamCredential(session))
}

// streamCredential prefers the stable stream token. Without one the
// rotating token is used and kept current through SetToken.
func streamCredential(session Session) string {
	if session.StreamToken != "" {
		return session.StreamToken
	}
	return session.Token
}

func (a *Account) adopt(token string, err error) {
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) {
		token = apiErr.Token
	}
	if token == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.Token = token
	if a.session.StreamToken == "" {
		a.controller.SetToken(token)
	}
}

func (a *Account) current() (Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return Session{}, ErrLoggedOut
	}
	return *a.session, nil
}

// drop forgets the local session, the server side is left as is.
func (a *Account) drop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.log.Info("Local session dropped", "user_id", a.session.UserID)
	}
	a.session = nil
}
