// Package client talks to the chat HTTP API and keeps a user's event stream
// open across failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Session is returned by registration and login.
type Session struct {
	UserID      int64  `json:"userId"`
	Token       string `json:"token"`
	StreamToken string `json:"streamToken"`
}

type User struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type Room struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type Message struct {
	Date   int64  `json:"date"`
	RoomID int64  `json:"roomId"`
	UserID int64  `json:"userId"`
	Text   string `json:"text"`
	Token  string `json:"token"`
}

// APIError is a non 2xx answer. Token is set when the server consumed the
// presented token anyway and issued a new one.
type APIError struct {
	Status int    `json:"-"`
	Reason string `json:"reason"`
	Token  string `json:"token"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api: %d %s", e.Status, e.Reason)
}

func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI targets baseURL, with or without scheme. A nil client uses a
// default one without timeout, streams are long-lived.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (a *API) Register(ctx context.Context, username, password string) (Session, error) {
	var session Session
	err := a.do(ctx, http.MethodPost, "/user", credentials{username, password}, &session)
	return session, err
}

func (a *API) Login(ctx context.Context, username, password string) (Session, error) {
	var session Session
	err := a.do(ctx, http.MethodPost, "/login", credentials{username, password}, &session)
	return session, err
}

func (a *API) Logout(ctx context.Context, userID int64, token string) error {
	return a.do(ctx, http.MethodPost, "/logout", auth{UserID: userID, Token: token}, nil)
}

func (a *API) GetUser(ctx context.Context, userID int64) (User, error) {
	var user User
	err := a.do(ctx, http.MethodGet, fmt.Sprintf("/user/%d", userID), nil, &user)
	return user, err
}

func (a *API) CreateRoom(ctx context.Context, userID int64, token, name string) (Room, error) {
	var room Room
	err := a.do(ctx, http.MethodPost, "/room", struct {
		auth
		Name string `json:"name"`
	}{auth{userID, token}, name}, &room)
	return room, err
}

func (a *API) PostMessage(ctx context.Context, userID int64, token string, roomID int64, text string) (Message, error) {
	var message Message
	err := a.do(ctx, http.MethodPost, "/message", struct {
		auth
		RoomID int64  `json:"roomId"`
		Text   string `json:"text"`
	}{auth{userID, token}, roomID, text}, &message)
	return message, err
}

func (a *API) Invite(ctx context.Context, userID int64, token string, roomID int64, username string) (Room, error) {
	var room Room
	err := a.do(ctx, http.MethodPost, "/invite", struct {
		auth
		RoomID   int64  `json:"roomId"`
		Username string `json:"username"`
	}{auth{userID, token}, roomID, username}, &room)
	return room, err
}

// OpenStream connects to the user's event stream. The stream lives until ctx
// ends, the server closes it or Close is called.
func (a *API) OpenStream(ctx context.Context, userID int64, token string) (Stream, error) {
	endpoint := fmt.Sprintf("%s/events/%d?token=%s", a.baseURL, userID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return NewEventSource(resp.Body), nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type auth struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
		apiErr.Reason = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
