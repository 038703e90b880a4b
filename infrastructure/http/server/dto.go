package server

import (
	"chat-rooms/domain"
	"chat-rooms/services"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionRequest struct {
	UserID int64  `json:"userId"`
	Token  string `json:"token"`
}

type createRoomRequest struct {
	sessionRequest
	Name string `json:"name"`
}

type postMessageRequest struct {
	sessionRequest
	RoomID int64  `json:"roomId"`
	Text   string `json:"text"`
}

type inviteRequest struct {
	sessionRequest
	RoomID   int64  `json:"roomId"`
	Username string `json:"username"`
}

type sessionResponse struct {
	UserID      int64  `json:"userId"`
	Token       string `json:"token"`
	StreamToken string `json:"streamToken"`
}

type userResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type roomResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type messageResponse struct {
	Date   int64  `json:"date"`
	RoomID int64  `json:"roomId"`
	UserID int64  `json:"userId"`
	Text   string `json:"text"`
	Token  string `json:"token"`
}

type logoutResponse struct {
	UserID int64 `json:"userId"`
}

// errorResponse carries the rotated token when the presented one was consumed.
type errorResponse struct {
	Reason string `json:"reason"`
	Token  string `json:"token,omitempty"`
}

func toSessionResponse(s services.Session) sessionResponse {
	return sessionResponse{UserID: int64(s.UserID), Token: s.Token, StreamToken: s.StreamToken}
}

func toRoomResponse(room domain.Room, token string) roomResponse {
	return roomResponse{ID: int64(room.ID), Name: room.Name, Token: token}
}

func toMessageResponse(m domain.Message, token string) messageResponse {
	return messageResponse{
		Date:   m.Date.UnixMilli(),
		RoomID: int64(m.RoomID),
		UserID: int64(m.UserID),
		Text:   m.Text,
		Token:  token,
	}
}
