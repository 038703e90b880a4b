package server

import (
	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	session, err := s.auth.Register(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	session, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusAccepted, toSessionResponse(session))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	user, err := s.auth.GetUser(r.Context(), userID)
	if errors.Is(err, errors.ErrUserNotFound) {
		// A lookup is not an authentication, an unknown id is a bad request.
		err = fmt.Errorf("%w: unknown user %d", errors.ErrInvalidRequest, userID)
	}
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: int64(user.ID), Username: user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body sessionRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	if err := s.auth.Logout(r.Context(), domain.UserID(body.UserID), body.Token); err != nil {
		s.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, logoutResponse{UserID: body.UserID})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	room, token, err := s.chat.CreateRoom(r.Context(), auth.CreateRoomRequest{
		SessionRequest: toSession(body.sessionRequest),
		Name:           body.Name,
	})
	if err != nil {
		s.writeError(w, err, token)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room, token))
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var body postMessageRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	message, token, err := s.chat.PostMessage(r.Context(), auth.PostMessageRequest{
		SessionRequest: toSession(body.sessionRequest),
		RoomID:         body.RoomID,
		Text:           body.Text,
	})
	if err != nil {
		s.writeError(w, err, token)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(message, token))
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var body inviteRequest
	if err := decode(w, r, &body); err != nil {
		s.writeError(w, err, "")
		return
	}
	room, token, err := s.chat.Invite(r.Context(), auth.InviteRequest{
		SessionRequest: toSession(body.sessionRequest),
		RoomID:         body.RoomID,
		Username:       body.Username,
	})
	if err != nil {
		s.writeError(w, err, token)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room, token))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats serves the last sampled snapshot with live bus counters.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.monitor.GetLatest()
	snapshot.Bus = s.bus.Stats()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) writeError(w http.ResponseWriter, err error, token string) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	} else {
		s.log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Reason: errors.Reason(err), Token: token})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func pathUserID(r *http.Request) (domain.UserID, error) {
	id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad user id %q", errors.ErrInvalidRequest, r.PathValue("userId"))
	}
	return domain.UserID(id), nil
}

func toSession(s sessionRequest) auth.SessionRequest {
	return auth.SessionRequest{UserID: s.UserID, Token: s.Token}
}
