//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-rooms/auth"
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// IAuthService is the session authenticator. The rotating token secures
// mutations, the stream token only authorizes the event stream.
type IAuthService interface {
	Register(ctx context.Context, username, password string) (Session, error)
	Login(ctx context.Context, username, password string) (Session, error)
	ValidateAndRotate(ctx context.Context, userID domain.UserID, token string) (string, error)
	CheckStream(ctx context.Context, userID domain.UserID, credential string) (string, error)
	Logout(ctx context.Context, userID domain.UserID, token string) error
	Revoke(ctx context.Context, userID domain.UserID) error
	RevokeSession(ctx context.Context, userID domain.UserID, sessionID string) error
	GetUser(ctx context.Context, userID domain.UserID) (domain.User, error)
}

// Session is what a client receives after registering or logging in.
type Session struct {
	UserID      domain.UserID
	Token       string
	StreamToken string
}

type AuthService struct {
	log    *slog.Logger
	users  repositories.IUserRepository
	bus    contract.IEventBus
	signer *auth.StreamSigner
}

func NewAuthService(
	log *slog.Logger,
	users repositories.IUserRepository,
	bus contract.IEventBus,
	signer *auth.StreamSigner,
) IAuthService {
	return &AuthService{log: log, users: users, bus: bus, signer: signer}
}

// Register creates the user and opens its first session.
func (s *AuthService) Register(ctx context.Context, username, password string) (Session, error) {
	// 1. Validate before any expensive cryptographic operation.
	if err := auth.Validate(auth.CredentialsRequest{Username: username, Password: password}); err != nil {
		return Session{}, err
	}

	// 2. Hash in the service layer, the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, errors.Internal(fmt.Errorf("hashing failed: %w", err))
	}

	// 3. Persist, ErrUsernameTaken propagates as is.
	user, err := s.users.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("User registered", "user_id", user.ID)

	// 4. Open the session
	return s.openSession(ctx, user)
}

// Login verifies the password and replaces any previous session.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, errors.ErrUserNotFound) {
		// Same answer as a wrong password to prevent user enumeration
		return Session{}, errors.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	previous := user.SessionID
	session, err := s.openSession(ctx, user)
	if err != nil {
		return Session{}, err
	}
	if previous != "" {
		// Streams of the replaced session end. Their revocation targets the
		// old session id, so it cannot undo this login.
		s.bus.Revoke(user.ID)
	}
	s.log.Info("User logged in", "user_id", user.ID)
	return session, nil
}

func (s *AuthService) openSession(ctx context.Context, user domain.User) (Session, error) {
	token, err := auth.NewToken()
	if err != nil {
		return Session{}, err
	}
	sessionID := uuid.NewString()
	streamToken, err := s.signer.Issue(user.ID, sessionID)
	if err != nil {
		return Session{}, err
	}
	if err = s.users.SetSession(ctx, user.ID, token, sessionID); err != nil {
		return Session{}, err
	}
	return Session{UserID: user.ID, Token: token, StreamToken: streamToken}, nil
}

// ValidateAndRotate consumes the presented token and returns its successor.
// The swap is a compare-and-swap, of two requests racing with the same token
// only one gets a new token.
func (s *AuthService) ValidateAndRotate(ctx context.Context, userID domain.UserID, token string) (string, error) {
	if token == "" {
		return "", errors.ErrTokenMismatch
	}
	next, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	if err = s.users.SwapToken(ctx, userID, token, next); err != nil {
		if errors.IsAuth(err) {
			s.log.Debug("Token rejected", "user_id", userID, "error", err)
		}
		return "", err
	}
	return next, nil
}

// CheckStream accepts either the stream token of the current session or the
// current rotating token, and never rotates anything.
func (s *AuthService) CheckStream(ctx context.Context, userID domain.UserID, credential string) (string, error) {
	if credential == "" {
		return "", errors.ErrTokenMismatch
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.LoggedIn() {
		return "", errors.ErrEmptyToken
	}

	if isStreamToken(credential) {
		claims, err := s.signer.Parse(credential)
		if err != nil {
			return "", err
		}
		if domain.UserID(claims.UserID) != userID || claims.SessionID != user.SessionID {
			return "", errors.ErrInvalidStreamToken
		}
		return user.SessionID, nil
	}

	if !auth.TokensEqual(user.Token, credential) {
		return "", errors.ErrTokenMismatch
	}
	return user.SessionID, nil
}

// isStreamToken tells a JWT (three dot separated parts) from a rotating token.
func isStreamToken(credential string) bool {
	return strings.Count(credential, ".") == 2
}

// Logout swaps the token for the empty one, which ends the session and
// invalidates its stream token, then closes the user's streams.
func (s *AuthService) Logout(ctx context.Context, userID domain.UserID, token string) error {
	if token == "" {
		return errors.ErrTokenMismatch
	}
	if err := s.users.SwapToken(ctx, userID, token, ""); err != nil {
		return err
	}
	s.bus.Revoke(userID)
	s.log.Info("User logged out", "user_id", userID)
	return nil
}

// Revoke logs the user out whatever its session.
func (s *AuthService) Revoke(ctx context.Context, userID domain.UserID) error {
	if err := s.users.SetSession(ctx, userID, "", ""); err != nil {
		return err
	}
	s.bus.Revoke(userID)
	return nil
}

// RevokeSession logs the user out only if sessionID is still current.
func (s *AuthService) RevokeSession(ctx context.Context, userID domain.UserID, sessionID string) error {
	revoked, err := s.users.RevokeSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if revoked {
		s.bus.Revoke(userID)
		s.log.Warn("Session revoked", "user_id", userID)
	}
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID domain.UserID) (domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
