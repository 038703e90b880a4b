package auth

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenBytes = 32

// NewToken returns a fresh high-entropy rotating token, URL safe.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokensEqual compares two tokens in constant time. An empty stored token never matches.
func TokensEqual(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// StreamClaims binds a stream credential to one login session.
type StreamClaims struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// StreamSigner issues and parses the stable credential authorizing the event stream.
// It is independent from the rotating mutation token: mutations never invalidate it,
// only revoking the session does.
type StreamSigner struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewStreamSigner(secret string, duration time.Duration) *StreamSigner {
	return &StreamSigner{secret: []byte(secret), duration: duration, now: time.Now}
}

func (s *StreamSigner) Issue(userID domain.UserID, sessionID string) (string, error) {
	now := s.now()
	claims := &StreamClaims{
		UserID:    int64(userID),
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-rooms",
			Subject:   userID.String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return signed, nil
}

// Parse validates signature and expiry and returns the embedded claims.
func (s *StreamSigner) Parse(token string) (*StreamClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &StreamClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.ErrInvalidStreamToken
	}
	claims, ok := parsed.Claims.(*StreamClaims)
	if !ok || !parsed.Valid {
		return nil, errors.ErrInvalidStreamToken
	}
	return claims, nil
}
