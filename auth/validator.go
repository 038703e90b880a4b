package auth

import (
	"chat-rooms/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type CredentialsRequest struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,min=8,max=72"`
}

// SessionRequest is embedded by every mutating request.
type SessionRequest struct {
	UserID int64  `validate:"required,gt=0"`
	Token  string `validate:"required"`
}

type CreateRoomRequest struct {
	SessionRequest
	Name string `validate:"required,max=128"`
}

type PostMessageRequest struct {
	SessionRequest
	RoomID int64  `validate:"required,gt=0"`
	Text   string `validate:"required,max=4096"`
}

type InviteRequest struct {
	SessionRequest
	RoomID   int64  `validate:"required,gt=0"`
	Username string `validate:"required,max=64"`
}

// Validate checks a request struct against its tags.
// Failures wrap ErrInvalidRequest so they surface as a domain error.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
