package errors

import (
	"errors"
	"fmt"
)

// Authentication failures. They are all answered as unauthorized and never retried by the server.
var (
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrEmptyToken         = fmt.Errorf("user has no session")
	ErrTokenMismatch      = fmt.Errorf("token mismatch")
	ErrInvalidCredentials = fmt.Errorf("bad username or password")
	ErrInvalidStreamToken = fmt.Errorf("invalid stream token")
)

// Domain rule violations, fixable by the client.
var (
	ErrRoomNotFound    = fmt.Errorf("room not found")
	ErrAlreadyMember   = fmt.Errorf("user is already a member of this room")
	ErrNotAMember      = fmt.Errorf("user is not a member of this room")
	ErrInviteeNotFound = fmt.Errorf("invited user not found")
	ErrUsernameTaken   = fmt.Errorf("username already taken")
	ErrInvalidRequest  = fmt.Errorf("invalid request")
)

var (
	ErrInternal          = fmt.Errorf("internal error")
	ErrTokenGeneration   = fmt.Errorf("token generation failed")
	ErrChannelClosed     = fmt.Errorf("bus channel closed")
	ErrLagged            = fmt.Errorf("receiver lagged")
	ErrInvalidEnvelope   = fmt.Errorf("invalid envelope")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrUnknownDriver     = fmt.Errorf("unknown store driver")
	ErrStreamUnavailable = fmt.Errorf("stream unavailable")
)

var authErrors = []error{
	ErrUserNotFound, ErrEmptyToken, ErrTokenMismatch, ErrInvalidCredentials, ErrInvalidStreamToken,
}

var domainErrors = []error{
	ErrRoomNotFound, ErrAlreadyMember, ErrNotAMember, ErrInviteeNotFound, ErrUsernameTaken, ErrInvalidRequest,
}

// LaggedError reports how many envelopes a receiver skipped.
// It matches ErrLagged with errors.Is.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("receiver lagged, %d envelopes skipped", e.Skipped)
}

func (e *LaggedError) Is(target error) bool {
	return target == ErrLagged
}

// Internal marks err as a persistence failure while keeping its cause.
func Internal(err error) error {
	if err == nil || errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

func IsAuth(err error) bool {
	return isOneOf(err, authErrors)
}

func IsDomain(err error) bool {
	return isOneOf(err, domainErrors)
}

func isOneOf(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
