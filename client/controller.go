package client

import (
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

type State int32

const (
	Idle State = iota
	ReConnecting
	Connected
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ReConnecting:
		return "reconnecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// RetryPolicy bounds reconnection. The attempt counter starts at
// ConnectedBaseline, is set back to it whenever a stream opens, and the
// controller gives up once it exceeds MaxAttempts.
type RetryPolicy struct {
	MaxAttempts       int
	ConnectedBaseline int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	Jitter            time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		ConnectedBaseline: 1,
		BaseDelay:         250 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		Jitter:            100 * time.Millisecond,
	}
}

// backoff returns the delays between consecutive failed attempts.
// A zero BaseDelay reconnects immediately.
func (p RetryPolicy) backoff() retry.Backoff {
	if p.BaseDelay <= 0 {
		return retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	b := retry.NewExponential(p.BaseDelay)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	if p.Jitter > 0 {
		b = retry.WithJitter(p.Jitter, b)
	}
	return b
}

// StreamOpener opens a user's event stream with a credential.
type StreamOpener interface {
	OpenStream(ctx context.Context, userID int64, token string) (Stream, error)
}

// ReconnectController keeps one event stream open for a user. Any failure
// that is not a Stop triggers a new attempt with the latest known token.
type ReconnectController struct {
	log     *slog.Logger
	opener  StreamOpener
	policy  RetryPolicy
	onEvent func(event.Envelope)
	onGone  func()

	mu      sync.Mutex
	state   State
	attempt int
	userID  int64
	token   string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewReconnectController calls onEvent for every envelope received and
// onGone when it abandons the session after too many failures. Both run on
// the controller goroutine and must not call Stop.
func NewReconnectController(
	log *slog.Logger,
	opener StreamOpener,
	policy RetryPolicy,
	onEvent func(event.Envelope),
	onGone func(),
) *ReconnectController {
	return &ReconnectController{
		log:     log,
		opener:  opener,
		policy:  policy,
		onEvent: onEvent,
		onGone:  onGone,
	}
}

// Start replaces any running stream with a new one for userID.
func (c *ReconnectController) Start(ctx context.Context, userID int64, token string) {
	c.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.userID = userID
	c.token = token
	c.attempt = c.policy.ConnectedBaseline
	c.state = ReConnecting
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.loop(ctx)
	}()
}

// SetToken changes the credential used by the next attempt. An open stream
// is not affected.
func (c *ReconnectController) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Stop closes the open stream, if any, and waits for the controller to be idle.
func (c *ReconnectController) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
}

func (c *ReconnectController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ReconnectController) Attempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

func (c *ReconnectController) loop(ctx context.Context) {
	backoff := c.policy.backoff()
	for {
		userID, token := c.credentials()
		stream, err := c.opener.OpenStream(ctx, userID, token)
		if err == nil {
			c.connected()
			backoff = c.policy.backoff()
			err = c.consume(ctx, stream)
		}
		if ctx.Err() != nil {
			return
		}

		attempt, gaveUp := c.failed()
		if gaveUp {
			c.log.Warn("Stream abandoned", "user_id", userID, "attempts", attempt-1, "error", err)
			if c.onGone != nil {
				c.onGone()
			}
			return
		}
		c.log.Debug("Stream lost, reconnecting", "user_id", userID, "attempt", attempt, "error", err)

		delay, _ := backoff.Next()
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (c *ReconnectController) consume(ctx context.Context, stream Stream) error {
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer stop()
	defer stream.Close()
	for {
		envelope, err := stream.Next()
		if err != nil {
			return err
		}
		if c.onEvent != nil {
			c.onEvent(envelope)
		}
	}
}

func (c *ReconnectController) credentials() (int64, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.token
}

func (c *ReconnectController) connected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Connected
	c.attempt = c.policy.ConnectedBaseline
}

// failed counts one more attempt and reports whether the budget is spent.
func (c *ReconnectController) failed() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt++
	if c.attempt > c.policy.MaxAttempts {
		c.state = Error
		return c.attempt, true
	}
	c.state = ReConnecting
	return c.attempt, false
}
