package runtime

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

const DefaultCapacity = 1024

// Bus maps a user to a bounded broadcast channel.
// Lock order is always bus then channel. The bus lock only guards the map,
// publishing takes a read lock for the lookup and then the channel lock.
type Bus struct {
	log      *slog.Logger
	capacity int

	mu       sync.RWMutex
	channels map[domain.UserID]*channel

	published atomic.Uint64
	dropped   atomic.Uint64
	lagged    atomic.Uint64
}

func NewBus(log *slog.Logger, capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		log:      log,
		capacity: capacity,
		channels: make(map[domain.UserID]*channel),
	}
}

// channel is a ring of the last capacity envelopes. Envelope n lives in
// slot n % capacity; head is the sequence number of the next write.
type channel struct {
	mu        sync.Mutex
	ring      []event.Envelope
	head      uint64
	receivers int
	closed    bool
	notify    chan struct{}
}

func newChannel(capacity int) *channel {
	return &channel{
		ring:   make([]event.Envelope, capacity),
		notify: make(chan struct{}),
	}
}

// oldest is the smallest sequence number still held in the ring.
func (c *channel) oldest() uint64 {
	size := uint64(len(c.ring))
	if c.head <= size {
		return 0
	}
	return c.head - size
}

func (c *channel) publish(envelope event.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.receivers == 0 {
		return false
	}
	c.ring[c.head%uint64(len(c.ring))] = envelope
	c.head++
	// Wake every waiting receiver, then arm a new signal for the next publish.
	close(c.notify)
	c.notify = make(chan struct{})
	return true
}

func (c *channel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.notify)
}

// Subscribe returns a receiver positioned after the last published envelope.
// The channel is created on first use, or replaced if a revoked one is still mapped.
func (b *Bus) Subscribe(userID domain.UserID) contract.IReceiver {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[userID]
	if ok {
		ch.mu.Lock()
		if ch.closed {
			ok = false
		}
		ch.mu.Unlock()
	}
	if !ok {
		ch = newChannel(b.capacity)
		b.channels[userID] = ch
		b.log.Debug("Bus channel created", "user_id", userID)
	}

	ch.mu.Lock()
	ch.receivers++
	cursor := ch.head
	ch.mu.Unlock()

	return &Receiver{bus: b, userID: userID, ch: ch, cursor: cursor}
}

// Publish is best effort: with no channel or no receiver the envelope is dropped.
func (b *Bus) Publish(userID domain.UserID, envelope event.Envelope) bool {
	b.mu.RLock()
	ch, ok := b.channels[userID]
	b.mu.RUnlock()

	if !ok || !ch.publish(envelope) {
		b.dropped.Add(1)
		return false
	}
	b.published.Add(1)
	return true
}

// Revoke closes and evicts the user's channel. Receivers get ErrChannelClosed
// and the next Subscribe starts from a fresh channel.
func (b *Bus) Revoke(userID domain.UserID) {
	b.mu.Lock()
	ch, ok := b.channels[userID]
	delete(b.channels, userID)
	b.mu.Unlock()

	if ok {
		ch.close()
		b.log.Debug("Bus channel revoked", "user_id", userID)
	}
}

func (b *Bus) Stats() contract.BusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := contract.BusStats{
		Channels:  len(b.channels),
		Capacity:  b.capacity,
		Published: b.published.Load(),
		Dropped:   b.dropped.Load(),
		Lagged:    b.lagged.Load(),
	}
	for _, ch := range b.channels {
		ch.mu.Lock()
		stats.Receivers += ch.receivers
		ch.mu.Unlock()
	}
	return stats
}

// release drops one receiver and evicts the channel once nobody listens.
func (b *Bus) release(userID domain.UserID, ch *channel) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch.mu.Lock()
	ch.receivers--
	empty := ch.receivers == 0
	ch.mu.Unlock()

	if empty && b.channels[userID] == ch {
		delete(b.channels, userID)
		b.log.Debug("Bus channel evicted", "user_id", userID)
	}
}

// Receiver owns a private cursor, so a slow receiver never holds back the others.
// A receiver is meant to be used by a single goroutine.
type Receiver struct {
	bus    *Bus
	userID domain.UserID
	ch     *channel
	cursor uint64
	once   sync.Once
}

// Recv returns the next envelope. When the ring overwrote envelopes the
// receiver never read, it returns a *errors.LaggedError with the number of
// skipped envelopes and moves its cursor to the oldest retained one; the
// following call resumes normally.
func (r *Receiver) Recv(ctx context.Context) (event.Envelope, error) {
	for {
		r.ch.mu.Lock()
		if r.ch.closed {
			r.ch.mu.Unlock()
			return nil, errors.ErrChannelClosed
		}
		if oldest := r.ch.oldest(); r.cursor < oldest {
			skipped := oldest - r.cursor
			r.cursor = oldest
			r.ch.mu.Unlock()
			r.bus.lagged.Add(1)
			return nil, &errors.LaggedError{Skipped: skipped}
		}
		if r.cursor < r.ch.head {
			envelope := r.ch.ring[r.cursor%uint64(len(r.ch.ring))]
			r.cursor++
			r.ch.mu.Unlock()
			return envelope, nil
		}
		wait := r.ch.notify
		r.ch.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// Close releases the receiver. It is safe to call more than once.
func (r *Receiver) Close() {
	r.once.Do(func() {
		r.bus.release(r.userID, r.ch)
	})
}
