package services

import (
	"chat-rooms/domain"
	"sync"
	"time"
)

// roomSequencer serializes writes per room and hands out strictly increasing
// message dates, so storage order, publish order and date order agree.
type roomSequencer struct {
	mu     sync.Mutex
	clocks map[domain.RoomID]*roomClock
	now    func() time.Time
}

type roomClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newRoomSequencer(now func() time.Time) *roomSequencer {
	return &roomSequencer{clocks: make(map[domain.RoomID]*roomClock), now: now}
}

// lock returns the room's clock, locked. Callers must unlock it.
func (q *roomSequencer) lock(roomID domain.RoomID) *roomClock {
	q.mu.Lock()
	clock, ok := q.clocks[roomID]
	if !ok {
		clock = &roomClock{now: q.now}
		q.clocks[roomID] = clock
	}
	q.mu.Unlock()

	clock.mu.Lock()
	return clock
}

func (c *roomClock) unlock() {
	c.mu.Unlock()
}

// next returns a nanosecond precision UTC date after every date given before.
func (c *roomClock) next() time.Time {
	date := time.Unix(0, c.now().UnixNano()).UTC()
	if !date.After(c.last) {
		date = c.last.Add(time.Nanosecond)
	}
	c.last = date
	return date
}
