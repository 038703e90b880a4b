// Package domain contains core concepts of the chat system.
// This file defines Message values and related rules.
// Messages are immutable and ordered by Date within a room.
package domain

import "time"

// Message represents an immutable chat entry posted in a room.
type Message struct {
	Date   time.Time
	RoomID RoomID
	UserID UserID
	Text   string
}

// Before reports whether m sorts strictly before other in history replay.
// Messages of different rooms sharing a timestamp are ordered by room id.
func (m Message) Before(other Message) bool {
	if !m.Date.Equal(other.Date) {
		return m.Date.Before(other.Date)
	}
	return m.RoomID < other.RoomID
}
