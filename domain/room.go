package domain

import "strconv"

type RoomID int64

func (id RoomID) String() string { return strconv.FormatInt(int64(id), 10) }

// Room is a named conversation. Its creator is always its first member.
type Room struct {
	ID   RoomID
	Name string
}

// Membership grants a user visibility into a room and makes them a fan-out target.
// A (UserID, RoomID) pair is unique and is never removed.
type Membership struct {
	UserID UserID
	RoomID RoomID
}
