// Package domain contains core concepts of the chat system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "strconv"

type UserID int64

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// User is the stored account.
// Token is the current rotating credential, empty when logged out.
// SessionID identifies the login that issued Token and is cleared together with it.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Token        string
	SessionID    string
}

// LoggedIn reports whether the user currently holds a live session.
func (u User) LoggedIn() bool {
	return u.Token != ""
}
