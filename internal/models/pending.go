package models

import "time"

// PendingRegistration is a signup waiting for email confirmation. It lives in
// process memory only and becomes a User when the verification link is used.
// The password is hashed before the record is created.
type PendingRegistration struct {
	Username       string
	Email          string
	HashedPassword string
	Wishlist       []string
	Categories     []string
	Location       string
	CreatedAt      time.Time
}
