package models

import "time"

// User is a durable marketplace account. The ID equals the username given at
// registration and never changes, even if the username field is later edited.
type User struct {
	ID             string
	CreatedAt      time.Time
	Username       string
	Email          string
	HashedPassword string
	Wishlist       []string
	Categories     []string
	Location       string
	EmailVerified  bool
}
