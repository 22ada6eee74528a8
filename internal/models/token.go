package models

import "time"

// IssuedToken is a signed access token handed to the client
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Session is the parsed identity carried by a valid access token.
// TokenID is the unique id minted at issuance; revocation is keyed by it.
type Session struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}
