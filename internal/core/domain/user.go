package domain

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated caller, decoded from a bearer token.
type Identity struct {
	UserID string
}
