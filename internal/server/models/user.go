package models

import "time"

// User is an identity record. PasswordHash always holds a one-way hash,
// never the plaintext.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	TwoFactorEnabled bool
	CreatedAt        time.Time
}
