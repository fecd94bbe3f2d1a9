package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Username is the unique name shown in chats; Email is the login and
// OTP-delivery address. Both are globally unique. PasswordHash holds a
// bcrypt hash and is never exposed through the API.
type User struct {
	ID              int64
	Username        string
	Email           string
	FirstName       string
	LastName        string
	PasswordHash    string
	Gender          string
	DateOfBirth     *time.Time
	CountryOfOrigin string
	EmailVerified   bool
	CreatedAt       time.Time
}
