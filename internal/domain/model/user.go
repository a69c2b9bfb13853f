package model

import "time"

// User represents a storefront customer identified by phone number.
type User struct {
	ID        int64
	Phone     string
	Name      string
	Email     string
	CreatedAt time.Time
}

// OtpEntry is the single live one-time code of a phone number.
type OtpEntry struct {
	CodeHash       string
	ExpiresAt      time.Time
	FailedAttempts int
	CreatedAt      time.Time
}

// Expired reports whether the entry is no longer usable at now.
func (e OtpEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
