package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims identify the customer a session token was issued to.
type Claims struct {
	UserID int64
	Phone  string
}

type Strategy interface {
	IssueToken(userID int64, phone string) (string, error)
	ParseToken(token string) (*Claims, error)
	Name() string
}

type Options struct {
	TTL    time.Duration
	Issuer string
}
