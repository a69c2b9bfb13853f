package dto

import "time"

// OtpSendRequest asks for a one-time code.
type OtpSendRequest struct {
	Phone string `json:"phone" binding:"required,vnphone"`
}

// OtpSendResponse confirms dispatch. DevCode is only filled outside production.
type OtpSendResponse struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
	DevCode   string    `json:"devCode,omitempty"`
}

// OtpVerifyRequest submits a received code.
type OtpVerifyRequest struct {
	Phone string `json:"phone" binding:"required,vnphone"`
	Code  string `json:"code" binding:"required"`
}

// UserResponse is the public view of a customer.
type UserResponse struct {
	ID    int64  `json:"id"`
	Phone string `json:"phone"`
}

// OtpVerifyResponse carries the session token.
type OtpVerifyResponse struct {
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
	NewUser bool         `json:"newUser"`
}
