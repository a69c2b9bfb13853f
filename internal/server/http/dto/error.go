package dto

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message       string   `json:"message"`
	Field         string   `json:"field,omitempty"`
	RetryAfterSec int      `json:"retryAfterSec,omitempty"`
	Products      []string `json:"products,omitempty"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
