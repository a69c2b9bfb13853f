package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	CodeLength        = 6
	CodeTTL           = 5 * time.Minute
	MaxFailedAttempts = 5
)

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random numeric code of CodeLength digits.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
