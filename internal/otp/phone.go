// Package otp keeps one-time login codes keyed by phone number.
package otp

import (
	"strings"

	domainErrors "github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/errors"
)

// NormalizePhone canonicalises a Vietnamese mobile number to its ten digit
// domestic form (0xxxxxxxxx). Separators and a leading +84 or 84 are accepted.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 11 && strings.HasPrefix(digits, "84") {
		digits = "0" + digits[2:]
	}
	if len(digits) != 10 || digits[0] != '0' || !strings.ContainsRune("35789", rune(digits[1])) {
		return "", domainErrors.Invalid("phone", "must be a Vietnamese mobile number")
	}
	return digits, nil
}
