package utils

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidPhone is returned when a phone number does not contain exactly
// 11 digits (the +7 (XXX) XXX-XX-XX format the storefront collects).
var ErrInvalidPhone = errors.New("phone number must contain 11 digits")

// NormalizePhone strips formatting from a phone number and validates that
// exactly 11 digits remain.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
