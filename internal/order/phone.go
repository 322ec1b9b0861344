package order

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// dzMobile matches a normalized Algerian mobile number: 05/06/07 prefix,
// ten digits total.
var dzMobile = regexp.MustCompile(`^0[567]\d{8}$`)

// NormalizePhone strips everything but digits, so "055 123 45 67" and
// "0551234567" compare equal for dedup purposes.
func NormalizePhone(raw string) string {
	return nonDigit.ReplaceAllString(strings.TrimSpace(raw), "")
}

// ValidMobile reports whether the normalized number looks like a local
// mobile number.
func ValidMobile(normalized string) bool {
	return dzMobile.MatchString(normalized)
}
