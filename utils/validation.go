// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// + prefix followed by up to 15 digits, no leading zero
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone strips spacing and punctuation from a phone number.
func NormalizePhone(phone string) string {
	return phoneNoise.Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// Contains reports whether value is one of options.
func Contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
