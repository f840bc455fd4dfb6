package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+9779812345678", "+977 981-234-5678", "(415) 555-2671", "9812345678"}
	invalid := []string{"", "12", "+0123456789", "phone", "+1234567890123456"}

	for _, p := range valid {
		assert.True(t, ValidatePhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidatePhone(p), p)
	}
	assert.Equal(t, "+9779812345678", NormalizePhone(" +977 981-234-5678 "))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"cash", "card"}, "card"))
	assert.False(t, Contains([]string{"cash", "card"}, "Card"))
	assert.False(t, Contains(nil, "cash"))
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(6)
	assert.Regexp(t, `^\d{6}$`, s)
}

func TestDates(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	// a Sunday evening
	at := time.Date(2026, 3, 15, 21, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), BeginningOfDay(at))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), BeginningOfWeek(at))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), BeginningOfMonth(at))
	assert.Equal(t, 14, DaysBetween(BeginningOfMonth(at), at))

	monday := time.Date(2026, 3, 9, 8, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), BeginningOfWeek(monday))
}
