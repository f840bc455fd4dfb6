package services

import (
	"errors"
	"strings"
	"time"

	"restopos-backend/utils"

	"gorm.io/gorm"
)

const numberAttempts = 5

// Document number prefixes
const (
	prefixOrder   = "ORD"
	prefixBill    = "BILL"
	prefixPayment = "PAY"
	prefixRefund  = "REF"
	prefixReceipt = "RCP"
)

// NumberFunc builds a human-readable document number.
type NumberFunc func(prefix string, at time.Time) string

// DefaultNumber yields e.g. ORD20261018482913.
func DefaultNumber(prefix string, at time.Time) string {
	return prefix + at.Format("20060102") + utils.GenerateRandomString(6)
}

// createNumbered inserts value under a fresh number, retrying on a unique
// violation. Each attempt runs in a savepoint so a collision does not abort
// the surrounding transaction.
func createNumbered(tx *gorm.DB, gen NumberFunc, prefix string, at time.Time, assign func(string), value any) error {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		assign(gen(prefix, at))
		err := tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(value).Error
		})
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return err
		}
	}
	return conflict("could not allocate a unique %s number", strings.ToLower(prefix))
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
