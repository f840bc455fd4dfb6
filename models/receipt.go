// models/receipt.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Receipt logs every attempt to deliver a bill to a customer.
type Receipt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptNumber string     `gorm:"uniqueIndex;not null;size:24" json:"receiptNumber"`
	BillID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"billId"`
	ReceiptType   string     `gorm:"type:varchar(20);default:'digital'" json:"receiptType"`
	SentTo        string     `gorm:"not null" json:"sentTo"`
	Message       string     `gorm:"type:text" json:"message"`
	Status        string     `gorm:"type:varchar(20)" json:"status"`  // sent, failed
	Channel       string     `gorm:"type:varchar(20)" json:"channel"` // sms
	ProviderID    string     `json:"providerId"`
	ErrorMessage  string     `gorm:"type:text" json:"errorMessage,omitempty"`
	SentByID      *uuid.UUID `gorm:"type:uuid" json:"sentById"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
