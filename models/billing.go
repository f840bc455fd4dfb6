package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Bill is the settlement document of an order. One per order.
type Bill struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber string    `gorm:"uniqueIndex;not null;size:24" json:"billNumber"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"orderId"`
	Order      *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discountAmount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"taxAmount"`
	ServiceCharge  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"serviceCharge"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paidAmount"`
	Balance        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`

	IsPaid      bool       `gorm:"default:false" json:"isPaid"`
	IsSplit     bool       `gorm:"default:false" json:"isSplit"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"createdById"`

	SplitPayments []SplitPayment `gorm:"foreignKey:BillID" json:"splitPayments,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	PaidAt    *time.Time `json:"paidAt"`
}

type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PaymentNumber string          `gorm:"uniqueIndex;not null;size:24" json:"paymentNumber"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"orderId"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;index" json:"paymentMethod"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	TransactionID string     `json:"transactionId"`
	Notes         string     `json:"notes"`
	ProcessedByID *uuid.UUID `gorm:"type:uuid" json:"processedById"`

	Refunds []Refund `gorm:"foreignKey:PaymentID" json:"refunds,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `gorm:"index" json:"completedAt"`
}

// SplitPayment records one tender of a bill settled across several payments.
type SplitPayment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"billId"`
	PaymentID uuid.UUID       `gorm:"type:uuid;index;not null" json:"paymentId"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Refund struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RefundNumber  string          `gorm:"uniqueIndex;not null;size:24" json:"refundNumber"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"paymentId"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Reason        string          `gorm:"type:text;not null" json:"reason"`
	ProcessedByID *uuid.UUID      `gorm:"type:uuid" json:"processedById"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (b *Bill) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (s *SplitPayment) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (r *Refund) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
