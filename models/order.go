package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order types
const (
	OrderDineIn   = "dine_in"
	OrderTakeaway = "takeaway"
	OrderDelivery = "delivery"
)

// Order statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// OpenStatuses are the statuses in which an order still holds its table.
var OpenStatuses = []string{StatusPending, StatusConfirmed, StatusPreparing, StatusReady}

type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber string    `gorm:"uniqueIndex;not null;size:24" json:"orderNumber"`
	OrderType   string    `gorm:"type:varchar(20);not null" json:"orderType"`
	Status      string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"`

	TableID *uuid.UUID `gorm:"type:uuid;index" json:"tableId"`
	Table   *Table     `gorm:"foreignKey:TableID" json:"table,omitempty"`
	// OpenTableID mirrors TableID while the order is open and is cleared on
	// settlement, so the unique index allows one open order per table.
	OpenTableID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"-"`

	CustomerID   *uuid.UUID `gorm:"type:uuid;index" json:"customerId"`
	Customer     *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid;index" json:"createdById"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index" json:"assignedToId"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discountAmount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"taxAmount"`
	ServiceCharge  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"serviceCharge"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`

	SpecialInstructions string `json:"specialInstructions"`
	DeliveryAddress     string `json:"deliveryAddress"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `gorm:"index" json:"completedAt"`
}

// IsOpen reports whether the order can still be modified.
func (o *Order) IsOpen() bool {
	for _, s := range OpenStatuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Exactly one of MenuItemID and ComboID is set.
type OrderItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"orderId"`
	MenuItemID *uuid.UUID `gorm:"type:uuid;index" json:"menuItemId"`
	ComboID    *uuid.UUID `gorm:"type:uuid;index" json:"comboId"`

	Name                string          `gorm:"not null" json:"name"`
	Quantity            int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	SpecialInstructions string          `json:"specialInstructions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderStatusHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"orderId"`
	Status      string     `gorm:"type:varchar(20);not null" json:"status"`
	ChangedByID *uuid.UUID `gorm:"type:uuid" json:"changedById"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}
