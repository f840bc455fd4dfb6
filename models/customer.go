package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `gorm:"not null;uniqueIndex" json:"phone"`
	Email     string    `json:"email"`
	Notes     string    `json:"notes"`

	IsVIP         bool            `gorm:"default:false" json:"isVip"`
	LoyaltyPoints int             `gorm:"default:0" json:"loyaltyPoints"`
	VisitCount    int             `gorm:"default:0" json:"visitCount"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"totalSpent"`
	LastVisit     *time.Time      `json:"lastVisit"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
