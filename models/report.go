package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesReport is a persisted snapshot of one period's sales.
type SalesReport struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name              string          `gorm:"not null" json:"name"`
	Period            string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_report_period" json:"period"`
	StartDate         time.Time       `gorm:"not null;uniqueIndex:idx_report_period" json:"startDate"`
	EndDate           time.Time       `gorm:"not null" json:"endDate"`
	TotalSales        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalSales"`
	TotalOrders       int64           `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"averageOrderValue"`
	TotalCustomers    int64           `json:"totalCustomers"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func (r *SalesReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
