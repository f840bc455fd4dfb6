package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table statuses
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
	TableCleaning  = "cleaning"
)

type Table struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TableNumber string    `gorm:"uniqueIndex;not null" json:"tableNumber"`
	Capacity    int       `gorm:"default:4" json:"capacity"`
	Status      string    `gorm:"type:varchar(20);default:'available';not null" json:"status"`
	Location    string    `json:"location"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	AssignedServerID *uuid.UUID `gorm:"type:uuid;index" json:"assignedServerId"`
	OccupiedSince    *time.Time `json:"occupiedSince"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
