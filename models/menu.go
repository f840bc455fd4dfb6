package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	DisplayOrder int       `gorm:"default:0" json:"displayOrder"`

	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// MenuItem is a priced, orderable dish. ReferenceNumber is the short code
// staff key in at the till.
type MenuItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	ReferenceNumber string          `gorm:"uniqueIndex;not null" json:"referenceNumber"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable     bool            `gorm:"default:true" json:"isAvailable"`
	IsVegetarian    bool            `gorm:"default:false" json:"isVegetarian"`
	IsSpicy         bool            `gorm:"default:false" json:"isSpicy"`
	PreparationTime int             `gorm:"default:15" json:"preparationTime"` // minutes

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Combo bundles several menu items at a single price.
type Combo struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool            `gorm:"default:true" json:"isAvailable"`

	Items []MenuItem `gorm:"many2many:combo_items;" json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type Modifier struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
	IsAvailable bool            `gorm:"default:true" json:"isAvailable"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func (c *Combo) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

func (m *Modifier) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
