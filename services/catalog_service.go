package services

import (
	"context"
	"strings"

	"restopos-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogService manages the menu: categories, items, combos and modifiers.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type CategoryInput struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"displayOrder"`
}

type MenuItemInput struct {
	CategoryID      uuid.UUID       `json:"categoryId" binding:"required"`
	ReferenceNumber string          `json:"referenceNumber" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	IsVegetarian    bool            `json:"isVegetarian"`
	IsSpicy         bool            `json:"isSpicy"`
	PreparationTime int             `json:"preparationTime"`
}

type ComboInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ItemIDs     []uuid.UUID     `json:"itemIds" binding:"required,min=1"`
}

type ModifierInput struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	category := models.Category{
		Name:         name,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isDuplicate(err) {
			return nil, conflict("category %s already exists", name)
		}
		return nil, err
	}
	return &category, nil
}

// ListMenu returns active categories with their available items, optionally
// narrowed to one category.
func (s *CatalogService) ListMenu(ctx context.Context, categoryID *uuid.UUID) ([]models.Category, error) {
	query := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("reference_number")
		}).
		Where("is_active = ?", true)
	if categoryID != nil {
		query = query.Where("id = ?", *categoryID)
	}
	var categories []models.Category
	err := query.Order("display_order, name").Find(&categories).Error
	return categories, err
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, input MenuItemInput) (*models.MenuItem, error) {
	if !input.Price.IsPositive() {
		return nil, invalid("price must be greater than zero")
	}
	ref := strings.TrimSpace(input.ReferenceNumber)
	if ref == "" {
		return nil, invalid("reference number is required")
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", input.CategoryID).Error; err != nil {
		return nil, lookupErr(err, "category")
	}

	item := models.MenuItem{
		CategoryID:      category.ID,
		ReferenceNumber: ref,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Price:           input.Price.Round(2),
		IsAvailable:     true,
		IsVegetarian:    input.IsVegetarian,
		IsSpicy:         input.IsSpicy,
		PreparationTime: input.PreparationTime,
	}
	if item.PreparationTime <= 0 {
		item.PreparationTime = 15
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isDuplicate(err) {
			return nil, conflict("reference number %s is already used", ref)
		}
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "menu item")
	}
	return &item, nil
}

// FindByReference looks an item up by its till code.
func (s *CatalogService) FindByReference(ctx context.Context, ref string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, "reference_number = ?", strings.TrimSpace(ref)).Error; err != nil {
		return nil, lookupErr(err, "menu item")
	}
	return &item, nil
}

// SetItemAvailability takes an item off or back onto the menu. Existing
// order lines keep their price.
func (s *CatalogService) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) (*models.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(item).Update("is_available", available).Error; err != nil {
		return nil, err
	}
	item.IsAvailable = available
	return item, nil
}

func (s *CatalogService) CreateCombo(ctx context.Context, input ComboInput) (*models.Combo, error) {
	if !input.Price.IsPositive() {
		return nil, invalid("price must be greater than zero")
	}
	if len(input.ItemIDs) == 0 {
		return nil, invalid("a combo needs at least one item")
	}

	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Where("id IN ?", input.ItemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(uniqueIDs(input.ItemIDs)) {
		return nil, notFound("one or more combo items not found")
	}

	combo := models.Combo{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price.Round(2),
		IsAvailable: true,
		Items:       items,
	}
	// the items already exist; only the join rows are written
	err := s.db.WithContext(ctx).Omit("Items.*").Create(&combo).Error
	if err != nil {
		return nil, err
	}
	return &combo, nil
}

func (s *CatalogService) ListCombos(ctx context.Context) ([]models.Combo, error) {
	var combos []models.Combo
	err := s.db.WithContext(ctx).Preload("Items").
		Where("is_available = ?", true).
		Order("name").
		Find(&combos).Error
	return combos, err
}

func (s *CatalogService) CreateModifier(ctx context.Context, input ModifierInput) (*models.Modifier, error) {
	if input.Price.IsNegative() {
		return nil, invalid("modifier price cannot be negative")
	}
	modifier := models.Modifier{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price.Round(2),
		IsAvailable: true,
	}
	if err := s.db.WithContext(ctx).Create(&modifier).Error; err != nil {
		if isDuplicate(err) {
			return nil, conflict("modifier %s already exists", modifier.Name)
		}
		return nil, err
	}
	return &modifier, nil
}

func (s *CatalogService) ListModifiers(ctx context.Context) ([]models.Modifier, error) {
	var modifiers []models.Modifier
	err := s.db.WithContext(ctx).Where("is_available = ?", true).Order("name").Find(&modifiers).Error
	return modifiers, err
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
