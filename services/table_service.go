package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"restopos-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableService owns the floor plan and table status transitions. Moving a
// table into or out of occupied happens through the order engine.
type TableService struct {
	db   *gorm.DB
	deps Deps
}

func NewTableService(db *gorm.DB, deps Deps) *TableService {
	return &TableService{db: db, deps: deps.withDefaults()}
}

type TableInput struct {
	TableNumber string `json:"tableNumber" binding:"required"`
	Capacity    int    `json:"capacity" binding:"min=0"`
	Location    string `json:"location"`
}

func (s *TableService) CreateTable(ctx context.Context, input TableInput) (*models.Table, error) {
	number := strings.TrimSpace(input.TableNumber)
	if number == "" {
		return nil, invalid("table number is required")
	}
	if input.Capacity < 0 {
		return nil, invalid("capacity must be positive")
	}
	table := models.Table{
		TableNumber: number,
		Capacity:    input.Capacity,
		Location:    input.Location,
		Status:      models.TableAvailable,
	}
	if table.Capacity == 0 {
		table.Capacity = 4
	}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		if isDuplicate(err) {
			return nil, conflict("table %s already exists", number)
		}
		return nil, err
	}
	return &table, nil
}

// ListTables returns active tables, optionally filtered by status.
func (s *TableService) ListTables(ctx context.Context, status string) ([]models.Table, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var tables []models.Table
	if err := query.Order("table_number").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "table")
	}
	return &table, nil
}

// Reserve holds a free table for an expected party.
func (s *TableService) Reserve(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.transition(ctx, id, func(tx *gorm.DB, t *models.Table) error {
		if t.Status != models.TableAvailable {
			return conflict("table %s is %s", t.TableNumber, t.Status)
		}
		return setTableStatus(tx, t, models.TableReserved)
	})
}

// MarkCleaning flags a table that is being reset between parties.
func (s *TableService) MarkCleaning(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.transition(ctx, id, func(tx *gorm.DB, t *models.Table) error {
		if t.Status == models.TableOccupied {
			return conflict("table %s is occupied", t.TableNumber)
		}
		return setTableStatus(tx, t, models.TableCleaning)
	})
}

// MarkAvailable frees a table. It refuses while an open order still sits on it.
func (s *TableService) MarkAvailable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.transition(ctx, id, func(tx *gorm.DB, t *models.Table) error {
		if _, err := openOrderForTable(tx, t.ID); err == nil {
			return conflict("table %s still has an open order", t.TableNumber)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return releaseTable(tx, t)
	})
}

// SetStatus dispatches a requested status to the matching transition.
func (s *TableService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Table, error) {
	switch status {
	case models.TableReserved:
		return s.Reserve(ctx, id)
	case models.TableCleaning:
		return s.MarkCleaning(ctx, id)
	case models.TableAvailable:
		return s.MarkAvailable(ctx, id)
	case models.TableOccupied:
		return nil, invalid("tables are occupied by opening an order")
	default:
		return nil, invalid("unknown table status %q", status)
	}
}

// AssignServer sets the waiter responsible for the table.
func (s *TableService) AssignServer(ctx context.Context, id, serverID uuid.UUID) (*models.Table, error) {
	return s.transition(ctx, id, func(tx *gorm.DB, t *models.Table) error {
		var user models.User
		if err := tx.Where("id = ? AND is_active = ?", serverID, true).First(&user).Error; err != nil {
			return lookupErr(err, "staff member")
		}
		t.AssignedServerID = &user.ID
		return tx.Model(t).Update("assigned_server_id", user.ID).Error
	})
}

func (s *TableService) transition(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, t *models.Table) error) (*models.Table, error) {
	unlock, err := lockKeys(ctx, s.deps.Locker, tableKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var table *models.Table
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := loadActiveTable(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, t); err != nil {
			return err
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.publish(ctx, tableEvent(table))
	refreshOccupancy(ctx, s.db, s.deps)
	return table, nil
}

func loadActiveTable(tx *gorm.DB, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).
		First(&table).Error
	if err != nil {
		return nil, lookupErr(err, "table")
	}
	return &table, nil
}

// loadTable also finds deactivated tables, for releasing them.
func loadTable(tx *gorm.DB, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "table")
	}
	return &table, nil
}

func setTableStatus(tx *gorm.DB, t *models.Table, status string) error {
	if err := tx.Model(t).Update("status", status).Error; err != nil {
		return err
	}
	t.Status = status
	return nil
}

// occupyTable is called by the order engine while it holds the table lock.
func occupyTable(tx *gorm.DB, t *models.Table, at time.Time) error {
	err := tx.Model(t).Updates(map[string]interface{}{
		"status":         models.TableOccupied,
		"occupied_since": at,
	}).Error
	if err != nil {
		return err
	}
	t.Status = models.TableOccupied
	t.OccupiedSince = &at
	return nil
}

func releaseTable(tx *gorm.DB, t *models.Table) error {
	err := tx.Model(t).Updates(map[string]interface{}{
		"status":         models.TableAvailable,
		"occupied_since": nil,
	}).Error
	if err != nil {
		return err
	}
	t.Status = models.TableAvailable
	t.OccupiedSince = nil
	return nil
}

func openOrderForTable(tx *gorm.DB, tableID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Where("table_id = ? AND status IN ?", tableID, models.OpenStatuses).
		Order("created_at").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func refreshOccupancy(ctx context.Context, db *gorm.DB, deps Deps) {
	if deps.Metrics == nil {
		return
	}
	var n int64
	if err := db.WithContext(ctx).Model(&models.Table{}).Where("status = ?", models.TableOccupied).Count(&n).Error; err != nil {
		deps.Logger.Warn("occupancy count failed", "error", err)
		return
	}
	deps.Metrics.SetTablesOccupied(n)
}

func tableEvent(t *models.Table) Event {
	return Event{
		Type:        EventTableStatusChanged,
		TableID:     t.ID.String(),
		TableNumber: t.TableNumber,
		Status:      t.Status,
	}
}
