package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"restopos-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService drives the order lifecycle: opening orders on tables, editing
// lines, kitchen status, moving and cancelling. Settlement lives in
// BillingService.
type OrderService struct {
	db                *gorm.DB
	serviceChargeRate decimal.Decimal
	deps              Deps
}

func NewOrderService(db *gorm.DB, serviceChargeRate decimal.Decimal, deps Deps) *OrderService {
	return &OrderService{db: db, serviceChargeRate: serviceChargeRate, deps: deps.withDefaults()}
}

// Totals is the derived money state of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals prices an order from its line subtotal. The discount is
// capped at the subtotal and the service charge applies to the undiscounted
// subtotal.
func ComputeTotals(subtotal, discount, serviceChargeRate decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discount = discount.Round(2)
	service := subtotal.Mul(serviceChargeRate).Round(2)
	tax := decimal.Zero
	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		ServiceCharge: service,
		Total:         subtotal.Sub(discount).Add(tax).Add(service),
	}
}

// FindOrCreateOrder returns the open order on a table, opening one and
// occupying the table when there is none. created reports which happened.
func (s *OrderService) FindOrCreateOrder(ctx context.Context, tableID, actor uuid.UUID) (order *models.Order, created bool, err error) {
	unlock, err := lockKeys(ctx, s.deps.Locker, tableKey(tableID))
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	var (
		orderID uuid.UUID
		table   *models.Table
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := loadActiveTable(tx, tableID)
		if err != nil {
			return err
		}
		existing, err := openOrderForTable(tx, t.ID)
		if err == nil {
			orderID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.deps.Now()
		o := models.Order{
			OrderType:    models.OrderDineIn,
			Status:       models.StatusPending,
			TableID:      &t.ID,
			OpenTableID:  &t.ID,
			CreatedByID:  actorPtr(actor),
			AssignedToID: actorPtr(actor),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := createNumbered(tx, s.deps.Number, prefixOrder, now, func(n string) { o.OrderNumber = n }, &o); err != nil {
			return err
		}
		if err := occupyTable(tx, t, now); err != nil {
			return err
		}
		if err := recordStatus(tx, o.ID, models.StatusPending, actor, "opened at table "+t.TableNumber, now); err != nil {
			return err
		}
		orderID = o.ID
		table = t
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	order, err = s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.deps.Metrics.OrderCreated()
		s.deps.Logger.Info("order opened", "order", order.OrderNumber, "table", table.TableNumber, "actor", actor)
		s.deps.publish(ctx, orderEvent(EventOrderCreated, order), tableEvent(table))
		refreshOccupancy(ctx, s.db, s.deps)
	}
	return order, created, nil
}

type CreateOrderInput struct {
	OrderType           string     `json:"orderType" binding:"required"`
	CustomerID          *uuid.UUID `json:"customerId"`
	DeliveryAddress     string     `json:"deliveryAddress"`
	SpecialInstructions string     `json:"specialInstructions"`
}

// CreateOrder opens a takeaway or delivery order. Dine-in orders are opened
// from a table with FindOrCreateOrder.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput, actor uuid.UUID) (*models.Order, error) {
	switch input.OrderType {
	case models.OrderTakeaway:
	case models.OrderDelivery:
		if strings.TrimSpace(input.DeliveryAddress) == "" {
			return nil, invalid("delivery orders need a delivery address")
		}
	case models.OrderDineIn:
		return nil, invalid("dine-in orders are opened from a table")
	default:
		return nil, invalid("unknown order type %q", input.OrderType)
	}

	var orderID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CustomerID != nil {
			if err := tx.Select("id").First(&models.Customer{}, "id = ?", *input.CustomerID).Error; err != nil {
				return lookupErr(err, "customer")
			}
		}
		now := s.deps.Now()
		o := models.Order{
			OrderType:           input.OrderType,
			Status:              models.StatusPending,
			CustomerID:          input.CustomerID,
			CreatedByID:         actorPtr(actor),
			AssignedToID:        actorPtr(actor),
			DeliveryAddress:     strings.TrimSpace(input.DeliveryAddress),
			SpecialInstructions: input.SpecialInstructions,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := createNumbered(tx, s.deps.Number, prefixOrder, now, func(n string) { o.OrderNumber = n }, &o); err != nil {
			return err
		}
		orderID = o.ID
		return recordStatus(tx, o.ID, models.StatusPending, actor, input.OrderType+" order opened", now)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.deps.Metrics.OrderCreated()
	s.deps.publish(ctx, orderEvent(EventOrderCreated, order))
	return order, nil
}

// AddItem adds quantity of a menu item. A line for the same menu item is
// increased instead of duplicated.
func (s *OrderService) AddItem(ctx context.Context, orderID, menuItemID uuid.UUID, quantity int, notes string, actor uuid.UUID) (*models.Order, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		var item models.MenuItem
		if err := tx.Where("id = ? AND is_available = ?", menuItemID, true).First(&item).Error; err != nil {
			return lookupErr(err, "menu item")
		}
		return s.addLine(tx, order.ID, lineSource{menuItemID: &item.ID, name: item.Name, price: item.Price}, quantity, notes)
	})
}

// AddCombo adds quantity of a combo, merging with an existing combo line.
func (s *OrderService) AddCombo(ctx context.Context, orderID, comboID uuid.UUID, quantity int, notes string, actor uuid.UUID) (*models.Order, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		var combo models.Combo
		if err := tx.Where("id = ? AND is_available = ?", comboID, true).First(&combo).Error; err != nil {
			return lookupErr(err, "combo")
		}
		return s.addLine(tx, order.ID, lineSource{comboID: &combo.ID, name: combo.Name, price: combo.Price}, quantity, notes)
	})
}

type lineSource struct {
	menuItemID *uuid.UUID
	comboID    *uuid.UUID
	name       string
	price      decimal.Decimal
}

func (s *OrderService) addLine(tx *gorm.DB, orderID uuid.UUID, src lineSource, quantity int, notes string) error {
	query := tx.Where("order_id = ?", orderID)
	if src.menuItemID != nil {
		query = query.Where("menu_item_id = ?", *src.menuItemID)
	} else {
		query = query.Where("combo_id = ?", *src.comboID)
	}

	var line models.OrderItem
	err := query.First(&line).Error
	switch {
	case err == nil:
		qty := line.Quantity + quantity
		return tx.Model(&line).Updates(map[string]interface{}{
			"quantity":    qty,
			"total_price": line.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.OrderItem{
			OrderID:             orderID,
			MenuItemID:          src.menuItemID,
			ComboID:             src.comboID,
			Name:                src.name,
			Quantity:            quantity,
			UnitPrice:           src.price,
			TotalPrice:          src.price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
			SpecialInstructions: notes,
		}
		return tx.Create(&line).Error
	default:
		return err
	}
}

// UpdateItemQuantity sets a line's quantity. Zero or less is rejected;
// use RemoveItem to drop a line.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int, actor uuid.UUID) (*models.Order, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	orderID, err := s.orderIDForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		line, err := loadLine(tx, order.ID, itemID)
		if err != nil {
			return err
		}
		return tx.Model(line).Updates(map[string]interface{}{
			"quantity":    quantity,
			"total_price": line.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		}).Error
	})
}

// RemoveItem deletes a line. The order stays open even with no lines left.
func (s *OrderService) RemoveItem(ctx context.Context, itemID, actor uuid.UUID) (*models.Order, error) {
	orderID, err := s.orderIDForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		line, err := loadLine(tx, order.ID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(line).Error
	})
}

// ApplyDiscount sets a flat discount on the order.
func (s *OrderService) ApplyDiscount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*models.Order, error) {
	if amount.IsNegative() {
		return nil, invalid("discount cannot be negative")
	}
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		if amount.GreaterThan(order.Subtotal) {
			return invalid("discount %s exceeds subtotal %s", amount.StringFixed(2), order.Subtotal.StringFixed(2))
		}
		order.DiscountAmount = amount
		return nil
	})
}

// AttachCustomer links a customer so their visit is counted at settlement.
func (s *OrderService) AttachCustomer(ctx context.Context, orderID, customerID, actor uuid.UUID) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(tx *gorm.DB, order *models.Order) error {
		var customer models.Customer
		if err := tx.Select("id").First(&customer, "id = ?", customerID).Error; err != nil {
			return lookupErr(err, "customer")
		}
		order.CustomerID = &customer.ID
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("customer_id", customer.ID).Error
	})
}

// mutate runs fn on a locked open order and then recomputes its totals.
func (s *OrderService) mutate(ctx context.Context, orderID uuid.UUID, fn func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	unlock, tableID, err := s.lockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOpenOrder(tx, orderID, tableID)
		if err != nil {
			return err
		}
		if err := fn(tx, order); err != nil {
			return err
		}
		return s.recompute(tx, order)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.deps.publish(ctx, orderEvent(EventOrderUpdated, order))
	return order, nil
}

// recompute derives the order totals from its stored lines.
func (s *OrderService) recompute(tx *gorm.DB, order *models.Order) error {
	var lines []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
		return err
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.TotalPrice)
	}

	t := ComputeTotals(subtotal, order.DiscountAmount, s.serviceChargeRate)
	err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"subtotal":        t.Subtotal,
		"discount_amount": t.Discount,
		"tax_amount":      t.Tax,
		"service_charge":  t.ServiceCharge,
		"total":           t.Total,
		"updated_at":      s.deps.Now(),
	}).Error
	if err != nil {
		return err
	}
	order.Subtotal = t.Subtotal
	order.DiscountAmount = t.Discount
	order.TaxAmount = t.Tax
	order.ServiceCharge = t.ServiceCharge
	order.Total = t.Total
	return nil
}

var nextStatus = map[string]string{
	models.StatusPending:   models.StatusConfirmed,
	models.StatusConfirmed: models.StatusPreparing,
	models.StatusPreparing: models.StatusReady,
}

// ConfirmOrder sends a pending order to the kitchen. Confirming an order
// that is already past pending is a no-op.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID, actor uuid.UUID) (*models.Order, error) {
	return s.changeStatus(ctx, orderID, actor, func(order *models.Order) (string, error) {
		if order.Status == models.StatusPending {
			return models.StatusConfirmed, nil
		}
		return "", nil
	})
}

// AdvanceStatus moves an order one kitchen step forward:
// pending, confirmed, preparing, ready. Completion happens at settlement.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, status string, actor uuid.UUID) (*models.Order, error) {
	switch status {
	case models.StatusCompleted:
		return nil, invalid("orders are completed by settling the bill")
	case models.StatusCancelled:
		return nil, invalid("use cancel to drop an order")
	case models.StatusConfirmed, models.StatusPreparing, models.StatusReady:
	default:
		return nil, invalid("unknown order status %q", status)
	}
	return s.changeStatus(ctx, orderID, actor, func(order *models.Order) (string, error) {
		if order.Status == status {
			return "", nil
		}
		if nextStatus[order.Status] != status {
			return "", conflict("cannot move order %s from %s to %s", order.OrderNumber, order.Status, status)
		}
		return status, nil
	})
}

func (s *OrderService) changeStatus(ctx context.Context, orderID, actor uuid.UUID, decide func(*models.Order) (string, error)) (*models.Order, error) {
	unlock, tableID, err := s.lockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOpenOrder(tx, orderID, tableID)
		if err != nil {
			return err
		}
		next, err := decide(order)
		if err != nil || next == "" {
			return err
		}
		now := s.deps.Now()
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":     next,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		changed = true
		return recordStatus(tx, order.ID, next, actor, "", now)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.deps.publish(ctx, orderEvent(EventOrderStatusChanged, order))
	}
	return order, nil
}

// MoveTable transfers an open order to another available table.
func (s *OrderService) MoveTable(ctx context.Context, orderID, newTableID, actor uuid.UUID) (*models.Order, error) {
	unlock, tableID, err := s.lockOrder(ctx, orderID, newTableID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var oldTable, newTable *models.Table
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOpenOrder(tx, orderID, tableID)
		if err != nil {
			return err
		}
		if order.TableID == nil {
			return invalid("order %s is not seated at a table", order.OrderNumber)
		}
		if *order.TableID == newTableID {
			return invalid("order %s is already at this table", order.OrderNumber)
		}
		newTable, err = loadActiveTable(tx, newTableID)
		if err != nil {
			return err
		}
		if newTable.Status != models.TableAvailable {
			return conflict("table %s is not available", newTable.TableNumber)
		}
		oldTable, err = loadTable(tx, *order.TableID)
		if err != nil {
			return err
		}

		now := s.deps.Now()
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"table_id":      newTable.ID,
			"open_table_id": newTable.ID,
			"updated_at":    now,
		}).Error; err != nil {
			return err
		}
		if err := releaseTable(tx, oldTable); err != nil {
			return err
		}
		if err := occupyTable(tx, newTable, now); err != nil {
			return err
		}
		return recordStatus(tx, order.ID, order.Status, actor, "moved from table "+oldTable.TableNumber+" to "+newTable.TableNumber, now)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.deps.Logger.Info("order moved", "order", order.OrderNumber, "from", oldTable.TableNumber, "to", newTable.TableNumber, "actor", actor)
	s.deps.publish(ctx, orderEvent(EventOrderMoved, order), tableEvent(oldTable), tableEvent(newTable))
	return order, nil
}

// CancelOrder deletes an unsettled order with its lines and frees its table.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actor uuid.UUID, reason string) error {
	unlock, tableID, err := s.lockOrder(ctx, orderID)
	if err != nil {
		return err
	}
	defer unlock()

	var (
		cancelled models.Order
		table     *models.Table
		lines     int64
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOpenOrder(tx, orderID, tableID)
		if err != nil {
			return err
		}
		cancelled = *order
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(order).Error; err != nil {
			return err
		}
		if order.TableID != nil {
			table, err = loadTable(tx, *order.TableID)
			if err != nil {
				return err
			}
			return releaseTable(tx, table)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Metrics.OrderCancelled()
	s.deps.Logger.Info("order cancelled",
		"order", cancelled.OrderNumber,
		"status", cancelled.Status,
		"lines", lines,
		"total", cancelled.Total.StringFixed(2),
		"actor", actor,
		"reason", reason,
	)
	events := []Event{orderEvent(EventOrderCancelled, &cancelled)}
	if table != nil {
		events = append(events, tableEvent(table))
	}
	s.deps.publish(ctx, events...)
	refreshOccupancy(ctx, s.db, s.deps)
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return fetchOrder(ctx, s.db, id)
}

// fetchOrder loads an order with its lines, table and customer.
func fetchOrder(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Table").
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	return &order, nil
}

type OrderFilter struct {
	Status    string
	OrderType string
	TableID   *uuid.UUID
	Limit     int
}

func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Preload("Table")
	if f.Status == "open" {
		query = query.Where("status IN ?", models.OpenStatuses)
	} else if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.OrderType != "" {
		query = query.Where("order_type = ?", f.OrderType)
	}
	if f.TableID != nil {
		query = query.Where("table_id = ?", *f.TableID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var orders []models.Order
	if err := query.Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ActiveOrderForTable returns the open order seated at a table.
func (s *OrderService) ActiveOrderForTable(ctx context.Context, tableID uuid.UUID) (*models.Order, error) {
	order, err := openOrderForTable(s.db.WithContext(ctx), tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("no open order at this table")
		}
		return nil, err
	}
	return s.GetOrder(ctx, order.ID)
}

func (s *OrderService) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&history).Error
	return history, err
}

// lockOrder takes the order lock plus the lock of the table it sits at and
// any extra tables. It returns the table id observed before locking so the
// caller can detect a concurrent move.
func (s *OrderService) lockOrder(ctx context.Context, orderID uuid.UUID, extraTables ...uuid.UUID) (func(), *uuid.UUID, error) {
	return lockOrderKeys(ctx, s.db, s.deps.Locker, orderID, extraTables...)
}

func lockOrderKeys(ctx context.Context, db *gorm.DB, locker Locker, orderID uuid.UUID, extraTables ...uuid.UUID) (func(), *uuid.UUID, error) {
	var current models.Order
	if err := db.WithContext(ctx).Select("id", "table_id").First(&current, "id = ?", orderID).Error; err != nil {
		return nil, nil, lookupErr(err, "order")
	}
	keys := []string{orderKey(orderID)}
	if current.TableID != nil {
		keys = append(keys, tableKey(*current.TableID))
	}
	for _, t := range extraTables {
		keys = append(keys, tableKey(t))
	}
	unlock, err := lockKeys(ctx, locker, keys...)
	if err != nil {
		return nil, nil, err
	}
	return unlock, current.TableID, nil
}

func loadOrder(tx *gorm.DB, id uuid.UUID, lockedTable *uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "order")
	}
	if !sameTable(order.TableID, lockedTable) {
		return nil, conflict("order %s was moved, try again", order.OrderNumber)
	}
	return &order, nil
}

func loadOpenOrder(tx *gorm.DB, id uuid.UUID, lockedTable *uuid.UUID) (*models.Order, error) {
	order, err := loadOrder(tx, id, lockedTable)
	if err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, conflict("order %s is already %s", order.OrderNumber, order.Status)
	}
	return order, nil
}

func sameTable(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *OrderService) orderIDForItem(ctx context.Context, itemID uuid.UUID) (uuid.UUID, error) {
	var line models.OrderItem
	if err := s.db.WithContext(ctx).Select("id", "order_id").First(&line, "id = ?", itemID).Error; err != nil {
		return uuid.Nil, lookupErr(err, "order item")
	}
	return line.OrderID, nil
}

func loadLine(tx *gorm.DB, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	var line models.OrderItem
	if err := tx.Where("id = ? AND order_id = ?", itemID, orderID).First(&line).Error; err != nil {
		return nil, lookupErr(err, "order item")
	}
	return &line, nil
}

func recordStatus(tx *gorm.DB, orderID uuid.UUID, status string, actor uuid.UUID, notes string, at time.Time) error {
	return tx.Create(&models.OrderStatusHistory{
		OrderID:     orderID,
		Status:      status,
		ChangedByID: actorPtr(actor),
		Notes:       notes,
		CreatedAt:   at,
	}).Error
}

func orderEvent(eventType string, o *models.Order) Event {
	e := Event{
		Type:        eventType,
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
	}
	if o.TableID != nil {
		e.TableID = o.TableID.String()
	}
	if o.Table != nil {
		e.TableNumber = o.Table.TableNumber
	}
	total := o.Total
	e.Amount = &total
	return e
}
