package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restopos-backend/models"
	"restopos-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QRGenerator renders the code printed on a bill.
type QRGenerator interface {
	Generate(billNumber string) ([]byte, error)
}

type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(billNumber string) ([]byte, error) {
	data := fmt.Sprintf("%s/bills/%s", strings.TrimRight(g.BaseURL, "/"), billNumber)
	return qrcode.Encode(data, qrcode.Medium, 256)
}

// BillingService settles orders into bills and payments and handles refunds.
type BillingService struct {
	db      *gorm.DB
	methods []string
	qr      QRGenerator
	deps    Deps
}

func NewBillingService(db *gorm.DB, methods []string, qr QRGenerator, deps Deps) *BillingService {
	return &BillingService{db: db, methods: methods, qr: qr, deps: deps.withDefaults()}
}

// Settlement is the outcome of settling an order.
type Settlement struct {
	Order    *models.Order    `json:"order"`
	Bill     *models.Bill     `json:"bill"`
	Payments []models.Payment `json:"payments"`
	Change   decimal.Decimal  `json:"change"`
}

// splitMethod labels a settlement paid with more than one tender.
const splitMethod = "split"

// Tender is one part of a split settlement.
type Tender struct {
	Method string          `json:"paymentMethod" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// Settle pays an order in full with one payment method. When received is
// given it must cover the total and the difference is returned as change.
func (s *BillingService) Settle(ctx context.Context, orderID uuid.UUID, method string, received *decimal.Decimal, actor uuid.UUID) (*Settlement, error) {
	if !utils.Contains(s.methods, method) {
		return nil, invalid("invalid payment method %q", method)
	}
	if received != nil && received.IsNegative() {
		return nil, invalid("received amount cannot be negative")
	}

	change := decimal.Zero
	result, err := s.settle(ctx, orderID, actor, func(order *models.Order) ([]Tender, error) {
		if received != nil {
			if received.LessThan(order.Total) {
				return nil, invalid("received %s is less than the total %s", received.StringFixed(2), order.Total.StringFixed(2))
			}
			change = received.Sub(order.Total)
		}
		return []Tender{{Method: method, Amount: order.Total}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Change = change
	return result, nil
}

// SettleSplit pays an order with several tenders that must add up to the total.
func (s *BillingService) SettleSplit(ctx context.Context, orderID uuid.UUID, tenders []Tender, actor uuid.UUID) (*Settlement, error) {
	if len(tenders) == 0 {
		return nil, invalid("at least one tender is required")
	}
	for _, t := range tenders {
		if !utils.Contains(s.methods, t.Method) {
			return nil, invalid("invalid payment method %q", t.Method)
		}
		if !t.Amount.IsPositive() {
			return nil, invalid("tender amounts must be positive")
		}
	}

	return s.settle(ctx, orderID, actor, func(order *models.Order) ([]Tender, error) {
		sum := decimal.Zero
		for _, t := range tenders {
			sum = sum.Add(t.Amount)
		}
		if !sum.Round(2).Equal(order.Total) {
			return nil, invalid("tenders add up to %s but the total is %s", sum.StringFixed(2), order.Total.StringFixed(2))
		}
		return tenders, nil
	})
}

func (s *BillingService) settle(ctx context.Context, orderID, actor uuid.UUID, plan func(*models.Order) ([]Tender, error)) (*Settlement, error) {
	unlock, tableID, err := lockOrderKeys(ctx, s.db, s.deps.Locker, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		bill     models.Bill
		payments []models.Payment
		table    *models.Table
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID, tableID)
		if err != nil {
			return err
		}
		if order.Status == models.StatusCompleted {
			return conflict("order %s is already settled", order.OrderNumber)
		}
		if !order.IsOpen() {
			return conflict("order %s is %s", order.OrderNumber, order.Status)
		}
		var lines int64
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error; err != nil {
			return err
		}
		if lines == 0 {
			return invalid("order %s has no items", order.OrderNumber)
		}
		tenders, err := plan(order)
		if err != nil {
			return err
		}

		now := s.deps.Now()
		bill = models.Bill{
			OrderID:        order.ID,
			Subtotal:       order.Subtotal,
			DiscountAmount: order.DiscountAmount,
			TaxAmount:      order.TaxAmount,
			ServiceCharge:  order.ServiceCharge,
			TotalAmount:    order.Total,
			PaidAmount:     order.Total,
			Balance:        decimal.Zero,
			IsPaid:         true,
			IsSplit:        len(tenders) > 1,
			CreatedByID:    actorPtr(actor),
			CreatedAt:      now,
			PaidAt:         &now,
		}
		if err := createNumbered(tx, s.deps.Number, prefixBill, now, func(n string) { bill.BillNumber = n }, &bill); err != nil {
			return err
		}

		for _, t := range tenders {
			p := models.Payment{
				OrderID:       order.ID,
				PaymentMethod: t.Method,
				Amount:        t.Amount.Round(2),
				Status:        models.PaymentCompleted,
				Notes:         t.Notes,
				ProcessedByID: actorPtr(actor),
				CreatedAt:     now,
				CompletedAt:   &now,
			}
			if err := createNumbered(tx, s.deps.Number, prefixPayment, now, func(n string) { p.PaymentNumber = n }, &p); err != nil {
				return err
			}
			if bill.IsSplit {
				split := models.SplitPayment{BillID: bill.ID, PaymentID: p.ID, Amount: p.Amount, Notes: t.Notes, CreatedAt: now}
				if err := tx.Create(&split).Error; err != nil {
					return err
				}
			}
			payments = append(payments, p)
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":        models.StatusCompleted,
			"completed_at":  now,
			"open_table_id": nil,
			"updated_at":    now,
		}).Error; err != nil {
			return err
		}
		if err := recordStatus(tx, order.ID, models.StatusCompleted, actor, "settled with bill "+bill.BillNumber, now); err != nil {
			return err
		}

		if order.TableID != nil {
			table, err = loadTable(tx, *order.TableID)
			if err != nil {
				return err
			}
			if err := releaseTable(tx, table); err != nil {
				return err
			}
		}

		if order.CustomerID != nil {
			if err := tx.Model(&models.Customer{}).Where("id = ?", *order.CustomerID).
				Updates(map[string]interface{}{
					"visit_count": gorm.Expr("visit_count + ?", 1),
					"total_spent": gorm.Expr("total_spent + ?", order.Total),
					"last_visit":  now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := fetchOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	settledAs := splitMethod
	if len(payments) == 1 {
		settledAs = payments[0].PaymentMethod
	}
	s.deps.Metrics.OrderSettled(settledAs)
	for _, p := range payments {
		s.deps.Metrics.RevenueCollected(p.PaymentMethod, p.Amount)
	}
	s.deps.Logger.Info("order settled",
		"order", order.OrderNumber,
		"bill", bill.BillNumber,
		"total", bill.TotalAmount.StringFixed(2),
		"payments", len(payments),
		"actor", actor,
	)
	settled := orderEvent(EventOrderSettled, order)
	if len(payments) == 1 {
		settled.Method = payments[0].PaymentMethod
	}
	events := []Event{settled}
	if table != nil {
		events = append(events, tableEvent(table))
	}
	s.deps.publish(ctx, events...)
	refreshOccupancy(ctx, s.db, s.deps)

	return &Settlement{Order: order, Bill: &bill, Payments: payments, Change: decimal.Zero}, nil
}

// Refund returns part or all of a completed payment. Once the refunds reach
// the payment amount the payment is marked refunded.
func (s *BillingService) Refund(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal, reason string, actor uuid.UUID) (*models.Refund, error) {
	if !amount.IsPositive() {
		return nil, invalid("refund amount must be positive")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, invalid("a refund reason is required")
	}

	unlock, err := lockKeys(ctx, s.deps.Locker, paymentKey(paymentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		refund  models.Refund
		payment models.Payment
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, "id = ?", paymentID).Error; err != nil {
			return lookupErr(err, "payment")
		}
		switch payment.Status {
		case models.PaymentCompleted:
		case models.PaymentRefunded:
			return conflict("payment %s is already refunded", payment.PaymentNumber)
		default:
			return conflict("payment %s is %s", payment.PaymentNumber, payment.Status)
		}

		var row struct{ Total decimal.Decimal }
		if err := tx.Model(&models.Refund{}).Select("COALESCE(SUM(amount), 0) AS total").
			Where("payment_id = ?", payment.ID).Scan(&row).Error; err != nil {
			return err
		}
		refunded := row.Total.Round(2).Add(amount)
		if refunded.GreaterThan(payment.Amount) {
			return invalid("refunds would exceed the payment amount %s", payment.Amount.StringFixed(2))
		}

		now := s.deps.Now()
		refund = models.Refund{
			PaymentID:     payment.ID,
			Amount:        amount.Round(2),
			Reason:        strings.TrimSpace(reason),
			ProcessedByID: actorPtr(actor),
			CreatedAt:     now,
		}
		if err := createNumbered(tx, s.deps.Number, prefixRefund, now, func(n string) { refund.RefundNumber = n }, &refund); err != nil {
			return err
		}
		if refunded.Equal(payment.Amount) {
			payment.Status = models.PaymentRefunded
			return tx.Model(&payment).Update("status", models.PaymentRefunded).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("payment refunded", "payment", payment.PaymentNumber, "refund", refund.RefundNumber, "amount", refund.Amount.StringFixed(2), "actor", actor)
	amt := refund.Amount
	s.deps.publish(ctx, Event{
		Type:    EventPaymentRefunded,
		OrderID: payment.OrderID.String(),
		Status:  payment.Status,
		Amount:  &amt,
		Method:  payment.PaymentMethod,
	})
	return &refund, nil
}

func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.WithContext(ctx).Preload("SplitPayments").First(&bill, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "bill")
	}
	return &bill, nil
}

func (s *BillingService) BillForOrder(ctx context.Context, orderID uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.WithContext(ctx).Preload("SplitPayments").First(&bill, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("order has not been billed")
		}
		return nil, err
	}
	return &bill, nil
}

func (s *BillingService) PaymentsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).Preload("Refunds").
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&payments).Error
	return payments, err
}

// BillQR renders a PNG QR code linking to the bill.
func (s *BillingService) BillQR(ctx context.Context, billID uuid.UUID) ([]byte, error) {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	png, err := s.qr.Generate(bill.BillNumber)
	if err != nil {
		return nil, fmt.Errorf("generate qr for %s: %w", bill.BillNumber, err)
	}
	return png, nil
}
