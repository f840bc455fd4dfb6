// services/receipt_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restopos-backend/models"
	"restopos-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// MessageSender delivers a text message and returns the provider message id.
type MessageSender interface {
	SendSMS(to, body string) (string, error)
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSid, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: from,
	}
}

func (t *TwilioSender) SendSMS(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "", nil
}

// DisabledSender is used when no SMS provider is configured.
type DisabledSender struct{}

func (DisabledSender) SendSMS(string, string) (string, error) {
	return "", errors.New("sms delivery is not configured")
}

// ReceiptService texts settled bills to customers and logs every attempt.
type ReceiptService struct {
	db         *gorm.DB
	sender     MessageSender
	restaurant string
	currency   string
	deps       Deps
}

func NewReceiptService(db *gorm.DB, sender MessageSender, restaurant, currency string, deps Deps) *ReceiptService {
	return &ReceiptService{
		db:         db,
		sender:     sender,
		restaurant: restaurant,
		currency:   currency,
		deps:       deps.withDefaults(),
	}
}

// SendReceipt texts the bill to phone. A provider failure is recorded on the
// returned receipt rather than returned as an error.
func (s *ReceiptService) SendReceipt(ctx context.Context, billID uuid.UUID, phone string, actor uuid.UUID) (*models.Receipt, error) {
	if !utils.ValidatePhone(phone) {
		return nil, invalid("invalid phone number")
	}
	phone = utils.NormalizePhone(phone)

	var bill models.Bill
	err := s.db.WithContext(ctx).
		Preload("Order.Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&bill, "id = ?", billID).Error
	if err != nil {
		return nil, lookupErr(err, "bill")
	}
	if !bill.IsPaid {
		return nil, conflict("bill %s is not paid", bill.BillNumber)
	}

	body := FormatReceipt(s.restaurant, s.currency, &bill)
	receipt := models.Receipt{
		BillID:      bill.ID,
		ReceiptType: "digital",
		SentTo:      phone,
		Message:     body,
		Channel:     "sms",
		SentByID:    actorPtr(actor),
		CreatedAt:   s.deps.Now(),
	}

	sid, sendErr := s.sender.SendSMS(phone, body)
	if sendErr != nil {
		receipt.Status = "failed"
		receipt.ErrorMessage = sendErr.Error()
		s.deps.Logger.Warn("receipt delivery failed", "bill", bill.BillNumber, "error", sendErr)
	} else {
		receipt.Status = "sent"
		receipt.ProviderID = sid
	}

	err = createNumbered(s.db.WithContext(ctx), s.deps.Number, prefixReceipt, receipt.CreatedAt,
		func(n string) { receipt.ReceiptNumber = n }, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context, billID uuid.UUID) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).Where("bill_id = ?", billID).Order("created_at").Find(&receipts).Error
	return receipts, err
}

// FormatReceipt renders a bill as a plain-text receipt.
func FormatReceipt(restaurant, currency string, bill *models.Bill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBill %s\n", restaurant, bill.BillNumber)
	if bill.Order != nil {
		for _, item := range bill.Order.Items {
			fmt.Fprintf(&b, "%d x %s %s %s\n", item.Quantity, item.Name, currency, item.TotalPrice.StringFixed(2))
		}
	}
	fmt.Fprintf(&b, "Subtotal %s %s\n", currency, bill.Subtotal.StringFixed(2))
	if bill.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount -%s %s\n", currency, bill.DiscountAmount.StringFixed(2))
	}
	if bill.ServiceCharge.IsPositive() {
		fmt.Fprintf(&b, "Service %s %s\n", currency, bill.ServiceCharge.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total %s %s\nThank you!", currency, bill.TotalAmount.StringFixed(2))
	return b.String()
}
