package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"restopos-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendSMS(to, body string) (string, error) {
	args := m.Called(to, body)
	return args.String(0), args.Error(1)
}

func settledBill(t *testing.T, f *posFixture) *models.Bill {
	t.Helper()
	mains := f.category(t, "Mains")
	item := f.menuItem(t, mains.ID, "1", "Sekuwa", "300")
	order := f.openWith(t, f.table(t, "T1"), item)
	_, err := f.orders.ApplyDiscount(context.Background(), order.ID, decimal.NewFromInt(30), f.staff)
	require.NoError(t, err)
	result, err := f.billing.Settle(context.Background(), order.ID, "cash", nil, f.staff)
	require.NoError(t, err)
	return result.Bill
}

func TestSendReceipt(t *testing.T) {
	f := newPOS(t)
	bill := settledBill(t, f)
	sender := &mockSender{}
	sender.On("SendSMS", "+9779812345678", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Total Rs. 300.00") && strings.Contains(body, "Discount -Rs. 30.00")
	})).Return("SM123", nil)
	receipts := NewReceiptService(f.db, sender, "Thamel Kitchen", "Rs.", f.deps)

	receipt, err := receipts.SendReceipt(context.Background(), bill.ID, "+977 981-234-5678", f.staff)
	require.NoError(t, err)
	assert.Equal(t, "sent", receipt.Status)
	assert.Equal(t, "SM123", receipt.ProviderID)
	assert.Regexp(t, `^RCP20260310\d{6}$`, receipt.ReceiptNumber)
	sender.AssertExpectations(t)

	list, err := receipts.ListReceipts(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSendReceiptRecordsFailure(t *testing.T) {
	f := newPOS(t)
	bill := settledBill(t, f)
	sender := &mockSender{}
	sender.On("SendSMS", mock.Anything, mock.Anything).Return("", errors.New("unreachable handset"))
	receipts := NewReceiptService(f.db, sender, "Thamel Kitchen", "Rs.", f.deps)

	receipt, err := receipts.SendReceipt(context.Background(), bill.ID, "+9779812345678", f.staff)
	require.NoError(t, err)
	assert.Equal(t, "failed", receipt.Status)
	assert.Equal(t, "unreachable handset", receipt.ErrorMessage)
}

func TestSendReceiptValidation(t *testing.T) {
	f := newPOS(t)
	bill := settledBill(t, f)
	receipts := NewReceiptService(f.db, DisabledSender{}, "Thamel Kitchen", "Rs.", f.deps)

	_, err := receipts.SendReceipt(context.Background(), bill.ID, "12", f.staff)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = receipts.SendReceipt(context.Background(), uuid.New(), "+9779812345678", f.staff)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormatReceipt(t *testing.T) {
	bill := &models.Bill{
		BillNumber:    "BILL20260310000001",
		Subtotal:      decimal.NewFromInt(500),
		ServiceCharge: decimal.NewFromInt(50),
		TotalAmount:   decimal.NewFromInt(550),
		Order: &models.Order{Items: []models.OrderItem{
			{Name: "Momo", Quantity: 2, TotalPrice: decimal.NewFromInt(500)},
		}},
	}

	got := FormatReceipt("Thamel Kitchen", "Rs.", bill)

	assert.Equal(t, "Thamel Kitchen\n"+
		"Bill BILL20260310000001\n"+
		"2 x Momo Rs. 500.00\n"+
		"Subtotal Rs. 500.00\n"+
		"Service Rs. 50.00\n"+
		"Total Rs. 550.00\n"+
		"Thank you!", got)
}
