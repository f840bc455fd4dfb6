package controllers

import (
	"net/http"

	"restopos-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SettleInput struct {
	PaymentMethod  string           `json:"paymentMethod" binding:"required"`
	AmountReceived *decimal.Decimal `json:"amountReceived"`
}

// SettleOrder bills an order and takes a single payment for it.
func (h *Handler) SettleOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input SettleInput
	if !bindJSON(c, &input) {
		return
	}
	result, err := h.Billing.Settle(c.Request.Context(), id, input.PaymentMethod, input.AmountReceived, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type SplitSettleInput struct {
	Payments []services.Tender `json:"payments" binding:"required,min=1,dive"`
}

func (h *Handler) SettleSplit(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input SplitSettleInput
	if !bindJSON(c, &input) {
		return
	}
	result, err := h.Billing.SettleSplit(c.Request.Context(), id, input.Payments, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetOrderBill(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	bill, err := h.Billing.BillForOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *Handler) GetOrderPayments(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	payments, err := h.Billing.PaymentsForOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) GetBill(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// GetBillQR serves a PNG QR code linking to the bill.
func (h *Handler) GetBillQR(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}
	png, err := h.Billing.BillQR(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type ReceiptInput struct {
	Phone string `json:"phone" binding:"required"`
}

func (h *Handler) SendReceipt(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}
	var input ReceiptInput
	if !bindJSON(c, &input) {
		return
	}
	receipt, err := h.Receipts.SendReceipt(c.Request.Context(), id, input.Phone, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) GetReceipts(c *gin.Context) {
	id, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}
	receipts, err := h.Receipts.ListReceipts(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipts)
}

type RefundInput struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required"`
}

func (h *Handler) RefundPayment(c *gin.Context) {
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	var input RefundInput
	if !bindJSON(c, &input) {
		return
	}
	refund, err := h.Billing.Refund(c.Request.Context(), id, input.Amount, input.Reason, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}
