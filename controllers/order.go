package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetOrders lists orders. Filters: ?status= (or "open"), ?type=, ?tableId=, ?limit=.
func (h *Handler) GetOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status:    c.Query("status"),
		OrderType: c.Query("type"),
	}
	if raw := c.Query("tableId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid table ID")
			return
		}
		filter.TableID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = n
	}

	orders, err := h.Orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CreateOrder opens a takeaway or delivery order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.CreateOrder(c.Request.Context(), input, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type CancelOrderInput struct {
	Reason string `json:"reason"`
}

// CancelOrder discards an open order and frees its table.
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input CancelOrderInput
	// the body is optional
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := h.Orders.CancelOrder(c.Request.Context(), id, currentUser(c), input.Reason); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

type AddItemInput struct {
	MenuItemID          uuid.UUID `json:"menuItemId"`
	ComboID             uuid.UUID `json:"comboId"`
	Quantity            *int      `json:"quantity"`
	SpecialInstructions string    `json:"specialInstructions"`
}

// quantity defaults to 1 only when the field is absent.
func (in AddItemInput) quantity() int {
	if in.Quantity == nil {
		return 1
	}
	return *in.Quantity
}

func (h *Handler) AddOrderItem(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input AddItemInput
	if !bindJSON(c, &input) {
		return
	}
	if input.MenuItemID == uuid.Nil {
		utils.RespondWithError(c, http.StatusBadRequest, "menuItemId is required")
		return
	}
	order, err := h.Orders.AddItem(c.Request.Context(), id, input.MenuItemID, input.quantity(), input.SpecialInstructions, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) AddOrderCombo(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input AddItemInput
	if !bindJSON(c, &input) {
		return
	}
	if input.ComboID == uuid.Nil {
		utils.RespondWithError(c, http.StatusBadRequest, "comboId is required")
		return
	}
	order, err := h.Orders.AddCombo(c.Request.Context(), id, input.ComboID, input.quantity(), input.SpecialInstructions, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *Handler) UpdateOrderItem(c *gin.Context) {
	id, ok := pathID(c, "id", "order item")
	if !ok {
		return
	}
	var input QuantityInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.UpdateItemQuantity(c.Request.Context(), id, input.Quantity, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) RemoveOrderItem(c *gin.Context) {
	id, ok := pathID(c, "id", "order item")
	if !ok {
		return
	}
	order, err := h.Orders.RemoveItem(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ConfirmOrder sends a pending order to the kitchen.
func (h *Handler) ConfirmOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.Orders.ConfirmOrder(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type OrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input OrderStatusInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.AdvanceStatus(c.Request.Context(), id, input.Status, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type MoveOrderInput struct {
	TableID uuid.UUID `json:"tableId" binding:"required"`
}

func (h *Handler) MoveOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input MoveOrderInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.MoveTable(c.Request.Context(), id, input.TableID, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type DiscountInput struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) ApplyDiscount(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input DiscountInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.ApplyDiscount(c.Request.Context(), id, input.Amount, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type AttachCustomerInput struct {
	CustomerID uuid.UUID `json:"customerId" binding:"required"`
}

func (h *Handler) AttachCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	var input AttachCustomerInput
	if !bindJSON(c, &input) {
		return
	}
	order, err := h.Orders.AttachCustomer(c.Request.Context(), id, input.CustomerID, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	history, err := h.Orders.StatusHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
