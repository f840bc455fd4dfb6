package controllers

import (
	"net/http"

	"restopos-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) GetTables(c *gin.Context) {
	tables, err := h.Tables.ListTables(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) CreateTable(c *gin.Context) {
	var input services.TableInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := h.Tables.CreateTable(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *Handler) GetTable(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}
	table, err := h.Tables.GetTable(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type TableStatusInput struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetTableStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}
	var input TableStatusInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := h.Tables.SetStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type AssignServerInput struct {
	ServerID uuid.UUID `json:"serverId" binding:"required"`
}

func (h *Handler) AssignServer(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}
	var input AssignServerInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := h.Tables.AssignServer(c.Request.Context(), id, input.ServerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// OpenTableOrder returns the table's open order, creating one when the table
// is free. It answers 201 only when a new order was opened.
func (h *Handler) OpenTableOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}
	order, created, err := h.Orders.FindOrCreateOrder(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, order)
}

func (h *Handler) GetTableOrder(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}
	order, err := h.Orders.ActiveOrderForTable(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
