package controllers

import (
	"net/http"
	"strconv"

	"restopos-backend/services"

	"github.com/gin-gonic/gin"
)

// GetSalesReport answers ?range=today|yesterday|this_week|this_month|last_month|custom.
// Custom ranges take ?startDate= and ?endDate= as YYYY-MM-DD, both inclusive.
func (h *Handler) GetSalesReport(c *gin.Context) {
	r, err := services.ResolveRange(c.Query("range"), c.Query("startDate"), c.Query("endDate"), h.Reports.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	report, err := h.Reports.SalesReport(c.Request.Context(), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSnapshots lists stored daily sales snapshots, newest first.
func (h *Handler) GetSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	snapshots, err := h.Reports.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}
