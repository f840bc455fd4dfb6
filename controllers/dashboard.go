package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns today's figures for the floor manager.
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
