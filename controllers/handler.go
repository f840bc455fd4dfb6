package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"restopos-backend/config"
	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler serves the POS HTTP API.
type Handler struct {
	DB       *gorm.DB
	Orders   *services.OrderService
	Tables   *services.TableService
	Billing  *services.BillingService
	Receipts *services.ReceiptService
	Catalog  *services.CatalogService
	Reports  *services.ReportService
	Auth     AuthConfig
	Logger   *slog.Logger
}

type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

// fail maps a service error onto a status code. Unexpected errors are
// logged and reported generically.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		h.Logger.Error("request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"user", c.GetString("userId"),
			"error", err,
		)
		utils.RespondWithError(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}

// Health reports whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	if err := config.CheckDB(c.Request.Context(), h.DB); err != nil {
		h.Logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func currentUser(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString("userId"))
	return id
}

func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}
