package controllers

import (
	"errors"
	"net/http"
	"strings"

	"restopos-backend/models"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	IsVIP     bool   `json:"isVip"`
	Notes     string `json:"notes"`
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if !bindJSON(c, &input) {
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	phone := utils.NormalizePhone(input.Phone)

	var existing models.Customer
	if err := h.DB.Where("phone = ?", phone).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.fail(c, err)
		return
	}

	customer := models.Customer{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     phone,
		Email:     input.Email,
		IsVIP:     input.IsVIP,
		Notes:     input.Notes,
	}
	if err := h.DB.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers, optionally filtered by ?search= on name or phone.
func (h *Handler) GetCustomers(c *gin.Context) {
	query := h.DB.Model(&models.Customer{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := query.Order("first_name, last_name").Limit(200).Find(&customers).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	var customer models.Customer
	if err := h.DB.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			h.fail(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}
