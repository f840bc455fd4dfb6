// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"restopos-backend/models"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // email or phone
	Password   string `json:"password" binding:"required"`
}

// Register bootstraps the first admin account. Once any staff exists, new
// accounts are created by an admin through CreateStaff.
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		h.fail(c, err)
		return
	}
	if count > 0 {
		utils.RespondWithError(c, http.StatusForbidden, "Registration is closed, ask an admin for an account")
		return
	}

	input.Role = models.RoleAdmin
	user, ok := h.createUser(c, input)
	if !ok {
		return
	}
	h.issueToken(c, http.StatusCreated, user)
}

// CreateStaff adds a staff account with the given role.
func (h *Handler) CreateStaff(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}
	if !utils.Contains(models.Roles, input.Role) {
		utils.RespondWithError(c, http.StatusBadRequest, "Role must be one of "+strings.Join(models.Roles, ", "))
		return
	}
	user, ok := h.createUser(c, input)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) GetStaff(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("name").Find(&users).Error; err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context, input RegisterInput) (*models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return nil, false
	}

	var existing models.User
	err := h.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return nil, false
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		h.fail(c, err)
		return nil, false
	}

	user := models.User{
		Email:    email,
		Phone:    utils.NormalizePhone(input.Phone),
		Name:     strings.TrimSpace(input.Name),
		Password: input.Password, // hashed in BeforeCreate
		Role:     input.Role,
		IsActive: true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.fail(c, err)
		return nil, false
	}
	return &user, true
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	var user models.User
	err := h.DB.Where("(email = ? OR phone = ?) AND is_active = ?", strings.ToLower(identifier), utils.NormalizePhone(identifier), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			h.fail(c, err)
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	if err := h.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		h.Logger.Warn("failed to record last login", "user", user.ID, "error", err)
	}
	user.LastLogin = &now

	h.issueToken(c, http.StatusOK, &user)
}

// Me returns the signed-in staff member.
func (h *Handler) Me(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", currentUser(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := utils.GenerateToken(h.Auth.Secret, user.ID.String(), user.Role, h.Auth.TTL)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.SetCookie("token", token, int(h.Auth.TTL.Seconds()), "/", "", true, true)
	c.JSON(status, gin.H{
		"token": token,
		"user":  user,
	})
}
