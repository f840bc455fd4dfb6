package controllers

import (
	"net/http"

	"restopos-backend/services"
	"restopos-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetMenu returns active categories with their available items, optionally
// filtered by ?categoryId=. A ?ref= query looks a single item up by its
// reference number instead.
func (h *Handler) GetMenu(c *gin.Context) {
	if ref := c.Query("ref"); ref != "" {
		item, err := h.Catalog.FindByReference(c.Request.Context(), ref)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
		return
	}

	var categoryID *uuid.UUID
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	menu, err := h.Catalog.ListMenu(c.Request.Context(), categoryID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := pathID(c, "id", "menu item")
	if !ok {
		return
	}
	item, err := h.Catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	category, err := h.Catalog.CreateCategory(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var input services.MenuItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := h.Catalog.CreateMenuItem(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type AvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

func (h *Handler) SetItemAvailability(c *gin.Context) {
	id, ok := pathID(c, "id", "menu item")
	if !ok {
		return
	}
	var input AvailabilityInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := h.Catalog.SetItemAvailability(c.Request.Context(), id, *input.IsAvailable)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) GetCombos(c *gin.Context) {
	combos, err := h.Catalog.ListCombos(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, combos)
}

func (h *Handler) CreateCombo(c *gin.Context) {
	var input services.ComboInput
	if !bindJSON(c, &input) {
		return
	}
	combo, err := h.Catalog.CreateCombo(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, combo)
}

func (h *Handler) GetModifiers(c *gin.Context) {
	modifiers, err := h.Catalog.ListModifiers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, modifiers)
}

func (h *Handler) CreateModifier(c *gin.Context) {
	var input services.ModifierInput
	if !bindJSON(c, &input) {
		return
	}
	modifier, err := h.Catalog.CreateModifier(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, modifier)
}
