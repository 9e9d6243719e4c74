package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"envdamage-service/database"
	"envdamage-service/models"
)

// ListCategories returns the categories offered in selection lists. Only
// active categories are listed unless ?all=true is given.
func (h *Handlers) ListCategories(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	categories, err := h.service.ListCategories(c.Request.Context(), activeOnly)
	if err != nil {
		log.Errorf("Failed to list categories: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a new damage category.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		log.Errorf("Failed to create category: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory replaces the mutable fields of a category. Deactivating a
// category hides it from selection lists but keeps it usable by id.
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid category id"})
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "category not found"})
			return
		}
		log.Errorf("Failed to update category %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update category"})
		return
	}
	c.JSON(http.StatusOK, category)
}
