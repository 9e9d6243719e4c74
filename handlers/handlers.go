package handlers

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"envdamage-service/database"
	"envdamage-service/models"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	service  *database.ReportService
	pageSize int
}

// NewHandlers creates a new handlers instance
func NewHandlers(service *database.ReportService, pageSize int) *Handlers {
	return &Handlers{
		service:  service,
		pageSize: pageSize,
	}
}

// HealthCheck returns the service health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "envdamage-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Dashboard returns the active categories, the most recent reports and the
// aggregate statistics in one payload.
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.service.ListCategories(ctx, true)
	if err != nil {
		log.Errorf("Failed to list categories for dashboard: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load dashboard"})
		return
	}

	recent, err := h.service.RecentReports(ctx, 5)
	if err != nil {
		log.Errorf("Failed to load recent reports: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load dashboard"})
		return
	}

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.Errorf("Failed to aggregate statistics: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":     categories,
		"recent_reports": recent,
		"statistics":     stats,
	})
}
