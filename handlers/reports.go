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

// ListReports returns one page of reports, newest first. Page is selected
// with the ?page query parameter.
func (h *Handlers) ListReports(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid page"})
		return
	}

	resp, err := h.service.ListReports(c.Request.Context(), page, h.pageSize)
	if err != nil {
		log.Errorf("Failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateReport validates and stores a new report. The damage amount is
// computed server-side and the case number is generated here; both are
// returned with the created report.
func (h *Handlers) CreateReport(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:  "validation failed",
				Fields: map[string]string{"damage_category_id": "selected damage category is invalid"},
			})
			return
		}
		log.Errorf("Failed to create report for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetReport returns a single report with its category resolved.
func (h *Handlers) GetReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
			return
		}
		log.Errorf("Failed to get report %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport replaces the incident parameters of a report and recomputes
// the stored damage amount.
func (h *Handlers) UpdateReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	var req models.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	report, err := h.service.UpdateReport(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report or category not found"})
		case errors.Is(err, database.ErrReportClosed):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "closed reports cannot be edited"})
		default:
			log.Errorf("Failed to update report %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update report"})
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report.
func (h *Handlers) DeleteReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReport(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
			return
		}
		log.Errorf("Failed to delete report %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete report"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "report deleted successfully"})
}

func reportID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid report id"})
		return 0, false
	}
	return id, true
}
