package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"envdamage-service/calculator"
	"envdamage-service/database"
	"envdamage-service/models"
)

// CalculateDamage computes a damage estimate without persisting anything.
// Validation happens here; the calculator itself never fails.
func (h *Handlers) CalculateDamage(c *gin.Context) {
	var req models.CalculateDamageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	category, err := h.service.GetCategory(c.Request.Context(), req.DamageCategoryID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:  "validation failed",
				Fields: map[string]string{"damage_category_id": "selected damage category is invalid"},
			})
			return
		}
		log.Errorf("Failed to resolve category %d: %v", req.DamageCategoryID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to resolve damage category"})
		return
	}

	res := calculator.Compute(category, calculator.IncidentParams{
		AffectedArea:    req.AffectedArea,
		PollutantVolume: req.PollutantVolume,
		AffectedAnimals: req.AffectedAnimals,
		SeverityLevel:   models.SeverityLevel(req.SeverityLevel),
	})

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"calculated_damage": res.Amount.StringFixed(2),
		"breakdown":         res.Breakdown,
	})
}
