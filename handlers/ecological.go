package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang/geo/s2"

	"envdamage-service/models"
)

// Cell level for ecological lookups, roughly 10km cells.
const ecoCellLevel = 10

var (
	protectionStatuses = []string{"National Park", "Wildlife Reserve", "Marine Sanctuary", "None"}
	ecosystemTypes     = []string{"forest", "wetland", "marine", "urban", "agricultural"}
	biodiversityLevels = []string{"low", "medium", "high"}
	soilTypes          = []string{"clay", "sand", "loam", "rocky"}
	climateZones       = []string{"temperate", "tropical", "arid", "polar"}
)

// EcologicalData returns ecological attributes for a coordinate. This is a
// placeholder for real protected-area and biodiversity APIs: attributes are
// derived deterministically from the S2 cell covering the location, so the
// same area always reports the same data.
func (h *Handlers) EcologicalData(c *gin.Context) {
	var req models.EcologicalDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(*req.Latitude, *req.Longitude)).Parent(ecoCellLevel)
	seed := uint64(cell)

	protected := seed%10 < 3
	status := "None"
	if protected {
		status = pick(seed>>4, protectionStatuses[:3])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"s2_cell":                    cell.ToToken(),
			"protected_area":             protected,
			"protection_status":          status,
			"ecosystem_type":             pick(seed>>8, ecosystemTypes),
			"biodiversity_level":         pick(seed>>12, biodiversityLevels),
			"endangered_species_present": seed>>16%10 < 2,
			"water_sources_nearby":       seed>>20%10 < 6,
			"soil_type":                  pick(seed>>24, soilTypes),
			"elevation":                  int(seed >> 28 % 2001),
			"climate_zone":               pick(seed>>40, climateZones),
		},
	})
}

func pick(seed uint64, options []string) string {
	return options[seed%uint64(len(options))]
}
