package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// UnitType is the measurable unit a damage category is priced in.
type UnitType string

const (
	UnitTypeSqm        UnitType = "sqm"
	UnitTypeCubicMeter UnitType = "cubic_meter"
	UnitTypeAnimal     UnitType = "animal"
)

// ParseUnitType validates a unit type coming from the API boundary.
func ParseUnitType(s string) (UnitType, error) {
	switch UnitType(s) {
	case UnitTypeSqm, UnitTypeCubicMeter, UnitTypeAnimal:
		return UnitType(s), nil
	}
	return "", fmt.Errorf("unknown unit type %q", s)
}

// SeverityLevel is the per-incident qualitative assessment.
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "low"
	SeverityMedium   SeverityLevel = "medium"
	SeverityHigh     SeverityLevel = "high"
	SeverityCritical SeverityLevel = "critical"
)

// ParseSeverityLevel validates a severity level coming from the API boundary.
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	switch SeverityLevel(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return SeverityLevel(s), nil
	}
	return "", fmt.Errorf("unknown severity level %q", s)
}

// Multiplier maps the severity level to its numeric factor. Unknown levels
// fall back to the medium multiplier; the boundary rejects them before they
// get here, the fallback keeps the calculation always-available for rows
// that predate validation.
func (s SeverityLevel) Multiplier() decimal.Decimal {
	switch s {
	case SeverityLow:
		return decimal.NewFromFloat(0.5)
	case SeverityMedium:
		return decimal.NewFromFloat(1.0)
	case SeverityHigh:
		return decimal.NewFromFloat(2.0)
	case SeverityCritical:
		return decimal.NewFromFloat(5.0)
	default:
		return decimal.NewFromFloat(1.0)
	}
}

// ReportStatus is the lifecycle state of an environmental report.
type ReportStatus string

const (
	StatusDraft     ReportStatus = "draft"
	StatusSubmitted ReportStatus = "submitted"
	StatusReviewed  ReportStatus = "reviewed"
	StatusClosed    ReportStatus = "closed"
)

// ParseReportStatus validates a report status coming from the API boundary.
func ParseReportStatus(s string) (ReportStatus, error) {
	switch ReportStatus(s) {
	case StatusDraft, StatusSubmitted, StatusReviewed, StatusClosed:
		return ReportStatus(s), nil
	}
	return "", fmt.Errorf("unknown report status %q", s)
}

// DamageCategory defines how a class of environmental harm is priced.
type DamageCategory struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	BaseCostPerUnit    decimal.Decimal `json:"base_cost_per_unit"`
	UnitType           UnitType        `json:"unit_type"`
	SeverityMultiplier decimal.Decimal `json:"severity_multiplier"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// EnvironmentalReport is a persisted incident report. CalculatedDamage is
// always a cache of the last computation, never an independent source of
// truth.
type EnvironmentalReport struct {
	ID               int64               `json:"id"`
	CaseNumber       string              `json:"case_number"`
	UserID           string              `json:"user_id"`
	DamageCategoryID int64               `json:"damage_category_id"`
	Location         string              `json:"location"`
	Latitude         *float64            `json:"latitude,omitempty"`
	Longitude        *float64            `json:"longitude,omitempty"`
	AffectedArea     decimal.NullDecimal `json:"affected_area,omitempty"`
	PollutantVolume  decimal.NullDecimal `json:"pollutant_volume,omitempty"`
	AffectedAnimals  *int64              `json:"affected_animals,omitempty"`
	SeverityLevel    SeverityLevel       `json:"severity_level"`
	CalculatedDamage decimal.Decimal     `json:"calculated_damage"`
	EcologicalData   json.RawMessage     `json:"ecological_data,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	AIAnalysis       json.RawMessage     `json:"ai_analysis,omitempty"`
	Status           ReportStatus        `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`

	// Resolved category, populated on single-report reads.
	DamageCategory *DamageCategory `json:"damage_category,omitempty"`
}

// CalculateDamageRequest is the body of POST /calculate-damage.
type CalculateDamageRequest struct {
	DamageCategoryID int64    `json:"damage_category_id" binding:"required"`
	AffectedArea     *float64 `json:"affected_area" binding:"omitempty,gte=0"`
	PollutantVolume  *float64 `json:"pollutant_volume" binding:"omitempty,gte=0"`
	AffectedAnimals  *int64   `json:"affected_animals" binding:"omitempty,gte=0"`
	SeverityLevel    string   `json:"severity_level" binding:"required,oneof=low medium high critical"`
}

// CreateReportRequest is the body of POST /reports.
type CreateReportRequest struct {
	DamageCategoryID int64           `json:"damage_category_id" binding:"required"`
	Location         string          `json:"location" binding:"required,max=255"`
	Latitude         *float64        `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude        *float64        `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	AffectedArea     *float64        `json:"affected_area" binding:"omitempty,gte=0"`
	PollutantVolume  *float64        `json:"pollutant_volume" binding:"omitempty,gte=0"`
	AffectedAnimals  *int64          `json:"affected_animals" binding:"omitempty,gte=0"`
	SeverityLevel    string          `json:"severity_level" binding:"required,oneof=low medium high critical"`
	EcologicalData   json.RawMessage `json:"ecological_data"`
	Notes            string          `json:"notes"`
	Status           string          `json:"status" binding:"omitempty,oneof=draft submitted reviewed closed"`
}

// UpdateReportRequest is the body of PUT /reports/:id. Same shape as create;
// the owning user is immutable after creation.
type UpdateReportRequest = CreateReportRequest

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name               string   `json:"name" binding:"required,max=255"`
	Description        string   `json:"description"`
	BaseCostPerUnit    float64  `json:"base_cost_per_unit" binding:"gte=0"`
	UnitType           string   `json:"unit_type" binding:"required,oneof=sqm cubic_meter animal"`
	SeverityMultiplier *float64 `json:"severity_multiplier" binding:"omitempty,gt=0"`
	Active             *bool    `json:"active"`
}

// EcologicalDataRequest is the body of POST /ecological-data.
type EcologicalDataRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

// Statistics aggregates the dashboard counters.
type Statistics struct {
	TotalReports     int             `json:"total_reports"`
	TotalDamage      decimal.Decimal `json:"total_damage"`
	CriticalReports  int             `json:"critical_reports"`
	ActiveCategories int             `json:"active_categories"`
}

// ReportListResponse is a paginated reports listing.
type ReportListResponse struct {
	Reports []EnvironmentalReport `json:"reports"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"per_page"`
	Total   int                   `json:"total"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse is the generic success body.
type MessageResponse struct {
	Message string `json:"message"`
}
