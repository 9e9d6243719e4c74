// Package calculator computes the monetary damage estimate for an incident.
// The computation is a pure multiplication of four factors and is kept free
// of persistence concerns so it can be called from any boundary.
package calculator

import (
	"github.com/shopspring/decimal"

	"envdamage-service/models"
)

// IncidentParams are the per-calculation incident measurements. Only the
// field matching the category's unit type participates in the result; nil
// means the measurement was not supplied and counts as zero.
type IncidentParams struct {
	AffectedArea    *float64
	PollutantVolume *float64
	AffectedAnimals *int64
	SeverityLevel   models.SeverityLevel
}

// Breakdown lists the factors whose product is the damage amount. It is
// returned for explainability, not recomputation.
type Breakdown struct {
	BaseCost           decimal.Decimal `json:"base_cost"`
	UnitValue          decimal.Decimal `json:"unit_value"`
	UnitType           models.UnitType `json:"unit_type"`
	SeverityMultiplier decimal.Decimal `json:"severity_multiplier"`
	CategoryMultiplier decimal.Decimal `json:"category_multiplier"`
	Total              decimal.Decimal `json:"total"`
}

// Result is the outcome of a damage computation.
type Result struct {
	Amount    decimal.Decimal `json:"amount"`
	Breakdown *Breakdown      `json:"breakdown,omitempty"`
}

// Compute derives the damage amount for the given category and incident
// parameters:
//
//	amount = base_cost_per_unit * unit_value * severity_multiplier * category_multiplier
//
// A nil category yields a zero amount and no breakdown. Unknown severity
// levels fall back to the medium multiplier and an unrecognized unit type
// yields a unit value of 1; both are documented fallbacks kept for
// compatibility with historical calculations, not errors.
func Compute(category *models.DamageCategory, params IncidentParams) Result {
	if category == nil {
		return Result{Amount: decimal.Zero}
	}

	severityMultiplier := params.SeverityLevel.Multiplier()
	unitValue := unitValueFor(category.UnitType, params)

	amount := category.BaseCostPerUnit.
		Mul(unitValue).
		Mul(severityMultiplier).
		Mul(category.SeverityMultiplier)

	return Result{
		Amount: amount,
		Breakdown: &Breakdown{
			BaseCost:           category.BaseCostPerUnit,
			UnitValue:          unitValue,
			UnitType:           category.UnitType,
			SeverityMultiplier: severityMultiplier,
			CategoryMultiplier: category.SeverityMultiplier,
			Total:              amount,
		},
	}
}

func unitValueFor(unitType models.UnitType, params IncidentParams) decimal.Decimal {
	switch unitType {
	case models.UnitTypeSqm:
		return fromFloat(params.AffectedArea)
	case models.UnitTypeCubicMeter:
		return fromFloat(params.PollutantVolume)
	case models.UnitTypeAnimal:
		return fromInt(params.AffectedAnimals)
	default:
		// Degenerate fallback for unit types that predate validation.
		return decimal.NewFromInt(1)
	}
}

func fromFloat(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

func fromInt(v *int64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(*v)
}
