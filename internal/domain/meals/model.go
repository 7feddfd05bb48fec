package meals

import (
	"time"

	"diabetes-care-backend/internal/domain/insulin"
)

// Tipos de comida soportados.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

func validMealType(t string) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	default:
		return false
	}
}

// FoodItem es la porción declarada por el paciente (antes de resolver macros).
type FoodItem struct {
	Name   string
	Amount float64
	Unit   string
}

// ActivityEntry es la actividad declarada junto con la comida.
type ActivityEntry struct {
	Level         int
	DurationHours float64
}

// Meal es el registro completo de una comida: lo declarado, la nutrición
// agregada y el cálculo de dosis con su desglose auditable.
type Meal struct {
	ID        string
	PatientID string

	MealType   string
	FoodItems  []FoodItem
	Activities []ActivityEntry

	Nutrition insulin.NutritionSummary

	BloodSugar      *float64
	IntendedInsulin *float64

	SuggestedInsulin float64
	Breakdown        map[string]float64

	ActiveConditions  []string
	ActiveMedications []string

	Notes     string
	Timestamp time.Time
}
