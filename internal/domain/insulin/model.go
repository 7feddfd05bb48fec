package insulin

import (
	"time"

	"diabetes-care-backend/internal/domain/profile"
)

// FoodPortion es lo que el paciente declara haber comido.
type FoodPortion struct {
	Name   string
	Amount float64
	Unit   string // unidad casera o estándar (ver units.Converter)
}

// ServingSize es la porción de referencia de un alimento en la base de datos.
type ServingSize struct {
	Amount float64
	Unit   string
}

// ResolvedFood son los macros por porción de referencia, resueltos por el
// colaborador de base de alimentos.
type ResolvedFood struct {
	Carbs          float64
	Protein        float64
	Fat            float64
	AbsorptionType string // very_slow..very_fast
	ServingSize    ServingSize
}

// PortionedFood une la porción pedida con su alimento resuelto.
type PortionedFood struct {
	Portion FoodPortion
	Food    ResolvedFood
}

// NutritionSummary es la salida del agregador de nutrición.
// Derivado por comida, nunca se persiste por separado.
type NutritionSummary struct {
	Calories         float64
	Carbs            float64
	Protein          float64
	Fat              float64
	AbsorptionFactor float64 // > 0, 1.0 si la comida está vacía
}

// Activity es una actividad declarada junto con la comida.
type Activity struct {
	Level    int     // -2 (sueño) .. 2 (vigorosa)
	Duration float64 // horas, ya parseadas ("HH:MM" se resuelve en el borde)
}

// ActiveDose es una dosis de insulina previa que todavía puede estar activa.
// El motor la lee, nunca la guarda.
type ActiveDose struct {
	Medication string
	Dose       float64
	TakenAt    time.Time
}

// Schedule es el esquema de tomas de un medicamento (dailyTimes "HH:MM").
type Schedule struct {
	StartDate  time.Time
	EndDate    time.Time
	DailyTimes []string
}

// ComputeInput es todo lo que necesita un cálculo de dosis.
// Now viene siempre del caller: el motor nunca mira el reloj de pared.
type ComputeInput struct {
	Constants profile.Constants
	Nutrition NutritionSummary

	Activities   []Activity
	BloodGlucose *float64 // mg/dL; nil = sin lectura
	MealType     string   // breakfast/lunch/dinner/snack
	Now          time.Time

	ActiveConditions    []string
	ActiveMedications   []string
	MedicationSchedules map[string]Schedule
	ActiveDoses         []ActiveDose
}

// DoseResult es la dosis sugerida con su desglose auditable.
// Las claves del breakdown son estables: la UI y el registro de comidas
// las usan tal cual.
type DoseResult struct {
	Total     float64
	Breakdown map[string]float64
}
