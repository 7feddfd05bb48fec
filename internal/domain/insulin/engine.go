package insulin

import (
	"errors"
	"math"

	"diabetes-care-backend/internal/platform/logger"
)

// ErrTherapyConstants es la única falla dura del motor: un ratio de
// carbohidratos o un factor de corrección en cero/negativo es un perfil
// mal configurado (división por cero), no data del dominio.
var ErrTherapyConstants = errors.New("insulin: insulin_to_carb_ratio and correction_factor must be positive")

// Dosis mínima clínicamente útil: si algo de insulina estaba indicado,
// no se sugiere un valor entre 0 y 0.5.
const minMeaningfulDose = 0.5

// ComputeDose calcula la dosis sugerida para una comida.
//
// Cálculo puro y determinista: mismo input (incluido Now) => mismo output.
// Nunca falla por números raros del dominio (carbs negativos, duraciones
// cero): todo se acota en el paso final. Orden del cálculo:
//
//  1. insulina por carbs, más aporte carb-equivalente de proteína y grasa
//  2. ajuste por absorción, timing de comida (incluye franja horaria)
//     y actividad
//  3. corrección por glucemia (nunca negativa)
//  4. descuento de insulina activa (IOB) sobre el total pre-corrección
//  5. multiplicador de salud sobre el total resultante, corrección incluida
//  6. redondeo a 0.1 con piso en la dosis mínima útil
func ComputeDose(in ComputeInput, log logger.Logger) (DoseResult, error) {
	if log == nil {
		log = logger.Nop()
	}

	c := in.Constants
	if c.InsulinToCarbRatio <= 0 || c.CorrectionFactor <= 0 {
		return DoseResult{}, ErrTherapyConstants
	}

	carbInsulin := in.Nutrition.Carbs / c.InsulinToCarbRatio
	proteinContribution := in.Nutrition.Protein * c.ProteinFactor / c.InsulinToCarbRatio
	fatContribution := in.Nutrition.Fat * c.FatFactor / c.InsulinToCarbRatio
	baseInsulin := carbInsulin + proteinContribution + fatContribution

	absorption := in.Nutrition.AbsorptionFactor
	if absorption <= 0 {
		absorption = 1.0
	}

	activityCoefficient := ActivityImpact(in.Activities, c.ActivityCoefficients, log)
	mealTimingFactor := MealTimingFactor(in.MealType, in.Now, c)

	adjustedInsulin := baseInsulin * absorption * mealTimingFactor * activityCoefficient

	correctionInsulin := 0.0
	if in.BloodGlucose != nil {
		correctionInsulin = math.Max(0, (*in.BloodGlucose-c.TargetGlucose)/c.CorrectionFactor)
	}

	preActiveTotal := adjustedInsulin + correctionInsulin

	activeInsulin := ActiveInsulin(in.ActiveDoses, c.MedicationFactors, in.Now)
	postActiveTotal := math.Max(0, preActiveTotal-activeInsulin)

	healthMultiplier := HealthFactors(c, in.ActiveConditions, in.ActiveMedications, in.MedicationSchedules, in.ActiveDoses, in.Now, log)

	final := postActiveTotal * healthMultiplier

	total := round1(math.Max(0, final))
	if preActiveTotal > 0 && total < minMeaningfulDose {
		total = minMeaningfulDose
	}

	return DoseResult{
		Total: total,
		Breakdown: map[string]float64{
			"carb_insulin":         round2(carbInsulin),
			"protein_contribution": round2(proteinContribution),
			"fat_contribution":     round2(fatContribution),
			"base_insulin":         round2(baseInsulin),
			"adjusted_insulin":     round2(adjustedInsulin),
			"correction_insulin":   round2(correctionInsulin),
			"active_insulin":       round2(activeInsulin),
			"activity_coefficient": round2(activityCoefficient),
			"health_multiplier":    round2(healthMultiplier),
			"absorption_factor":    round2(absorption),
			"meal_timing_factor":   round2(mealTimingFactor),
		},
	}, nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
