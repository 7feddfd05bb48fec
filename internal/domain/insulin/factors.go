package insulin

import (
	"math"
	"sort"
	"strconv"
	"time"

	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/platform/logger"
)

// ActivityImpact devuelve el coeficiente multiplicativo de actividad.
// Sin actividades => 1.0.
//
// Por actividad: el peso por duración satura a las 2 horas
// (min(horas/2, 1)), así una caminata de 15 min no pesa igual que
// dos horas de gimnasio con el mismo nivel.
func ActivityImpact(activities []Activity, coefficients map[string]float64, log logger.Logger) float64 {
	if log == nil {
		log = logger.Nop()
	}

	impact := 1.0
	for _, a := range activities {
		coef, ok := coefficients[strconv.Itoa(a.Level)]
		if !ok {
			// nivel desconocido: data-quality warning, se sigue con neutro
			log.Warn("unknown activity level, using neutral coefficient", map[string]any{
				"level": a.Level,
			})
			coef = 1.0
		}

		weight := math.Min(a.Duration/2, 1)
		if weight < 0 {
			weight = 0
		}

		impact *= 1 + (coef-1)*weight
	}

	return impact
}

// MealTimingFactor combina el factor por tipo de comida con el factor por
// franja horaria del perfil. La franja ya queda incluida acá: el motor no
// aplica un término horario aparte.
//
// Si ninguna franja contiene la hora, cae en "daytime".
func MealTimingFactor(mealType string, now time.Time, c profile.Constants) float64 {
	base, ok := c.MealTimingFactors[mealType]
	if !ok {
		base = 1.0
	}

	hour := now.Hour()

	// Orden estable por nombre: si el perfil trae franjas solapadas,
	// el resultado no depende del orden de iteración del map.
	names := make([]string, 0, len(c.TimeOfDayFactors))
	for name := range c.TimeOfDayFactors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w := c.TimeOfDayFactors[name]
		if w.Hours[0] <= hour && hour < w.Hours[1] {
			return base * w.Factor
		}
	}

	if d, ok := c.TimeOfDayFactors["daytime"]; ok {
		return base * d.Factor
	}
	return base
}
