package insulin

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/platform/logger"
)

// Cota del multiplicador de salud: evita que condiciones + medicamentos
// compuestos lleven la dosis a extremos.
const (
	healthMultiplierMin = 0.1
	healthMultiplierMax = 2.0
)

// Meseta de las formulaciones sin pico (basal tipo glargina):
// suben al 85% del efecto, sostienen hasta el 85% de la duración
// y decaen lineal en el 15% final.
const peaklessPlateau = 0.85

// Curva por defecto para dosis de insulina cuyo tipo no está en el perfil.
var defaultInsulinCurve = profile.MedicationFactor{
	Factor:        1.0,
	DurationBased: true,
	OnsetHours:    0.25,
	PeakHours:     1.5,
	DurationHours: 4,
}

// HealthFactors calcula el multiplicador combinado de condiciones activas y
// medicamentos, acotado a [0.1, 2.0].
//
// Condición o medicamento sin factor en el perfil => 1.0 con warn
// (es data faltante del dominio, no un error). Medicamentos duration-based
// sin toma previa localizable tampoco aportan efecto.
func HealthFactors(c profile.Constants, conditions, medications []string, schedules map[string]Schedule, doses []ActiveDose, now time.Time, log logger.Logger) float64 {
	if log == nil {
		log = logger.Nop()
	}

	mult := 1.0

	for _, cond := range conditions {
		d, ok := c.DiseaseFactors[cond]
		if !ok {
			log.Warn("active condition without disease factor", map[string]any{
				"condition": cond,
			})
			continue
		}
		mult *= d.Factor
	}

	for _, med := range medications {
		m, ok := c.MedicationFactors[med]
		if !ok {
			log.Warn("active medication without factor", map[string]any{
				"medication": med,
			})
			continue
		}

		if !m.DurationBased {
			mult *= m.Factor
			continue
		}

		last, ok := lastDoseTime(med, schedules[med], doses, now)
		if !ok {
			continue
		}

		s := effectStrength(m, now.Sub(last).Hours())
		mult *= 1 + (m.Factor-1)*s
	}

	return math.Min(healthMultiplierMax, math.Max(healthMultiplierMin, mult))
}

// ActivityPercent devuelve qué porcentaje del efecto del medicamento sigue
// activo a las h horas de la toma (0..100). Para insulina esto es el
// porcentaje de la dosis todavía circulando.
func ActivityPercent(m profile.MedicationFactor, hoursSince float64) float64 {
	return 100 * effectStrength(m, hoursSince)
}

// ActiveInsulin suma las unidades de insulina todavía activas (IOB) de las
// dosis previas, usando la curva del tipo de insulina del perfil.
func ActiveInsulin(doses []ActiveDose, medicationFactors map[string]profile.MedicationFactor, now time.Time) float64 {
	total := 0.0
	for _, d := range doses {
		h := now.Sub(d.TakenAt).Hours()
		if h < 0 {
			continue
		}

		curve, ok := medicationFactors[d.Medication]
		if !ok || !curve.DurationBased || curve.DurationHours <= 0 {
			curve = defaultInsulinCurve
		}

		total += d.Dose * ActivityPercent(curve, h) / 100
	}
	return total
}

// effectStrength es la curva de tres fases, como fuerza en [0,1]:
// rampa lineal hasta el onset, plena entre onset y peak, decaimiento lineal
// hacia cero entre peak y duration, cero pasado duration.
// El multiplicador resultante es 1 + (factor-1)*s: el efecto que decae
// tiende a "sin efecto" (1.0), nunca a efecto negativo.
func effectStrength(m profile.MedicationFactor, h float64) float64 {
	if h < 0 || m.DurationHours <= 0 || h >= m.DurationHours {
		return 0
	}

	if m.IsPeakless {
		hold := peaklessPlateau * m.DurationHours
		switch {
		case m.OnsetHours > 0 && h < m.OnsetHours:
			return peaklessPlateau * h / m.OnsetHours
		case h < hold:
			return peaklessPlateau
		default:
			return peaklessPlateau * (m.DurationHours - h) / (m.DurationHours - hold)
		}
	}

	peak := m.PeakHours
	if peak < m.OnsetHours {
		peak = m.OnsetHours
	}

	switch {
	case m.OnsetHours > 0 && h < m.OnsetHours:
		return h / m.OnsetHours
	case h < peak || peak >= m.DurationHours:
		return 1
	default:
		return (m.DurationHours - h) / (m.DurationHours - peak)
	}
}

// lastDoseTime localiza la toma previa más reciente de un medicamento:
// primero registros de dosis explícitos, si no hay, los dailyTimes del
// esquema (hoy y ayer, dentro de [StartDate, EndDate]).
func lastDoseTime(medication string, sched Schedule, doses []ActiveDose, now time.Time) (time.Time, bool) {
	var best time.Time
	found := false

	for _, d := range doses {
		if d.Medication != medication {
			continue
		}
		if d.TakenAt.After(now) {
			continue
		}
		if !found || d.TakenAt.After(best) {
			best = d.TakenAt
			found = true
		}
	}
	if found {
		return best, true
	}

	if len(sched.DailyTimes) == 0 {
		return time.Time{}, false
	}
	if !sched.StartDate.IsZero() && now.Before(sched.StartDate) {
		return time.Time{}, false
	}
	if !sched.EndDate.IsZero() && now.After(sched.EndDate.Add(24*time.Hour)) {
		return time.Time{}, false
	}

	times := append([]string(nil), sched.DailyTimes...)
	sort.Strings(times)

	for _, day := range []time.Time{now, now.AddDate(0, 0, -1)} {
		// del más tarde al más temprano dentro del día
		for i := len(times) - 1; i >= 0; i-- {
			at, ok := clockOn(day, times[i])
			if !ok {
				continue
			}
			if at.After(now) {
				continue
			}
			if !sched.StartDate.IsZero() && at.Before(sched.StartDate) {
				continue
			}
			return at, true
		}
	}

	return time.Time{}, false
}

// clockOn arma el timestamp de un "HH:MM" sobre la fecha de day.
func clockOn(day time.Time, clock string) (time.Time, bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return time.Time{}, false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location()), true
}
