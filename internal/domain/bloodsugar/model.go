package bloodsugar

import "time"

// Status clasifica la lectura contra el target del paciente.
// @Enum low, normal, high
type Status string

const (
	StatusLow    Status = "low"
	StatusNormal Status = "normal"
	StatusHigh   Status = "high"
)

// Límites de sanidad para lecturas en mg/dL.
const (
	MinReadingMgdl = 0
	MaxReadingMgdl = 600
)

// Reading es una medición de glucemia independiente de comidas.
type Reading struct {
	ID        string
	PatientID string

	ValueMgdl float64
	Status    Status
	Target    float64 // target del paciente al momento de la lectura

	TakenAt    time.Time // cuándo se midió (lo manda el cliente)
	RecordedAt time.Time // cuándo la recibió el backend

	Notes  string
	Source string // standalone, meal, cgm...
}

// StatusFor clasifica una lectura: low por debajo del 70% del target,
// high por encima del 130%.
func StatusFor(value, target float64) Status {
	switch {
	case value < target*0.7:
		return StatusLow
	case value > target*1.3:
		return StatusHigh
	default:
		return StatusNormal
	}
}
