package medications

import "time"

// Schedule es el esquema de tomas diarias de un medicamento.
// Hay a lo sumo uno vigente por (paciente, medicamento).
type Schedule struct {
	ID        string
	PatientID string

	Medication string
	StartDate  time.Time
	EndDate    time.Time
	DailyTimes []string // "HH:MM", ordenados

	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy string // paciente o médico que lo cargó
}

// DoseLog es una toma registrada. Las de insulina alimentan el cálculo
// de insulina activa (IOB) del motor de dosis.
type DoseLog struct {
	ID        string
	PatientID string

	Medication string
	Dose       float64
	IsInsulin  bool

	TakenAt      time.Time
	ScheduledFor *time.Time

	Notes      string
	RecordedAt time.Time
}
