package activities

import "time"

// Type distingue actividad planificada de realizada.
// @Enum expected, completed
type Type string

const (
	TypeExpected  Type = "expected"
	TypeCompleted Type = "completed"
)

// Levels válidos: -2 (sueño) .. 2 (vigorosa).
const (
	LevelMin = -2
	LevelMax = 2
)

// Record es una actividad registrada por el paciente.
type Record struct {
	ID        string
	PatientID string

	Type     Type
	Level    int
	Duration string // "HH:MM" normalizado

	// Según Type: cuándo se planea o cuándo se hizo.
	ExpectedAt  *time.Time
	CompletedAt *time.Time

	RecordedAt time.Time
}
