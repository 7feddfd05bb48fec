package medications

import (
	"context"
	"time"
)

type Repository interface {
	// UpsertSchedule crea o reemplaza el esquema vigente de
	// (paciente, medicamento).
	UpsertSchedule(ctx context.Context, s Schedule) (Schedule, error)
	GetActiveSchedule(ctx context.Context, patientID, medication string, at time.Time) (Schedule, error)
	ListActiveSchedules(ctx context.Context, patientID string, at time.Time) ([]Schedule, error)

	CreateDose(ctx context.Context, d DoseLog) error
	// ListDoses devuelve tomas en [from, to], más recientes primero.
	// onlyInsulin filtra a dosis de insulina.
	ListDoses(ctx context.Context, patientID string, from, to time.Time, onlyInsulin bool) ([]DoseLog, error)
}
