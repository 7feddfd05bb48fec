package bloodsugar

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Reading) error
	// ListByPatient devuelve lecturas desde from, más recientes primero.
	ListByPatient(ctx context.Context, patientID string, from time.Time) ([]Reading, error)
}
