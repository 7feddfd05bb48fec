package activities

import "context"

type Repository interface {
	Create(ctx context.Context, r Record) error
	// ListByPatient devuelve los registros del paciente, más recientes primero.
	ListByPatient(ctx context.Context, patientID string) ([]Record, error)
}
