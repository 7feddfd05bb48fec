package careteam

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByPatient(ctx context.Context, patientID string) ([]Grant, error)
	ListByDoctor(ctx context.Context, doctorUserID string) ([]Grant, error)

	// GetActiveGrant devuelve el grant activo para (paciente, médico),
	// el más recientemente actualizado si hubiera data sucia.
	GetActiveGrant(ctx context.Context, patientID, doctorUserID string) (Grant, error)
}
