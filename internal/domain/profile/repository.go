package profile

import "context"

// Repository persiste solo los overrides por paciente;
// los defaults viven en código/configuración.
type Repository interface {
	GetOverrides(ctx context.Context, patientID string) (Overrides, error)
	SaveOverrides(ctx context.Context, patientID string, o Overrides) error

	GetHealthState(ctx context.Context, patientID string) (HealthState, error)
	SaveHealthState(ctx context.Context, patientID string, h HealthState) error
}
