package meals

import "context"

type Repository interface {
	Create(ctx context.Context, m Meal) error
	GetByID(ctx context.Context, id string) (Meal, error)
	// ListByPatient pagina por limit/skip, más recientes primero.
	ListByPatient(ctx context.Context, patientID string, limit, skip int) ([]Meal, error)
	CountByPatient(ctx context.Context, patientID string) (int, error)
}
