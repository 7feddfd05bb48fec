package food

import (
	"context"
	"errors"
)

// ErrNotFound indica que el alimento no existe en la base consultada.
// Para el registro de comidas no es fatal: el item se saltea.
var ErrNotFound = errors.New("food not found")

// Details son los macros por porción de referencia de un alimento.
type Details struct {
	Carbs   float64
	Protein float64
	Fat     float64

	AbsorptionType string // very_slow..very_fast

	ServingAmount float64
	ServingUnit   string

	Category    string
	Description string
}

// Result es un alimento con su nombre, para búsquedas.
type Result struct {
	Name    string
	Details Details
}

// Resolver es el colaborador de base de alimentos.
// La implementación puede ser la base embebida o una API externa.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Details, error)
	Search(ctx context.Context, query, category string) ([]Result, error)
}
