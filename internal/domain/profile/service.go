package profile

import (
	"context"
	"errors"
	"math"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo     Repository
	defaults func() Constants
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		defaults: Defaults,
	}
}

// ConstantsFor devuelve las constantes efectivas del paciente:
// defaults + overrides guardados. Sin overrides => defaults, sin error.
func (s *Service) ConstantsFor(ctx context.Context, patientID string) (Constants, error) {
	base := s.defaults()

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return base, nil
	}

	o, err := s.repo.GetOverrides(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return base, nil
		}
		return Constants{}, err
	}

	return base.Apply(o), nil
}

// Update valida y guarda overrides, y devuelve las constantes resultantes.
func (s *Service) Update(ctx context.Context, patientID string, o Overrides) (Constants, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Constants{}, ErrInvalidInput
	}

	if err := validateOverrides(o); err != nil {
		return Constants{}, err
	}

	if err := s.repo.SaveOverrides(ctx, patientID, o); err != nil {
		return Constants{}, err
	}

	return s.defaults().Apply(o), nil
}

// HealthStateFor devuelve condiciones/medicamentos activos del paciente.
// Sin registro guardado => estado vacío, sin error.
func (s *Service) HealthStateFor(ctx context.Context, patientID string) (HealthState, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return HealthState{}, nil
	}

	h, err := s.repo.GetHealthState(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return HealthState{}, nil
		}
		return HealthState{}, err
	}
	return h, nil
}

// UpdateHealthState reemplaza el estado completo (listas vacías = limpiar).
func (s *Service) UpdateHealthState(ctx context.Context, patientID string, h HealthState) (HealthState, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return HealthState{}, ErrInvalidInput
	}

	clean := func(in []string) []string {
		out := make([]string, 0, len(in))
		seen := map[string]struct{}{}
		for _, v := range in {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		return out
	}

	h = HealthState{
		ActiveConditions:  clean(h.ActiveConditions),
		ActiveMedications: clean(h.ActiveMedications),
	}

	if err := s.repo.SaveHealthState(ctx, patientID, h); err != nil {
		return HealthState{}, err
	}
	return h, nil
}

// validateOverrides aplica las precondiciones numéricas:
// ratios estrictamente positivos, fracciones >= 0, multiplicadores > 0 finitos.
// Un ratio en cero acá es un error de configuración, no data del dominio.
func validateOverrides(o Overrides) error {
	if o.InsulinToCarbRatio != nil && !positive(*o.InsulinToCarbRatio) {
		return ErrInvalidInput
	}
	if o.CorrectionFactor != nil && !positive(*o.CorrectionFactor) {
		return ErrInvalidInput
	}
	if o.TargetGlucose != nil && !positive(*o.TargetGlucose) {
		return ErrInvalidInput
	}
	if o.ProteinFactor != nil && !nonNegative(*o.ProteinFactor) {
		return ErrInvalidInput
	}
	if o.FatFactor != nil && !nonNegative(*o.FatFactor) {
		return ErrInvalidInput
	}

	for _, f := range o.ActivityCoefficients {
		if !positive(f) {
			return ErrInvalidInput
		}
	}
	for _, f := range o.AbsorptionModifiers {
		if !positive(f) {
			return ErrInvalidInput
		}
	}
	for _, f := range o.MealTimingFactors {
		if !positive(f) {
			return ErrInvalidInput
		}
	}
	for _, w := range o.TimeOfDayFactors {
		if !positive(w.Factor) {
			return ErrInvalidInput
		}
		if w.Hours[0] < 0 || w.Hours[1] > 24 || w.Hours[0] >= w.Hours[1] {
			return ErrInvalidInput
		}
	}
	for _, d := range o.DiseaseFactors {
		if !positive(d.Factor) {
			return ErrInvalidInput
		}
	}
	for _, m := range o.MedicationFactors {
		if !positive(m.Factor) {
			return ErrInvalidInput
		}
		if m.DurationBased {
			if m.OnsetHours < 0 || m.PeakHours < 0 || m.DurationHours <= 0 {
				return ErrInvalidInput
			}
		}
	}

	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func nonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
