package meals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"diabetes-care-backend/internal/domain/insulin"
	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/ports/food"
	"diabetes-care-backend/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ProfileProvider entrega el snapshot de constantes y el estado de salud
// del paciente. El servicio nunca muta lo que recibe.
type ProfileProvider interface {
	ConstantsFor(ctx context.Context, patientID string) (profile.Constants, error)
	HealthStateFor(ctx context.Context, patientID string) (profile.HealthState, error)
}

// MedicationReader entrega esquemas vigentes y dosis de insulina recientes
// para el multiplicador de salud y el descuento de IOB.
type MedicationReader interface {
	EngineInputs(ctx context.Context, patientID string, now time.Time) (map[string]insulin.Schedule, []insulin.ActiveDose, error)
}

type Service struct {
	repo     Repository
	profiles ProfileProvider
	foods    food.Resolver
	meds     MedicationReader
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileProvider, foods food.Resolver, meds MedicationReader, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		foods:    foods,
		meds:     meds,
		log:      log,
		now:      time.Now,
	}
}

type SubmitInput struct {
	MealType        string
	FoodItems       []FoodItem
	Activities      []ActivityEntry
	BloodSugar      *float64
	IntendedInsulin *float64
	Notes           string
}

// SubmitResult es la comida persistida más la guía de timing de la dosis
// según la velocidad de absorción dominante.
type SubmitResult struct {
	Meal         Meal
	Dose         insulin.DoseResult
	TimingAdvice profile.TimingGuideline
}

// Submit es el flujo completo por comida: resolver alimentos, agregar
// nutrición, calcular la dosis sugerida y persistir el registro con su
// desglose. Alimentos no resueltos se saltean con warn; la comida puede
// quedar nutricionalmente vacía y aun así producir una dosis (cero) válida.
func (s *Service) Submit(ctx context.Context, patientID string, in SubmitInput) (SubmitResult, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return SubmitResult{}, ErrInvalidInput
	}
	if !validMealType(in.MealType) {
		return SubmitResult{}, ErrInvalidInput
	}

	constants, err := s.profiles.ConstantsFor(ctx, patientID)
	if err != nil {
		return SubmitResult{}, err
	}
	conv := constants.Converter()

	// InputValidationError: unidades no soportadas se rechazan acá,
	// antes de llegar al motor.
	for _, it := range in.FoodItems {
		if _, ok := conv.Family(it.Unit); !ok {
			return SubmitResult{}, ErrInvalidInput
		}
	}

	portioned := make([]insulin.PortionedFood, 0, len(in.FoodItems))
	for _, it := range in.FoodItems {
		details, err := s.foods.Resolve(ctx, it.Name)
		if err != nil {
			if errors.Is(err, food.ErrNotFound) {
				s.log.Warn("food not found, skipping meal item", map[string]any{
					"food":    it.Name,
					"patient": patientID,
				})
				continue
			}
			return SubmitResult{}, err
		}

		portioned = append(portioned, insulin.PortionedFood{
			Portion: insulin.FoodPortion{Name: it.Name, Amount: it.Amount, Unit: it.Unit},
			Food: insulin.ResolvedFood{
				Carbs:          details.Carbs,
				Protein:        details.Protein,
				Fat:            details.Fat,
				AbsorptionType: details.AbsorptionType,
				ServingSize:    insulin.ServingSize{Amount: details.ServingAmount, Unit: details.ServingUnit},
			},
		})
	}

	nutrition := insulin.CalculateMealNutrition(portioned, conv, constants.AbsorptionModifiers, s.log)

	health, err := s.profiles.HealthStateFor(ctx, patientID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.now()

	schedules, activeDoses, err := s.meds.EngineInputs(ctx, patientID, now)
	if err != nil {
		return SubmitResult{}, err
	}

	engineActivities := make([]insulin.Activity, 0, len(in.Activities))
	for _, a := range in.Activities {
		engineActivities = append(engineActivities, insulin.Activity{
			Level:    a.Level,
			Duration: a.DurationHours,
		})
	}

	dose, err := insulin.ComputeDose(insulin.ComputeInput{
		Constants:           constants,
		Nutrition:           nutrition,
		Activities:          engineActivities,
		BloodGlucose:        in.BloodSugar,
		MealType:            in.MealType,
		Now:                 now,
		ActiveConditions:    health.ActiveConditions,
		ActiveMedications:   health.ActiveMedications,
		MedicationSchedules: schedules,
		ActiveDoses:         activeDoses,
	}, s.log)
	if err != nil {
		return SubmitResult{}, err
	}

	m := Meal{
		ID:                uuid.NewString(),
		PatientID:         patientID,
		MealType:          in.MealType,
		FoodItems:         in.FoodItems,
		Activities:        in.Activities,
		Nutrition:         nutrition,
		BloodSugar:        in.BloodSugar,
		IntendedInsulin:   in.IntendedInsulin,
		SuggestedInsulin:  dose.Total,
		Breakdown:         dose.Breakdown,
		ActiveConditions:  health.ActiveConditions,
		ActiveMedications: health.ActiveMedications,
		Notes:             strings.TrimSpace(in.Notes),
		Timestamp:         now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return SubmitResult{}, err
	}

	advice := constants.InsulinTimingGuidelines[insulin.DominantAbsorptionType(portioned)]

	return SubmitResult{Meal: m, Dose: dose, TimingAdvice: advice}, nil
}

// History devuelve comidas paginadas y el total para la paginación.
func (s *Service) History(ctx context.Context, patientID string, limit, skip int) ([]Meal, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}

	items, err := s.repo.ListByPatient(ctx, patientID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByPatient(ctx, patientID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SearchFood expone la búsqueda del colaborador de alimentos.
func (s *Service) SearchFood(ctx context.Context, query, category string) ([]food.Result, error) {
	return s.foods.Search(ctx, query, category)
}

func (s *Service) GetByID(ctx context.Context, id string) (Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Meal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}
