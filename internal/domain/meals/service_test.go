package meals

import (
	"context"
	"errors"
	"testing"
	"time"

	"diabetes-care-backend/internal/domain/insulin"
	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/ports/food"
)

// -------------------------
// Test collaborators
// -------------------------

type testRepo struct {
	byID map[string]Meal
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Meal{}}
}

func (r *testRepo) Create(ctx context.Context, m Meal) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Meal, error) {
	m, ok := r.byID[id]
	if !ok {
		return Meal{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string, limit, skip int) ([]Meal, error) {
	out := make([]Meal, 0)
	for _, m := range r.byID {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	if skip >= len(out) {
		return []Meal{}, nil
	}
	out = out[skip:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *testRepo) CountByPatient(ctx context.Context, patientID string) (int, error) {
	n := 0
	for _, m := range r.byID {
		if m.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

type testProfiles struct {
	constants profile.Constants
	health    profile.HealthState
}

func (p *testProfiles) ConstantsFor(ctx context.Context, patientID string) (profile.Constants, error) {
	return p.constants, nil
}

func (p *testProfiles) HealthStateFor(ctx context.Context, patientID string) (profile.HealthState, error) {
	return p.health, nil
}

type testFoods struct {
	byName map[string]food.Details
}

func (f *testFoods) Resolve(ctx context.Context, name string) (food.Details, error) {
	d, ok := f.byName[name]
	if !ok {
		return food.Details{}, food.ErrNotFound
	}
	return d, nil
}

func (f *testFoods) Search(ctx context.Context, query, category string) ([]food.Result, error) {
	out := make([]food.Result, 0)
	for name, d := range f.byName {
		out = append(out, food.Result{Name: name, Details: d})
	}
	_ = query
	_ = category
	return out, nil
}

type testMeds struct{}

func (testMeds) EngineInputs(ctx context.Context, patientID string, now time.Time) (map[string]insulin.Schedule, []insulin.ActiveDose, error) {
	return nil, nil, nil
}

func newTestService(repo *testRepo, foods *testFoods) *Service {
	profiles := &testProfiles{constants: profile.Defaults()}
	svc := NewService(repo, profiles, foods, testMeds{}, nil)
	// mediodía fijo: meal timing lunch 1.0, franja daytime 1.0
	svc.now = func() time.Time { return time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC) }
	return svc
}

func standardFoods() *testFoods {
	return &testFoods{byName: map[string]food.Details{
		// 44g carbs por bowl de 200g; bowl default = 400ml => ratio 2.0
		"rice": {
			Carbs: 44, Protein: 5, Fat: 0.4,
			AbsorptionType: "fast",
			ServingAmount:  1, ServingUnit: "bowl",
		},
	}}
}

// -------------------------
// Tests
// -------------------------

func TestService_Submit_ComputesAndPersists(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	bg := 180.0
	res, err := svc.Submit(context.Background(), "patient-1", SubmitInput{
		MealType: "lunch",
		FoodItems: []FoodItem{
			{Name: "rice", Amount: 1, Unit: "bowl"},
		},
		BloodSugar: &bg,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if res.Dose.Total <= 0 {
		t.Fatalf("expected positive dose, got %v", res.Dose.Total)
	}
	if res.Dose.Breakdown["correction_insulin"] != 1.6 {
		t.Fatalf("expected correction 1.6 for 180 vs 100 cf 50, got %v", res.Dose.Breakdown["correction_insulin"])
	}

	if len(repo.byID) != 1 {
		t.Fatalf("expected meal persisted, got %d", len(repo.byID))
	}
	for _, m := range repo.byID {
		if m.SuggestedInsulin != res.Dose.Total {
			t.Fatalf("persisted dose %v != returned %v", m.SuggestedInsulin, res.Dose.Total)
		}
		if m.Nutrition.Carbs <= 0 {
			t.Fatalf("expected aggregated carbs in persisted meal, got %v", m.Nutrition.Carbs)
		}
	}

	// rice es "fast" => guía de 15 minutos
	if res.TimingAdvice.TimingMinutes != 15 {
		t.Fatalf("expected 15 min timing advice for fast food, got %d", res.TimingAdvice.TimingMinutes)
	}
}

func TestService_Submit_SkipsUnknownFoods(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	res, err := svc.Submit(context.Background(), "patient-1", SubmitInput{
		MealType: "lunch",
		FoodItems: []FoodItem{
			{Name: "rice", Amount: 1, Unit: "bowl"},
			{Name: "no-such-food", Amount: 2, Unit: "cup"},
		},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	// La nutrición refleja solo el item resuelto
	for _, m := range repo.byID {
		if m.Nutrition.Carbs != res.Meal.Nutrition.Carbs {
			t.Fatalf("persisted nutrition mismatch")
		}
	}
	if res.Meal.Nutrition.Carbs <= 0 || res.Meal.Nutrition.Carbs > 90 {
		t.Fatalf("expected carbs from rice only, got %v", res.Meal.Nutrition.Carbs)
	}
}

func TestService_Submit_AllUnknownFoods_ZeroDose(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	res, err := svc.Submit(context.Background(), "patient-1", SubmitInput{
		MealType: "snack",
		FoodItems: []FoodItem{
			{Name: "no-such-food", Amount: 1, Unit: "cup"},
		},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.Dose.Total != 0 {
		t.Fatalf("expected zero dose for nutritionally empty meal, got %v", res.Dose.Total)
	}
}

func TestService_Submit_RejectsUnsupportedUnit(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	_, err := svc.Submit(context.Background(), "patient-1", SubmitInput{
		MealType: "lunch",
		FoodItems: []FoodItem{
			{Name: "rice", Amount: 1, Unit: "bucket"},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unsupported unit, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("meal should not be persisted on validation error")
	}
}

func TestService_Submit_RejectsBadMealType(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	_, err := svc.Submit(context.Background(), "patient-1", SubmitInput{MealType: "brunch"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for meal type, got %v", err)
	}
}

func TestService_Submit_BrokenConstantsFail(t *testing.T) {
	repo := newTestRepo()
	profiles := &testProfiles{constants: profile.Defaults()}
	profiles.constants.InsulinToCarbRatio = 0

	svc := NewService(repo, profiles, standardFoods(), testMeds{}, nil)
	svc.now = func() time.Time { return time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC) }

	_, err := svc.Submit(context.Background(), "patient-1", SubmitInput{
		MealType: "lunch",
		FoodItems: []FoodItem{
			{Name: "rice", Amount: 1, Unit: "bowl"},
		},
	})
	if !errors.Is(err, insulin.ErrTherapyConstants) {
		t.Fatalf("expected ErrTherapyConstants for zero ratio, got %v", err)
	}
}

func TestService_History_PaginationDefaults(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, standardFoods())

	for i := 0; i < 15; i++ {
		_, err := svc.Submit(context.Background(), "patient-1", SubmitInput{MealType: "snack"})
		if err != nil {
			t.Fatalf("Submit #%d error: %v", i, err)
		}
	}

	items, total, err := svc.History(context.Background(), "patient-1", 0, -3)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if total != 15 {
		t.Fatalf("expected total 15, got %d", total)
	}
	if len(items) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(items))
	}
}
