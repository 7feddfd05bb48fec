package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"diabetes-care-backend/internal/domain/meals"
)

type mealRepo struct {
	mu   sync.RWMutex
	byID map[string]meals.Meal
}

func NewMealRepo() meals.Repository {
	return &mealRepo{
		byID: make(map[string]meals.Meal),
	}
}

func (r *mealRepo) Create(ctx context.Context, m meals.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("meal id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("meal already exists")
	}

	r.byID[m.ID] = m
	return nil
}

func (r *mealRepo) GetByID(ctx context.Context, id string) (meals.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return meals.Meal{}, meals.ErrNotFound
	}
	return m, nil
}

func (r *mealRepo) ListByPatient(ctx context.Context, patientID string, limit, skip int) ([]meals.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]meals.Meal, 0)
	for _, m := range r.byID {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if skip >= len(out) {
		return []meals.Meal{}, nil
	}
	out = out[skip:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *mealRepo) CountByPatient(ctx context.Context, patientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, m := range r.byID {
		if m.PatientID == patientID {
			n++
		}
	}
	return n, nil
}
