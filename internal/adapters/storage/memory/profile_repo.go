package memory

import (
	"context"
	"sync"

	"diabetes-care-backend/internal/domain/profile"
)

type profileRepo struct {
	mu        sync.RWMutex
	overrides map[string]profile.Overrides
	health    map[string]profile.HealthState
}

func NewProfileRepo() profile.Repository {
	return &profileRepo{
		overrides: make(map[string]profile.Overrides),
		health:    make(map[string]profile.HealthState),
	}
}

func (r *profileRepo) GetOverrides(ctx context.Context, patientID string) (profile.Overrides, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.overrides[patientID]
	if !ok {
		return profile.Overrides{}, profile.ErrNotFound
	}
	return o, nil
}

func (r *profileRepo) SaveOverrides(ctx context.Context, patientID string, o profile.Overrides) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides[patientID] = o
	return nil
}

func (r *profileRepo) GetHealthState(ctx context.Context, patientID string) (profile.HealthState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.health[patientID]
	if !ok {
		return profile.HealthState{}, profile.ErrNotFound
	}
	return h, nil
}

func (r *profileRepo) SaveHealthState(ctx context.Context, patientID string, h profile.HealthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.health[patientID] = h
	return nil
}
