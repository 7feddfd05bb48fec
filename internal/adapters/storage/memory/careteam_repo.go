package memory

import (
	"context"
	"errors"
	"sync"

	"diabetes-care-backend/internal/domain/careteam"
)

type grantRepo struct {
	mu   sync.RWMutex
	byID map[string]careteam.Grant
}

func NewCareTeamRepo() careteam.Repository {
	return &grantRepo{
		byID: make(map[string]careteam.Grant),
	}
}

func (r *grantRepo) Create(ctx context.Context, g careteam.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) Update(ctx context.Context, g careteam.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return careteam.ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return careteam.Grant{}, careteam.ErrNotFound
	}
	return g, nil
}

func (r *grantRepo) ListByPatient(ctx context.Context, patientID string) ([]careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]careteam.Grant, 0)
	for _, g := range r.byID {
		if g.PatientID == patientID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *grantRepo) ListByDoctor(ctx context.Context, doctorUserID string) ([]careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]careteam.Grant, 0)
	for _, g := range r.byID {
		if g.DoctorUserID == doctorUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

// Defensivo: si por data sucia existieran múltiples grants activos,
// devolvemos el más reciente por UpdatedAt (y en empate, por CreatedAt).
func (r *grantRepo) GetActiveGrant(ctx context.Context, patientID, doctorUserID string) (careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner careteam.Grant
	has := false

	for _, g := range r.byID {
		if g.PatientID != patientID {
			continue
		}
		if g.DoctorUserID != doctorUserID {
			continue
		}
		if g.Status != careteam.StatusActive {
			continue
		}

		if !has {
			winner = g
			has = true
			continue
		}

		if g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			continue
		}
		if g.UpdatedAt.Equal(winner.UpdatedAt) {
			if g.CreatedAt.After(winner.CreatedAt) {
				winner = g
			}
		}
	}

	if !has {
		return careteam.Grant{}, careteam.ErrNotFound
	}
	return winner, nil
}
