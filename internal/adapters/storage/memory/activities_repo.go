package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"diabetes-care-backend/internal/domain/activities"
)

type activityRepo struct {
	mu   sync.RWMutex
	byID map[string]activities.Record
}

func NewActivityRepo() activities.Repository {
	return &activityRepo{
		byID: make(map[string]activities.Record),
	}
}

func (r *activityRepo) Create(ctx context.Context, rec activities.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}

	r.byID[rec.ID] = rec
	return nil
}

func (r *activityRepo) ListByPatient(ctx context.Context, patientID string) ([]activities.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activities.Record, 0)
	for _, rec := range r.byID {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	return out, nil
}
