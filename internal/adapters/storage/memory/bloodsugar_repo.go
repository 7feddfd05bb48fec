package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"diabetes-care-backend/internal/domain/bloodsugar"
)

type readingRepo struct {
	mu   sync.RWMutex
	byID map[string]bloodsugar.Reading
}

func NewReadingRepo() bloodsugar.Repository {
	return &readingRepo{
		byID: make(map[string]bloodsugar.Reading),
	}
}

func (r *readingRepo) Create(ctx context.Context, rd bloodsugar.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rd.ID == "" {
		return errors.New("reading id required")
	}
	if _, exists := r.byID[rd.ID]; exists {
		return errors.New("reading already exists")
	}

	r.byID[rd.ID] = rd
	return nil
}

func (r *readingRepo) ListByPatient(ctx context.Context, patientID string, from time.Time) ([]bloodsugar.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bloodsugar.Reading, 0)
	for _, rd := range r.byID {
		if rd.PatientID != patientID {
			continue
		}
		if rd.TakenAt.Before(from) {
			continue
		}
		out = append(out, rd)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out, nil
}
