package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"diabetes-care-backend/internal/domain/medications"
)

type medicationRepo struct {
	mu sync.RWMutex
	// A lo sumo un esquema por (paciente, medicamento); reemplazar pisa.
	schedules map[string]medications.Schedule
	doses     map[string]medications.DoseLog
}

func NewMedicationRepo() medications.Repository {
	return &medicationRepo{
		schedules: make(map[string]medications.Schedule),
		doses:     make(map[string]medications.DoseLog),
	}
}

func scheduleKey(patientID, medication string) string {
	return patientID + "|" + medication
}

func (r *medicationRepo) UpsertSchedule(ctx context.Context, s medications.Schedule) (medications.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		return medications.Schedule{}, errors.New("schedule id required")
	}

	key := scheduleKey(s.PatientID, s.Medication)
	if prev, exists := r.schedules[key]; exists {
		// Conservar identidad y fecha de alta del esquema original.
		s.ID = prev.ID
		s.CreatedAt = prev.CreatedAt
	}
	r.schedules[key] = s
	return s, nil
}

func (r *medicationRepo) GetActiveSchedule(ctx context.Context, patientID, medication string, at time.Time) (medications.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schedules[scheduleKey(patientID, medication)]
	if !ok || !scheduleActive(s, at) {
		return medications.Schedule{}, medications.ErrNotFound
	}
	return s, nil
}

func (r *medicationRepo) ListActiveSchedules(ctx context.Context, patientID string, at time.Time) ([]medications.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Schedule, 0)
	for _, s := range r.schedules {
		if s.PatientID != patientID {
			continue
		}
		if !scheduleActive(s, at) {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Medication < out[j].Medication
	})
	return out, nil
}

func (r *medicationRepo) CreateDose(ctx context.Context, d medications.DoseLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.doses[d.ID]; exists {
		return errors.New("dose already exists")
	}

	r.doses[d.ID] = d
	return nil
}

func (r *medicationRepo) ListDoses(ctx context.Context, patientID string, from, to time.Time, onlyInsulin bool) ([]medications.DoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.DoseLog, 0)
	for _, d := range r.doses {
		if d.PatientID != patientID {
			continue
		}
		if onlyInsulin && !d.IsInsulin {
			continue
		}
		if d.TakenAt.Before(from) || d.TakenAt.After(to) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out, nil
}

func scheduleActive(s medications.Schedule, at time.Time) bool {
	return !at.Before(s.StartDate) && !at.After(s.EndDate)
}
