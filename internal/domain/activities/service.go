package activities

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type Input struct {
	Level         int
	DurationHours float64
	At            time.Time // expectedTime o completedTime según el tipo
}

// Record registra en un solo request las actividades planificadas y las
// realizadas, como hace el cliente. Valida niveles antes de persistir nada.
func (s *Service) Record(ctx context.Context, patientID string, expected, completed []Input) ([]Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}

	for _, in := range append(append([]Input{}, expected...), completed...) {
		if in.Level < LevelMin || in.Level > LevelMax {
			return nil, ErrInvalidInput
		}
	}

	now := s.now()
	out := make([]Record, 0, len(expected)+len(completed))

	build := func(in Input, typ Type) Record {
		r := Record{
			ID:         uuid.NewString(),
			PatientID:  patientID,
			Type:       typ,
			Level:      in.Level,
			Duration:   FormatDuration(in.DurationHours),
			RecordedAt: now,
		}
		at := in.At
		if at.IsZero() {
			at = now
		}
		if typ == TypeExpected {
			r.ExpectedAt = &at
		} else {
			r.CompletedAt = &at
		}
		return r
	}

	for _, in := range expected {
		out = append(out, build(in, TypeExpected))
	}
	for _, in := range completed {
		out = append(out, build(in, TypeCompleted))
	}

	for _, r := range out {
		if err := s.repo.Create(ctx, r); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *Service) History(ctx context.Context, patientID string) ([]Record, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
