package bloodsugar

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"diabetes-care-backend/internal/domain/profile"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// ConstantsProvider entrega las constantes efectivas del paciente
// (para el target contra el que se clasifica la lectura).
type ConstantsProvider interface {
	ConstantsFor(ctx context.Context, patientID string) (profile.Constants, error)
}

type Service struct {
	repo     Repository
	profiles ConstantsProvider
	now      func() time.Time
}

func NewService(repo Repository, profiles ConstantsProvider) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		now:      time.Now,
	}
}

type AddInput struct {
	ValueMgdl float64
	TakenAt   *time.Time // nil => ahora
	Notes     string
	Source    string
}

func (s *Service) Add(ctx context.Context, patientID string, in AddInput) (Reading, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Reading{}, ErrInvalidInput
	}
	if in.ValueMgdl < MinReadingMgdl || in.ValueMgdl > MaxReadingMgdl {
		return Reading{}, ErrInvalidInput
	}

	c, err := s.profiles.ConstantsFor(ctx, patientID)
	if err != nil {
		return Reading{}, err
	}

	now := s.now()
	takenAt := now
	if in.TakenAt != nil && !in.TakenAt.IsZero() {
		takenAt = *in.TakenAt
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = "standalone"
	}

	r := Reading{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		ValueMgdl:  in.ValueMgdl,
		Status:     StatusFor(in.ValueMgdl, c.TargetGlucose),
		Target:     c.TargetGlucose,
		TakenAt:    takenAt,
		RecordedAt: now,
		Notes:      strings.TrimSpace(in.Notes),
		Source:     source,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Reading{}, err
	}
	return r, nil
}

// History devuelve las lecturas de las últimas `hours` horas (24 por defecto).
func (s *Service) History(ctx context.Context, patientID string, hours int) ([]Reading, error) {
	if hours <= 0 {
		hours = 24
	}
	from := s.now().Add(-time.Duration(hours) * time.Hour)
	return s.repo.ListByPatient(ctx, patientID, from)
}
