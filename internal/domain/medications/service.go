package medications

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"diabetes-care-backend/internal/domain/insulin"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Ventana hacia atrás para buscar dosis de insulina que todavía pueden
// estar activas. Más allá de 24h ninguna curva del perfil aporta.
const activeInsulinLookback = 24 * time.Hour

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

type ScheduleInput struct {
	Medication string
	StartDate  time.Time
	EndDate    time.Time
	DailyTimes []string
	UpdatedBy  string
}

// UpsertSchedule valida y guarda el esquema vigente del medicamento.
func (s *Service) UpsertSchedule(ctx context.Context, patientID string, in ScheduleInput) (Schedule, error) {
	patientID = strings.TrimSpace(patientID)
	medication := strings.TrimSpace(in.Medication)

	if patientID == "" || medication == "" {
		return Schedule{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return Schedule{}, ErrInvalidInput
	}
	if len(in.DailyTimes) == 0 {
		return Schedule{}, ErrInvalidInput
	}

	times := append([]string(nil), in.DailyTimes...)
	for _, t := range times {
		if !validClock(t) {
			return Schedule{}, ErrInvalidInput
		}
	}
	sort.Strings(times)

	now := s.now()
	sched := Schedule{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Medication: medication,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		DailyTimes: times,
		CreatedAt:  now,
		UpdatedAt:  now,
		UpdatedBy:  strings.TrimSpace(in.UpdatedBy),
	}

	return s.repo.UpsertSchedule(ctx, sched)
}

func (s *Service) ActiveSchedule(ctx context.Context, patientID, medication string) (Schedule, error) {
	return s.repo.GetActiveSchedule(ctx, patientID, strings.TrimSpace(medication), s.now())
}

type DoseInput struct {
	Medication   string
	Dose         float64
	IsInsulin    bool
	TakenAt      *time.Time // nil => ahora
	ScheduledFor *time.Time
	Notes        string
}

func (s *Service) LogDose(ctx context.Context, patientID string, in DoseInput) (DoseLog, error) {
	patientID = strings.TrimSpace(patientID)
	medication := strings.TrimSpace(in.Medication)

	if patientID == "" || medication == "" {
		return DoseLog{}, ErrInvalidInput
	}
	if in.Dose <= 0 {
		return DoseLog{}, ErrInvalidInput
	}

	now := s.now()
	takenAt := now
	if in.TakenAt != nil && !in.TakenAt.IsZero() {
		takenAt = *in.TakenAt
	}

	d := DoseLog{
		ID:           uuid.NewString(),
		PatientID:    patientID,
		Medication:   medication,
		Dose:         in.Dose,
		IsInsulin:    in.IsInsulin,
		TakenAt:      takenAt,
		ScheduledFor: in.ScheduledFor,
		Notes:        strings.TrimSpace(in.Notes),
		RecordedAt:   now,
	}

	if err := s.repo.CreateDose(ctx, d); err != nil {
		return DoseLog{}, err
	}
	return d, nil
}

// InsulinHistory devuelve las dosis de insulina de los últimos `days` días.
func (s *Service) InsulinHistory(ctx context.Context, patientID string, days int) ([]DoseLog, error) {
	if days <= 0 {
		days = 30
	}
	now := s.now()
	return s.repo.ListDoses(ctx, patientID, now.AddDate(0, 0, -days), now, true)
}

// EngineInputs junta lo que el motor de dosis necesita del módulo:
// esquemas vigentes por medicamento y dosis de insulina recientes.
func (s *Service) EngineInputs(ctx context.Context, patientID string, now time.Time) (map[string]insulin.Schedule, []insulin.ActiveDose, error) {
	scheds, err := s.repo.ListActiveSchedules(ctx, patientID, now)
	if err != nil {
		return nil, nil, err
	}

	schedules := make(map[string]insulin.Schedule, len(scheds))
	for _, sc := range scheds {
		schedules[sc.Medication] = insulin.Schedule{
			StartDate:  sc.StartDate,
			EndDate:    sc.EndDate,
			DailyTimes: append([]string(nil), sc.DailyTimes...),
		}
	}

	logs, err := s.repo.ListDoses(ctx, patientID, now.Add(-activeInsulinLookback), now, true)
	if err != nil {
		return nil, nil, err
	}

	doses := make([]insulin.ActiveDose, 0, len(logs))
	for _, d := range logs {
		doses = append(doses, insulin.ActiveDose{
			Medication: d.Medication,
			Dose:       d.Dose,
			TakenAt:    d.TakenAt,
		})
	}

	return schedules, doses, nil
}

func validClock(s string) bool {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return false
	}
	return true
}
