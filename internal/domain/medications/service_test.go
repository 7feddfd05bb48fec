package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	schedules map[string]Schedule
	doses     map[string]DoseLog
}

func newTestRepo() *testRepo {
	return &testRepo{
		schedules: map[string]Schedule{},
		doses:     map[string]DoseLog{},
	}
}

func (r *testRepo) UpsertSchedule(ctx context.Context, s Schedule) (Schedule, error) {
	key := s.PatientID + "|" + s.Medication
	if prev, ok := r.schedules[key]; ok {
		s.ID = prev.ID
		s.CreatedAt = prev.CreatedAt
	}
	r.schedules[key] = s
	return s, nil
}

func (r *testRepo) GetActiveSchedule(ctx context.Context, patientID, medication string, at time.Time) (Schedule, error) {
	s, ok := r.schedules[patientID+"|"+medication]
	if !ok || at.Before(s.StartDate) || at.After(s.EndDate) {
		return Schedule{}, ErrNotFound
	}
	return s, nil
}

func (r *testRepo) ListActiveSchedules(ctx context.Context, patientID string, at time.Time) ([]Schedule, error) {
	out := make([]Schedule, 0)
	for _, s := range r.schedules {
		if s.PatientID != patientID {
			continue
		}
		if at.Before(s.StartDate) || at.After(s.EndDate) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *testRepo) CreateDose(ctx context.Context, d DoseLog) error {
	if d.ID == "" {
		return errors.New("repo: id required")
	}
	r.doses[d.ID] = d
	return nil
}

func (r *testRepo) ListDoses(ctx context.Context, patientID string, from, to time.Time, onlyInsulin bool) ([]DoseLog, error) {
	out := make([]DoseLog, 0)
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
	return out, nil
}

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_UpsertSchedule_ValidatesAndSorts(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	now := svc.now()

	sched, err := svc.UpsertSchedule(context.Background(), "patient-1", ScheduleInput{
		Medication: "long_acting",
		StartDate:  now.AddDate(0, 0, -1),
		EndDate:    now.AddDate(0, 1, 0),
		DailyTimes: []string{"22:00", "08:00"},
	})
	if err != nil {
		t.Fatalf("UpsertSchedule error: %v", err)
	}
	if sched.DailyTimes[0] != "08:00" || sched.DailyTimes[1] != "22:00" {
		t.Fatalf("expected sorted daily times, got %#v", sched.DailyTimes)
	}

	// Esquema recuperable mientras está vigente
	got, err := svc.ActiveSchedule(context.Background(), "patient-1", "long_acting")
	if err != nil {
		t.Fatalf("ActiveSchedule error: %v", err)
	}
	if got.ID != sched.ID {
		t.Fatalf("expected same schedule, got %s vs %s", got.ID, sched.ID)
	}
}

func TestService_UpsertSchedule_RejectsBadInput(t *testing.T) {
	svc := newTestService(newTestRepo())
	now := svc.now()

	cases := []ScheduleInput{
		{Medication: "", StartDate: now, EndDate: now.AddDate(0, 1, 0), DailyTimes: []string{"08:00"}},
		{Medication: "x", StartDate: now, EndDate: now.AddDate(0, -1, 0), DailyTimes: []string{"08:00"}},
		{Medication: "x", StartDate: now, EndDate: now.AddDate(0, 1, 0), DailyTimes: nil},
		{Medication: "x", StartDate: now, EndDate: now.AddDate(0, 1, 0), DailyTimes: []string{"25:00"}},
		{Medication: "x", StartDate: now, EndDate: now.AddDate(0, 1, 0), DailyTimes: []string{"08:61"}},
	}
	for i, in := range cases {
		if _, err := svc.UpsertSchedule(context.Background(), "patient-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_LogDose_Defaults(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	d, err := svc.LogDose(context.Background(), "patient-1", DoseInput{
		Medication: "rapid_acting",
		Dose:       4,
		IsInsulin:  true,
	})
	if err != nil {
		t.Fatalf("LogDose error: %v", err)
	}
	if !d.TakenAt.Equal(svc.now()) {
		t.Fatalf("expected takenAt=now, got %v", d.TakenAt)
	}

	if _, err := svc.LogDose(context.Background(), "patient-1", DoseInput{Medication: "x", Dose: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero dose, got %v", err)
	}
}

func TestService_EngineInputs(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	now := svc.now()

	if _, err := svc.UpsertSchedule(context.Background(), "patient-1", ScheduleInput{
		Medication: "long_acting",
		StartDate:  now.AddDate(0, 0, -7),
		EndDate:    now.AddDate(0, 0, 7),
		DailyTimes: []string{"22:00"},
	}); err != nil {
		t.Fatalf("UpsertSchedule error: %v", err)
	}

	recent := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)
	for i, c := range []struct {
		at        time.Time
		isInsulin bool
	}{
		{recent, true},
		{stale, true},          // fuera de la ventana de 24h
		{recent, false},        // no insulina, no cuenta para IOB
	} {
		at := c.at
		if _, err := svc.LogDose(context.Background(), "patient-1", DoseInput{
			Medication: "rapid_acting",
			Dose:       3,
			IsInsulin:  c.isInsulin,
			TakenAt:    &at,
		}); err != nil {
			t.Fatalf("LogDose #%d error: %v", i, err)
		}
	}

	schedules, doses, err := svc.EngineInputs(context.Background(), "patient-1", now)
	if err != nil {
		t.Fatalf("EngineInputs error: %v", err)
	}

	if _, ok := schedules["long_acting"]; !ok {
		t.Fatalf("expected long_acting schedule, got %#v", schedules)
	}
	if len(doses) != 1 {
		t.Fatalf("expected 1 recent insulin dose, got %d", len(doses))
	}
	if !doses[0].TakenAt.Equal(recent) {
		t.Fatalf("unexpected dose timestamp %v", doses[0].TakenAt)
	}
}

func TestService_InsulinHistory_DefaultDays(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	now := svc.now()

	inWindow := now.AddDate(0, 0, -10)
	outWindow := now.AddDate(0, 0, -40)
	for _, ts := range []time.Time{inWindow, outWindow} {
		at := ts
		if _, err := svc.LogDose(context.Background(), "patient-1", DoseInput{
			Medication: "rapid_acting",
			Dose:       2,
			IsInsulin:  true,
			TakenAt:    &at,
		}); err != nil {
			t.Fatalf("LogDose error: %v", err)
		}
	}

	logs, err := svc.InsulinHistory(context.Background(), "patient-1", 0)
	if err != nil {
		t.Fatalf("InsulinHistory error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 dose within default 30 days, got %d", len(logs))
	}
}
