package insulin

import (
	"math"
	"testing"
	"time"

	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/platform/logger"
)

func TestEffectStrength_ThreePhases(t *testing.T) {
	m := profile.MedicationFactor{
		Factor:        1.4,
		DurationBased: true,
		OnsetHours:    2,
		PeakHours:     6,
		DurationHours: 24,
	}

	cases := []struct {
		hours float64
		want  float64
	}{
		{-1, 0},   // antes de la toma
		{0, 0},    // arranque de la rampa
		{1, 0.5},  // mitad del onset
		{2, 1},    // onset completo
		{4, 1},    // plena entre onset y peak
		{6, 1},    // peak
		{15, 0.5}, // mitad del decaimiento (6..24)
		{24, 0},   // duración cumplida
		{30, 0},   // sin efecto residual
	}

	for _, tc := range cases {
		got := effectStrength(m, tc.hours)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("h=%v: esperaba s=%v, got %v", tc.hours, tc.want, got)
		}
	}
}

func TestActivityPercent_PeaklessPlateau(t *testing.T) {
	m := profile.MedicationFactor{
		Factor:        1.0,
		DurationBased: true,
		OnsetHours:    2,
		DurationHours: 24,
		IsPeakless:    true,
	}

	// a mitad de la duración la basal sin pico está en la meseta del 85%
	got := ActivityPercent(m, 12)
	if math.Abs(got-85) > 1e-9 {
		t.Fatalf("peakless a duration/2: esperaba 85, got %v", got)
	}

	// rampa inicial: mitad del onset => 42.5
	got = ActivityPercent(m, 1)
	if math.Abs(got-42.5) > 1e-9 {
		t.Fatalf("peakless a mitad de onset: esperaba 42.5, got %v", got)
	}

	// decaimiento final: hold = 20.4, a las 22.2 queda la mitad del tramo
	got = ActivityPercent(m, 22.2)
	if math.Abs(got-42.5) > 1e-6 {
		t.Fatalf("peakless en el tramo final: esperaba 42.5, got %v", got)
	}

	if got := ActivityPercent(m, 25); got != 0 {
		t.Fatalf("pasada la duración: 0, got %v", got)
	}
}

func TestHealthFactors_DiseaseAndStaticMedication(t *testing.T) {
	c := profile.Defaults()
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	// infection 1.2 x metformin 0.9 = 1.08
	got := HealthFactors(c, []string{"infection"}, []string{"metformin"}, nil, nil, now, logger.Nop())
	if math.Abs(got-1.08) > 1e-9 {
		t.Fatalf("esperaba 1.08, got %v", got)
	}
}

func TestHealthFactors_UnknownKeysAreNeutral(t *testing.T) {
	c := profile.Defaults()
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	got := HealthFactors(c, []string{"moon_allergy"}, []string{"unobtainium"}, nil, nil, now, logger.Nop())
	if got != 1.0 {
		t.Fatalf("claves desconocidas no afectan, got %v", got)
	}
}

func TestHealthFactors_DurationBasedUsesSchedule(t *testing.T) {
	c := profile.Defaults()
	now := time.Date(2025, 12, 22, 14, 0, 0, 0, time.UTC)

	sched := map[string]Schedule{
		"corticosteroids": {
			StartDate:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			DailyTimes: []string{"08:00", "20:00"},
		},
	}

	// última toma 08:00, h=6 => peak exacto, s=1 => factor completo 1.4
	got := HealthFactors(c, nil, []string{"corticosteroids"}, sched, nil, now, logger.Nop())
	if math.Abs(got-1.4) > 1e-9 {
		t.Fatalf("corticoides en peak: esperaba 1.4, got %v", got)
	}
}

func TestHealthFactors_DurationBasedWithoutDoseIsNeutral(t *testing.T) {
	c := profile.Defaults()
	now := time.Date(2025, 12, 22, 14, 0, 0, 0, time.UTC)

	got := HealthFactors(c, nil, []string{"corticosteroids"}, nil, nil, now, logger.Nop())
	if got != 1.0 {
		t.Fatalf("sin toma localizable no hay efecto, got %v", got)
	}
}

func TestHealthFactors_ClampBounds(t *testing.T) {
	c := profile.Defaults()
	c.DiseaseFactors = map[string]profile.DiseaseFactor{
		"a": {Factor: 3.0},
		"b": {Factor: 3.0},
	}
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	got := HealthFactors(c, []string{"a", "b"}, nil, nil, nil, now, logger.Nop())
	if got != 2.0 {
		t.Fatalf("tope superior 2.0, got %v", got)
	}

	c.DiseaseFactors = map[string]profile.DiseaseFactor{
		"a": {Factor: 0.1},
		"b": {Factor: 0.1},
	}
	got = HealthFactors(c, []string{"a", "b"}, nil, nil, nil, now, logger.Nop())
	if got != 0.1 {
		t.Fatalf("piso 0.1, got %v", got)
	}
}

func TestLastDoseTime_PrefersExplicitDoses(t *testing.T) {
	now := time.Date(2025, 12, 22, 14, 0, 0, 0, time.UTC)

	doses := []ActiveDose{
		{Medication: "corticosteroids", Dose: 1, TakenAt: now.Add(-3 * time.Hour)},
		{Medication: "corticosteroids", Dose: 1, TakenAt: now.Add(-9 * time.Hour)},
		{Medication: "other", Dose: 1, TakenAt: now.Add(-1 * time.Hour)},
	}
	sched := Schedule{DailyTimes: []string{"13:00"}}

	got, ok := lastDoseTime("corticosteroids", sched, doses, now)
	if !ok || !got.Equal(now.Add(-3*time.Hour)) {
		t.Fatalf("debería ganar el registro explícito más reciente, got %v ok=%v", got, ok)
	}
}

func TestLastDoseTime_FallsBackToYesterday(t *testing.T) {
	// 06:00 de hoy: la única toma diaria es 20:00, así que la última fue ayer
	now := time.Date(2025, 12, 22, 6, 0, 0, 0, time.UTC)
	sched := Schedule{
		StartDate:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		DailyTimes: []string{"20:00"},
	}

	got, ok := lastDoseTime("x", sched, nil, now)
	want := time.Date(2025, 12, 21, 20, 0, 0, 0, time.UTC)
	if !ok || !got.Equal(want) {
		t.Fatalf("esperaba %v, got %v ok=%v", want, got, ok)
	}
}

func TestActiveInsulin_SumsDecayedDoses(t *testing.T) {
	c := profile.Defaults()
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	doses := []ActiveDose{
		// rapid_acting: onset .25, peak 1.5, duration 4; a 1h está en plena actividad
		{Medication: "rapid_acting", Dose: 6, TakenAt: now.Add(-1 * time.Hour)},
		// fuera de ventana
		{Medication: "rapid_acting", Dose: 10, TakenAt: now.Add(-8 * time.Hour)},
		// futura: se ignora
		{Medication: "rapid_acting", Dose: 4, TakenAt: now.Add(1 * time.Hour)},
	}

	got := ActiveInsulin(doses, c.MedicationFactors, now)
	if math.Abs(got-6) > 1e-9 {
		t.Fatalf("IOB: esperaba 6, got %v", got)
	}
}

func TestActiveInsulin_UnknownTypeUsesDefaultCurve(t *testing.T) {
	now := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)

	doses := []ActiveDose{
		{Medication: "mystery_insulin", Dose: 4, TakenAt: now.Add(-1 * time.Hour)},
	}

	// curva rápida por defecto: a 1h (entre onset y peak) está al 100%
	got := ActiveInsulin(doses, nil, now)
	if math.Abs(got-4) > 1e-9 {
		t.Fatalf("esperaba 4 con la curva por defecto, got %v", got)
	}
}
