package insulin

import (
	"math"
	"testing"
	"time"

	"diabetes-care-backend/internal/domain/profile"
	"diabetes-care-backend/internal/platform/logger"
)

func TestActivityImpact_NoActivities(t *testing.T) {
	got := ActivityImpact(nil, profile.Defaults().ActivityCoefficients, logger.Nop())
	if got != 1.0 {
		t.Fatalf("sin actividades => 1.0, got %v", got)
	}
}

func TestActivityImpact_DurationSaturatesAtTwoHours(t *testing.T) {
	coeffs := map[string]float64{"2": 0.8}

	// 2 horas: peso 1, coeficiente completo
	got := ActivityImpact([]Activity{{Level: 2, Duration: 2}}, coeffs, logger.Nop())
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("2h nivel 2: esperaba 0.8, got %v", got)
	}

	// 4 horas: sigue saturado en el coeficiente
	got = ActivityImpact([]Activity{{Level: 2, Duration: 4}}, coeffs, logger.Nop())
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("4h nivel 2: el peso satura, esperaba 0.8, got %v", got)
	}

	// 1 hora: peso 0.5 => 1 + (0.8-1)*0.5 = 0.9
	got = ActivityImpact([]Activity{{Level: 2, Duration: 1}}, coeffs, logger.Nop())
	if math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("1h nivel 2: esperaba 0.9, got %v", got)
	}
}

func TestActivityImpact_UnknownLevelIsNeutral(t *testing.T) {
	got := ActivityImpact([]Activity{{Level: 7, Duration: 2}}, map[string]float64{"2": 0.8}, logger.Nop())
	if got != 1.0 {
		t.Fatalf("nivel desconocido => neutro, got %v", got)
	}
}

func TestActivityImpact_MultipliesActivities(t *testing.T) {
	coeffs := map[string]float64{"-2": 1.2, "1": 0.9}

	got := ActivityImpact([]Activity{
		{Level: -2, Duration: 8}, // dormir, saturado => 1.2
		{Level: 1, Duration: 2},  // saturado => 0.9
	}, coeffs, logger.Nop())

	if math.Abs(got-1.08) > 1e-9 {
		t.Fatalf("1.2*0.9: esperaba 1.08, got %v", got)
	}
}

func TestMealTimingFactor_UsesMealTypeAndWindow(t *testing.T) {
	c := profile.Defaults()

	// desayuno 1.2 x madrugada 1.1
	at := time.Date(2025, 12, 22, 5, 30, 0, 0, time.UTC)
	got := MealTimingFactor("breakfast", at, c)
	if math.Abs(got-1.32) > 1e-9 {
		t.Fatalf("breakfast 05:30: esperaba 1.32, got %v", got)
	}

	// cena 0.9 x noche 0.9
	at = time.Date(2025, 12, 22, 23, 0, 0, 0, time.UTC)
	got = MealTimingFactor("dinner", at, c)
	if math.Abs(got-0.81) > 1e-9 {
		t.Fatalf("dinner 23:00: esperaba 0.81, got %v", got)
	}
}

func TestMealTimingFactor_UnknownMealTypeDefaultsToOne(t *testing.T) {
	c := profile.Defaults()

	at := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)
	got := MealTimingFactor("brunch", at, c)
	if got != 1.0 {
		t.Fatalf("tipo desconocido al mediodía: esperaba 1.0, got %v", got)
	}
}

func TestMealTimingFactor_DaytimeFallback(t *testing.T) {
	c := profile.Defaults()
	// franjas que no cubren la noche: cae en daytime
	c.TimeOfDayFactors = map[string]profile.TimeOfDayWindow{
		"morning": {Hours: [2]int{6, 12}, Factor: 1.2},
		"daytime": {Hours: [2]int{12, 18}, Factor: 0.95},
	}

	at := time.Date(2025, 12, 22, 22, 0, 0, 0, time.UTC)
	got := MealTimingFactor("lunch", at, c)
	if math.Abs(got-0.95) > 1e-9 {
		t.Fatalf("fuera de franja cae en daytime: esperaba 0.95, got %v", got)
	}
}

func TestMealTimingFactor_NoWindowsAtAll(t *testing.T) {
	c := profile.Defaults()
	c.TimeOfDayFactors = nil

	at := time.Date(2025, 12, 22, 12, 0, 0, 0, time.UTC)
	got := MealTimingFactor("lunch", at, c)
	if got != 1.0 {
		t.Fatalf("sin franjas: solo el factor del tipo de comida, got %v", got)
	}
}
