package profile

import "diabetes-care-backend/internal/domain/units"

// TimeOfDayWindow define una franja horaria [inicio, fin) con su factor.
// Las franjas del paciente deberían cubrir las 24h; si no, cae en "daytime".
type TimeOfDayWindow struct {
	Hours  [2]int
	Factor float64
}

// DiseaseFactor es el multiplicador de una condición activa.
type DiseaseFactor struct {
	Factor float64
}

// MedicationFactor describe el efecto de un medicamento sobre la necesidad
// de insulina. Si DurationBased, el efecto decae en el tiempo según
// onset/peak/duration desde la última toma.
type MedicationFactor struct {
	Factor        float64
	DurationBased bool
	OnsetHours    float64
	PeakHours     float64
	DurationHours float64
	IsPeakless    bool // formulaciones lentas sin pico: curva meseta
}

// TimingGuideline indica cuántos minutos antes de comer conviene la dosis
// según la velocidad de absorción de la comida.
type TimingGuideline struct {
	TimingMinutes int
	Description   string
}

// Constants son las constantes fisiológicas del paciente que consume el
// motor de dosis. El motor recibe un snapshot y nunca lo muta.
type Constants struct {
	InsulinToCarbRatio float64 // g de carbs cubiertos por 1U
	CorrectionFactor   float64 // mg/dL corregidos por 1U
	TargetGlucose      float64 // mg/dL
	ProteinFactor      float64 // fracción de proteína tratada como carb
	FatFactor          float64 // fracción de grasa tratada como carb

	ActivityCoefficients map[string]float64 // nivel "-2".."2" -> multiplicador
	AbsorptionModifiers  map[string]float64 // very_slow..very_fast -> multiplicador
	MealTimingFactors    map[string]float64 // breakfast/lunch/dinner/snack
	TimeOfDayFactors     map[string]TimeOfDayWindow
	DiseaseFactors       map[string]DiseaseFactor
	MedicationFactors    map[string]MedicationFactor

	InsulinTimingGuidelines map[string]TimingGuideline

	// Tablas de medidas: misma fuente de configuración que el resto
	// de constantes, sobreescribibles por paciente.
	VolumeMeasurements map[string]float64
	WeightMeasurements map[string]float64
}

// Defaults devuelve las constantes base del sistema. Cada paciente puede
// sobreescribir campos individuales (ver Overrides).
func Defaults() Constants {
	return Constants{
		InsulinToCarbRatio: 10,
		CorrectionFactor:   50,
		TargetGlucose:      100,
		ProteinFactor:      0.5,
		FatFactor:          0.2,

		// Convención multiplicativa: <1 reduce la dosis (más actividad),
		// >1 la aumenta (reposo/sueño).
		ActivityCoefficients: map[string]float64{
			"-2": 1.2, // sleep
			"-1": 1.1, // very low activity
			"0":  1.0, // normal
			"1":  0.9, // high activity
			"2":  0.8, // vigorous activity
		},
		AbsorptionModifiers: map[string]float64{
			"very_slow": 0.6,
			"slow":      0.8,
			"medium":    1.0,
			"fast":      1.2,
			"very_fast": 1.4,
		},
		MealTimingFactors: map[string]float64{
			"breakfast": 1.2,
			"lunch":     1.0,
			"dinner":    0.9,
			"snack":     1.0,
		},
		TimeOfDayFactors: map[string]TimeOfDayWindow{
			"early_morning": {Hours: [2]int{0, 6}, Factor: 1.1}, // fenómeno del alba
			"daytime":       {Hours: [2]int{6, 22}, Factor: 1.0},
			"late_night":    {Hours: [2]int{22, 24}, Factor: 0.9},
		},
		DiseaseFactors: map[string]DiseaseFactor{
			"infection":        {Factor: 1.2},
			"stress":           {Factor: 1.1},
			"hypothyroidism":   {Factor: 0.9},
			"renal_impairment": {Factor: 0.85},
		},
		MedicationFactors: map[string]MedicationFactor{
			"metformin":       {Factor: 0.9},
			"corticosteroids": {Factor: 1.4, DurationBased: true, OnsetHours: 2, PeakHours: 6, DurationHours: 24},
			"rapid_acting":    {Factor: 1.0, DurationBased: true, OnsetHours: 0.25, PeakHours: 1.5, DurationHours: 4},
			"long_acting":     {Factor: 1.0, DurationBased: true, OnsetHours: 2, DurationHours: 24, IsPeakless: true},
		},
		InsulinTimingGuidelines: map[string]TimingGuideline{
			"very_slow": {TimingMinutes: 0, Description: "Take insulin at the start of meal"},
			"slow":      {TimingMinutes: 5, Description: "Take insulin 5 minutes before meal"},
			"medium":    {TimingMinutes: 10, Description: "Take insulin 10 minutes before meal"},
			"fast":      {TimingMinutes: 15, Description: "Take insulin 15 minutes before meal"},
			"very_fast": {TimingMinutes: 20, Description: "Take insulin 20 minutes before meal"},
		},

		VolumeMeasurements: units.DefaultVolume(),
		WeightMeasurements: units.DefaultWeight(),
	}
}

// Converter arma el conversor de unidades con las tablas del perfil.
func (c Constants) Converter() units.Converter {
	return units.NewConverter(c.VolumeMeasurements, c.WeightMeasurements)
}

// HealthState son las condiciones y medicamentos activos del paciente,
// input del multiplicador de salud del motor de dosis.
type HealthState struct {
	ActiveConditions  []string
	ActiveMedications []string
}

// Overrides son los campos que un paciente (o su médico) puede sobreescribir.
// Punteros/maps nil = no tocar, igual que un PATCH.
type Overrides struct {
	InsulinToCarbRatio *float64
	CorrectionFactor   *float64
	TargetGlucose      *float64
	ProteinFactor      *float64
	FatFactor          *float64

	ActivityCoefficients map[string]float64
	AbsorptionModifiers  map[string]float64
	MealTimingFactors    map[string]float64
	TimeOfDayFactors     map[string]TimeOfDayWindow
	DiseaseFactors       map[string]DiseaseFactor
	MedicationFactors    map[string]MedicationFactor
}

// Apply devuelve una copia de c con los overrides aplicados.
// Los maps se reemplazan completos (no se mergean clave a clave),
// igual que hacía el documento patient_constants original.
func (c Constants) Apply(o Overrides) Constants {
	out := c

	if o.InsulinToCarbRatio != nil {
		out.InsulinToCarbRatio = *o.InsulinToCarbRatio
	}
	if o.CorrectionFactor != nil {
		out.CorrectionFactor = *o.CorrectionFactor
	}
	if o.TargetGlucose != nil {
		out.TargetGlucose = *o.TargetGlucose
	}
	if o.ProteinFactor != nil {
		out.ProteinFactor = *o.ProteinFactor
	}
	if o.FatFactor != nil {
		out.FatFactor = *o.FatFactor
	}

	if o.ActivityCoefficients != nil {
		out.ActivityCoefficients = o.ActivityCoefficients
	}
	if o.AbsorptionModifiers != nil {
		out.AbsorptionModifiers = o.AbsorptionModifiers
	}
	if o.MealTimingFactors != nil {
		out.MealTimingFactors = o.MealTimingFactors
	}
	if o.TimeOfDayFactors != nil {
		out.TimeOfDayFactors = o.TimeOfDayFactors
	}
	if o.DiseaseFactors != nil {
		out.DiseaseFactors = o.DiseaseFactors
	}
	if o.MedicationFactors != nil {
		out.MedicationFactors = o.MedicationFactors
	}

	return out
}
