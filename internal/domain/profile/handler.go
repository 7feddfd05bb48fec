package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *careteam.Service) {
	r.Get("/api/patient/constants", getConstantsHandler(svc))
	r.Put("/api/patient/constants", updateConstantsHandler(svc))
	r.Get("/api/patient/health-state", getHealthStateHandler(svc))
	r.Put("/api/patient/health-state", updateHealthStateHandler(svc))
	r.Get("/api/measurements", measurementsHandler(svc))

	// Ajuste de terapia por el médico: requiere grant constants:write.
	r.Get("/api/doctor/patients/{patientID}/constants", doctorGetConstantsHandler(svc, grantsSvc))
	r.Put("/api/doctor/patients/{patientID}/constants", doctorUpdateConstantsHandler(svc, grantsSvc))
}

// Los payloads de constantes usan snake_case, igual que el desglose de dosis.
type timeOfDayWindowDTO struct {
	Hours  [2]int  `json:"hours"`
	Factor float64 `json:"factor"`
}

type diseaseFactorDTO struct {
	Factor float64 `json:"factor"`
}

type medicationFactorDTO struct {
	Factor        float64 `json:"factor"`
	DurationBased bool    `json:"duration_based"`
	OnsetHours    float64 `json:"onset_hours,omitempty"`
	PeakHours     float64 `json:"peak_hours,omitempty"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	IsPeakless    bool    `json:"is_peakless,omitempty"`
}

type timingGuidelineDTO struct {
	TimingMinutes int    `json:"timing_minutes"`
	Description   string `json:"description"`
}

type constantsResponse struct {
	InsulinToCarbRatio float64 `json:"insulin_to_carb_ratio"`
	CorrectionFactor   float64 `json:"correction_factor"`
	TargetGlucose      float64 `json:"target_glucose"`
	ProteinFactor      float64 `json:"protein_factor"`
	FatFactor          float64 `json:"fat_factor"`

	ActivityCoefficients map[string]float64             `json:"activity_coefficients"`
	AbsorptionModifiers  map[string]float64             `json:"absorption_modifiers"`
	MealTimingFactors    map[string]float64             `json:"meal_timing_factors"`
	TimeOfDayFactors     map[string]timeOfDayWindowDTO  `json:"time_of_day_factors"`
	DiseaseFactors       map[string]diseaseFactorDTO    `json:"disease_factors"`
	MedicationFactors    map[string]medicationFactorDTO `json:"medication_factors"`

	InsulinTimingGuidelines map[string]timingGuidelineDTO `json:"insulin_timing_guidelines"`
}

type updateConstantsRequest struct {
	InsulinToCarbRatio *float64 `json:"insulin_to_carb_ratio"`
	CorrectionFactor   *float64 `json:"correction_factor"`
	TargetGlucose      *float64 `json:"target_glucose"`
	ProteinFactor      *float64 `json:"protein_factor"`
	FatFactor          *float64 `json:"fat_factor"`

	ActivityCoefficients map[string]float64             `json:"activity_coefficients"`
	AbsorptionModifiers  map[string]float64             `json:"absorption_modifiers"`
	MealTimingFactors    map[string]float64             `json:"meal_timing_factors"`
	TimeOfDayFactors     map[string]timeOfDayWindowDTO  `json:"time_of_day_factors"`
	DiseaseFactors       map[string]diseaseFactorDTO    `json:"disease_factors"`
	MedicationFactors    map[string]medicationFactorDTO `json:"medication_factors"`
}

type healthStateRequest struct {
	ActiveConditions  []string `json:"active_conditions"`
	ActiveMedications []string `json:"active_medications"`
}

func getConstantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeConstants(w, r, svc, claims.UserID)
	}
}

func doctorGetConstantsHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeConstantsWrite); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeConstants(w, r, svc, patientID)
	}
}

func writeConstants(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) {
	c, err := svc.ConstantsFor(r.Context(), patientID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toConstantsResponse(c))
}

func updateConstantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeConstantsUpdate(w, r, svc, claims.UserID)
	}
}

func doctorUpdateConstantsHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeConstantsWrite); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeConstantsUpdate(w, r, svc, patientID)
	}
}

func writeConstantsUpdate(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) {
	var req updateConstantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := svc.Update(r.Context(), patientID, toOverrides(req))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toConstantsResponse(c))
}

func getHealthStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		h, err := svc.HealthStateFor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, healthStateRequest{
			ActiveConditions:  emptyIfNil(h.ActiveConditions),
			ActiveMedications: emptyIfNil(h.ActiveMedications),
		})
	}
}

func updateHealthStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req healthStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		h, err := svc.UpdateHealthState(r.Context(), claims.UserID, HealthState{
			ActiveConditions:  req.ActiveConditions,
			ActiveMedications: req.ActiveMedications,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, healthStateRequest{
			ActiveConditions:  emptyIfNil(h.ActiveConditions),
			ActiveMedications: emptyIfNil(h.ActiveMedications),
		})
	}
}

// measurementsHandler expone las unidades soportadas para el formulario
// de carga de comidas.
func measurementsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.ConstantsFor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"volume": c.VolumeMeasurements,
			"weight": c.WeightMeasurements,
		})
	}
}

func toOverrides(req updateConstantsRequest) Overrides {
	o := Overrides{
		InsulinToCarbRatio:   req.InsulinToCarbRatio,
		CorrectionFactor:     req.CorrectionFactor,
		TargetGlucose:        req.TargetGlucose,
		ProteinFactor:        req.ProteinFactor,
		FatFactor:            req.FatFactor,
		ActivityCoefficients: req.ActivityCoefficients,
		AbsorptionModifiers:  req.AbsorptionModifiers,
		MealTimingFactors:    req.MealTimingFactors,
	}

	if req.TimeOfDayFactors != nil {
		o.TimeOfDayFactors = make(map[string]TimeOfDayWindow, len(req.TimeOfDayFactors))
		for k, v := range req.TimeOfDayFactors {
			o.TimeOfDayFactors[k] = TimeOfDayWindow{Hours: v.Hours, Factor: v.Factor}
		}
	}
	if req.DiseaseFactors != nil {
		o.DiseaseFactors = make(map[string]DiseaseFactor, len(req.DiseaseFactors))
		for k, v := range req.DiseaseFactors {
			o.DiseaseFactors[k] = DiseaseFactor{Factor: v.Factor}
		}
	}
	if req.MedicationFactors != nil {
		o.MedicationFactors = make(map[string]MedicationFactor, len(req.MedicationFactors))
		for k, v := range req.MedicationFactors {
			o.MedicationFactors[k] = MedicationFactor{
				Factor:        v.Factor,
				DurationBased: v.DurationBased,
				OnsetHours:    v.OnsetHours,
				PeakHours:     v.PeakHours,
				DurationHours: v.DurationHours,
				IsPeakless:    v.IsPeakless,
			}
		}
	}

	return o
}

func toConstantsResponse(c Constants) constantsResponse {
	out := constantsResponse{
		InsulinToCarbRatio:   c.InsulinToCarbRatio,
		CorrectionFactor:     c.CorrectionFactor,
		TargetGlucose:        c.TargetGlucose,
		ProteinFactor:        c.ProteinFactor,
		FatFactor:            c.FatFactor,
		ActivityCoefficients: c.ActivityCoefficients,
		AbsorptionModifiers:  c.AbsorptionModifiers,
		MealTimingFactors:    c.MealTimingFactors,
	}

	out.TimeOfDayFactors = make(map[string]timeOfDayWindowDTO, len(c.TimeOfDayFactors))
	for k, v := range c.TimeOfDayFactors {
		out.TimeOfDayFactors[k] = timeOfDayWindowDTO{Hours: v.Hours, Factor: v.Factor}
	}
	out.DiseaseFactors = make(map[string]diseaseFactorDTO, len(c.DiseaseFactors))
	for k, v := range c.DiseaseFactors {
		out.DiseaseFactors[k] = diseaseFactorDTO{Factor: v.Factor}
	}
	out.MedicationFactors = make(map[string]medicationFactorDTO, len(c.MedicationFactors))
	for k, v := range c.MedicationFactors {
		out.MedicationFactors[k] = medicationFactorDTO{
			Factor:        v.Factor,
			DurationBased: v.DurationBased,
			OnsetHours:    v.OnsetHours,
			PeakHours:     v.PeakHours,
			DurationHours: v.DurationHours,
			IsPeakless:    v.IsPeakless,
		}
	}
	out.InsulinTimingGuidelines = make(map[string]timingGuidelineDTO, len(c.InsulinTimingGuidelines))
	for k, v := range c.InsulinTimingGuidelines {
		out.InsulinTimingGuidelines[k] = timingGuidelineDTO{
			TimingMinutes: v.TimingMinutes,
			Description:   v.Description,
		}
	}

	return out
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
