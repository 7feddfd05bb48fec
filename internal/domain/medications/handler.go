package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *careteam.Service) {
	r.Put("/api/medication-schedule", upsertScheduleHandler(svc))
	r.Get("/api/medication-schedule", getScheduleHandler(svc))
	r.Post("/api/medication-dose", logDoseHandler(svc))
	r.Get("/api/insulin-history", insulinHistoryHandler(svc))

	r.Get("/api/doctor/patients/{patientID}/insulin-history", doctorInsulinHistoryHandler(svc, grantsSvc))
	r.Put("/api/doctor/patients/{patientID}/medication-schedule", doctorUpsertScheduleHandler(svc, grantsSvc))
}

type scheduleRequest struct {
	Medication string   `json:"medication"`
	StartDate  string   `json:"startDate"` // RFC3339
	EndDate    string   `json:"endDate"`
	DailyTimes []string `json:"dailyTimes"` // "HH:MM"
}

type scheduleResponse struct {
	ID         string    `json:"id"`
	Medication string    `json:"medication"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	DailyTimes []string  `json:"dailyTimes"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UpdatedBy  string    `json:"updatedBy,omitempty"`
}

type logDoseRequest struct {
	Medication   string  `json:"medication"`
	Dose         float64 `json:"dose"`
	IsInsulin    bool    `json:"isInsulin"`
	TakenAt      string  `json:"takenAt,omitempty"` // RFC3339; vacío = ahora
	ScheduledFor string  `json:"scheduledFor,omitempty"`
	Notes        string  `json:"notes"`
}

type doseLogResponse struct {
	ID           string     `json:"id"`
	Medication   string     `json:"medication"`
	Dose         float64    `json:"dose"`
	IsInsulin    bool       `json:"isInsulin"`
	TakenAt      time.Time  `json:"takenAt"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	Notes        string     `json:"notes"`
	RecordedAt   time.Time  `json:"timestamp"`
}

func upsertScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeScheduleUpsert(w, r, svc, claims.UserID, claims.UserID)
	}
}

func doctorUpsertScheduleHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
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

		writeScheduleUpsert(w, r, svc, patientID, claims.UserID)
	}
}

func writeScheduleUpsert(w http.ResponseWriter, r *http.Request, svc *Service, patientID, updatedBy string) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		http.Error(w, "invalid startDate", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		http.Error(w, "invalid endDate", http.StatusBadRequest)
		return
	}

	sched, err := svc.UpsertSchedule(r.Context(), patientID, ScheduleInput{
		Medication: req.Medication,
		StartDate:  start,
		EndDate:    end,
		DailyTimes: req.DailyTimes,
		UpdatedBy:  updatedBy,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toScheduleResponse(sched))
}

func getScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		medication := strings.TrimSpace(r.URL.Query().Get("medication"))
		if medication == "" {
			http.Error(w, "medication is required", http.StatusBadRequest)
			return
		}

		sched, err := svc.ActiveSchedule(r.Context(), claims.UserID, medication)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(sched))
	}
}

func logDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req logDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := DoseInput{
			Medication: req.Medication,
			Dose:       req.Dose,
			IsInsulin:  req.IsInsulin,
			Notes:      req.Notes,
		}
		if strings.TrimSpace(req.TakenAt) != "" {
			if t, err := time.Parse(time.RFC3339, req.TakenAt); err == nil {
				in.TakenAt = &t
			}
		}
		if strings.TrimSpace(req.ScheduledFor) != "" {
			if t, err := time.Parse(time.RFC3339, req.ScheduledFor); err == nil {
				in.ScheduledFor = &t
			}
		}

		d, err := svc.LogDose(r.Context(), claims.UserID, in)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDoseLogResponse(d))
	}
}

func insulinHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeInsulinHistory(w, r, svc, claims.UserID)
	}
}

func doctorInsulinHistoryHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeInsulinRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeInsulinHistory(w, r, svc, patientID)
	}
}

func writeInsulinHistory(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) {
	days := 30
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && v > 0 {
		days = v
	}

	logs, err := svc.InsulinHistory(r.Context(), patientID, days)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]doseLogResponse, 0, len(logs))
	for _, d := range logs {
		out = append(out, toDoseLogResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func toScheduleResponse(sc Schedule) scheduleResponse {
	return scheduleResponse{
		ID:         sc.ID,
		Medication: sc.Medication,
		StartDate:  sc.StartDate,
		EndDate:    sc.EndDate,
		DailyTimes: sc.DailyTimes,
		UpdatedAt:  sc.UpdatedAt,
		UpdatedBy:  sc.UpdatedBy,
	}
}

func toDoseLogResponse(d DoseLog) doseLogResponse {
	return doseLogResponse{
		ID:           d.ID,
		Medication:   d.Medication,
		Dose:         d.Dose,
		IsInsulin:    d.IsInsulin,
		TakenAt:      d.TakenAt,
		ScheduledFor: d.ScheduledFor,
		Notes:        d.Notes,
		RecordedAt:   d.RecordedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
