package activities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *careteam.Service) {
	r.Post("/api/record-activities", recordActivitiesHandler(svc))
	r.Get("/api/activity-history", activityHistoryHandler(svc))

	r.Get("/api/doctor/patients/{patientID}/activity-history", doctorActivityHistoryHandler(svc, grantsSvc))
}

type activityRequest struct {
	Level    int          `json:"level"`
	Duration FlexDuration `json:"duration"` // "HH:MM" o horas
	// Según la lista: expectedTime o completedTime (RFC3339)
	ExpectedTime  string `json:"expectedTime,omitempty"`
	CompletedTime string `json:"completedTime,omitempty"`
}

type recordActivitiesRequest struct {
	Expected  []activityRequest `json:"expectedActivities"`
	Completed []activityRequest `json:"completedActivities"`
}

type activityRecordResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Level       int        `json:"level"`
	Duration    string     `json:"duration"`
	ExpectedAt  *time.Time `json:"expectedTime,omitempty"`
	CompletedAt *time.Time `json:"completedTime,omitempty"`
	RecordedAt  time.Time  `json:"timestamp"`
}

func recordActivitiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req recordActivitiesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		toInput := func(in activityRequest, at string) Input {
			out := Input{Level: in.Level, DurationHours: in.Duration.Hours()}
			if t, err := time.Parse(time.RFC3339, at); err == nil {
				out.At = t
			}
			// timestamp ilegible: se usa "ahora" en el service
			return out
		}

		expected := make([]Input, 0, len(req.Expected))
		for _, a := range req.Expected {
			expected = append(expected, toInput(a, a.ExpectedTime))
		}
		completed := make([]Input, 0, len(req.Completed))
		for _, a := range req.Completed {
			completed = append(completed, toInput(a, a.CompletedTime))
		}

		records, err := svc.Record(r.Context(), claims.UserID, expected, completed)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]activityRecordResponse, 0, len(records))
		for _, rec := range records {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func activityHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeHistory(w, r, svc, claims.UserID)
	}
}

func doctorActivityHistoryHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeActivitiesRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeHistory(w, r, svc, patientID)
	}
}

func writeHistory(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) {
	records, err := svc.History(r.Context(), patientID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]activityRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func toRecordResponse(rec Record) activityRecordResponse {
	return activityRecordResponse{
		ID:          rec.ID,
		Type:        string(rec.Type),
		Level:       rec.Level,
		Duration:    rec.Duration,
		ExpectedAt:  rec.ExpectedAt,
		CompletedAt: rec.CompletedAt,
		RecordedAt:  rec.RecordedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
