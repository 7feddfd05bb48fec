package bloodsugar

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
	r.Post("/api/blood-sugar", addReadingHandler(svc))
	r.Get("/api/blood-sugar", readingHistoryHandler(svc))

	r.Get("/api/doctor/patients/{patientID}/blood-sugar", doctorReadingHistoryHandler(svc, grantsSvc))
}

type addReadingRequest struct {
	BloodSugar *float64 `json:"bloodSugar"`
	Timestamp  string   `json:"bloodSugarTimestamp,omitempty"` // RFC3339; vacío = ahora
	Notes      string   `json:"notes"`
	Source     string   `json:"bloodSugarSource,omitempty"`
}

type readingResponse struct {
	ID         string    `json:"id"`
	BloodSugar float64   `json:"bloodSugar"`
	Status     string    `json:"status"`
	Target     float64   `json:"target"`
	TakenAt    time.Time `json:"bloodSugarTimestamp"`
	RecordedAt time.Time `json:"timestamp"`
	Notes      string    `json:"notes"`
	Source     string    `json:"source"`
}

func addReadingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addReadingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.BloodSugar == nil {
			http.Error(w, "bloodSugar is required", http.StatusBadRequest)
			return
		}

		in := AddInput{
			ValueMgdl: *req.BloodSugar,
			Notes:     req.Notes,
			Source:    req.Source,
		}
		if strings.TrimSpace(req.Timestamp) != "" {
			// timestamp ilegible: se registra con "ahora", no se rechaza
			if t, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
				in.TakenAt = &t
			}
		}

		reading, err := svc.Add(r.Context(), claims.UserID, in)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toReadingResponse(reading))
	}
}

func readingHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeReadings(w, r, svc, claims.UserID)
	}
}

func doctorReadingHistoryHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeBloodSugarRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeReadings(w, r, svc, patientID)
	}
}

func writeReadings(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) {
	hours := 24
	if v, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && v > 0 {
		hours = v
	}

	readings, err := svc.History(r.Context(), patientID, hours)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]readingResponse, 0, len(readings))
	for _, rd := range readings {
		out = append(out, toReadingResponse(rd))
	}
	writeJSON(w, http.StatusOK, out)
}

func toReadingResponse(rd Reading) readingResponse {
	return readingResponse{
		ID:         rd.ID,
		BloodSugar: rd.ValueMgdl,
		Status:     string(rd.Status),
		Target:     rd.Target,
		TakenAt:    rd.TakenAt,
		RecordedAt: rd.RecordedAt,
		Notes:      rd.Notes,
		Source:     rd.Source,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
