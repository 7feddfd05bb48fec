package careteam

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"diabetes-care-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/api/care-team/invites", inviteHandler(svc))
	r.Post("/api/care-team/grants/{grantID}/accept", acceptHandler(svc))
	r.Post("/api/care-team/grants/{grantID}/revoke", revokeHandler(svc))
	r.Get("/api/care-team/grants", listGrantsHandler(svc))

	r.Get("/api/doctor/patients", listPatientsHandler(svc))
}

type inviteRequest struct {
	DoctorUserID string   `json:"doctorUserId"`
	Scopes       []string `json:"scopes"`
}

type grantResponse struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patientId"`
	DoctorUserID string     `json:"doctorUserId"`
	Scopes       []string   `json:"scopes"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
}

func inviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req inviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scopes := make([]Scope, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			scopes = append(scopes, Scope(s))
		}

		g, err := svc.Invite(r.Context(), InviteInput{
			PatientID:    claims.UserID,
			DoctorUserID: req.DoctorUserID,
			Scopes:       scopes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(g))
	}
}

func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		g, err := svc.Accept(r.Context(), chi.URLParam(r, "grantID"), claims.UserID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		g, err := svc.Revoke(r.Context(), chi.URLParam(r, "grantID"), claims.UserID)
		if err != nil {
			writeGrantError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func listGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grants, err := svc.ListByPatient(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeGrantList(w, grants)
	}
}

// listPatientsHandler es la vista del médico: sus grants, de donde el
// cliente saca los pacientes accesibles y con qué scopes.
func listPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grants, err := svc.ListByDoctor(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeGrantList(w, grants)
	}
}

func writeGrantList(w http.ResponseWriter, grants []Grant) {
	out := make([]grantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, toGrantResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeGrantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, "invalid state", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toGrantResponse(g Grant) grantResponse {
	scopes := make([]string, 0, len(g.Scopes))
	for _, s := range g.Scopes {
		scopes = append(scopes, string(s))
	}
	return grantResponse{
		ID:           g.ID,
		PatientID:    g.PatientID,
		DoctorUserID: g.DoctorUserID,
		Scopes:       scopes,
		Status:       string(g.Status),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		RevokedAt:    g.RevokedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
