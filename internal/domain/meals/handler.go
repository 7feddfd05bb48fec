package meals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"diabetes-care-backend/internal/domain/activities"
	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/domain/insulin"
	"diabetes-care-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, grantsSvc *careteam.Service) {
	r.Post("/api/meal", submitMealHandler(svc))
	r.Get("/api/meals", listMealsHandler(svc))

	// Historial de un paciente visto por su médico (requiere grant meals:read)
	r.Get("/api/doctor/patients/{patientID}/meals", doctorMealHistoryHandler(svc, grantsSvc))

	r.Get("/api/food/search", searchFoodHandler(svc))
}

type foodItemRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type activityRequest struct {
	Level    int                     `json:"level"`
	Duration activities.FlexDuration `json:"duration"` // "HH:MM" o horas
}

type submitMealRequest struct {
	MealType        string            `json:"mealType"`
	FoodItems       []foodItemRequest `json:"foodItems"`
	Activities      []activityRequest `json:"activities"`
	BloodSugar      *float64          `json:"bloodSugar"`
	IntendedInsulin *float64          `json:"intendedInsulin"`
	Notes           string            `json:"notes"`
}

type doseResponse struct {
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown"`
}

type timingAdviceResponse struct {
	TimingMinutes int    `json:"timing_minutes"`
	Description   string `json:"description"`
}

type mealResponse struct {
	ID               string              `json:"id"`
	MealType         string              `json:"mealType"`
	FoodItems        []foodItemRequest   `json:"foodItems"`
	Activities       []activityResponse  `json:"activities"`
	Nutrition        nutritionResponse   `json:"nutrition"`
	BloodSugar       *float64            `json:"bloodSugar,omitempty"`
	IntendedInsulin  *float64            `json:"intendedInsulin,omitempty"`
	SuggestedInsulin float64             `json:"suggestedInsulin"`
	InsulinBreakdown map[string]float64  `json:"insulinCalculation"`
	Notes            string              `json:"notes"`
	Timestamp        time.Time           `json:"timestamp"`
}

type activityResponse struct {
	Level         int     `json:"level"`
	DurationHours float64 `json:"durationHours"`
}

type nutritionResponse struct {
	Calories         float64 `json:"calories"`
	Carbs            float64 `json:"carbs"`
	Protein          float64 `json:"protein"`
	Fat              float64 `json:"fat"`
	AbsorptionFactor float64 `json:"absorption_factor"`
}

type submitMealResponse struct {
	Meal         mealResponse         `json:"meal"`
	Insulin      doseResponse         `json:"insulinCalculation"`
	TimingAdvice timingAdviceResponse `json:"timingAdvice"`
}

type listMealsResponse struct {
	Meals      []mealResponse `json:"meals"`
	Pagination paginationInfo `json:"pagination"`
}

type paginationInfo struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

func submitMealHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitMealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		items := make([]FoodItem, 0, len(req.FoodItems))
		for _, it := range req.FoodItems {
			items = append(items, FoodItem{Name: it.Name, Amount: it.Amount, Unit: it.Unit})
		}
		acts := make([]ActivityEntry, 0, len(req.Activities))
		for _, a := range req.Activities {
			acts = append(acts, ActivityEntry{Level: a.Level, DurationHours: a.Duration.Hours()})
		}

		res, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			MealType:        req.MealType,
			FoodItems:       items,
			Activities:      acts,
			BloodSugar:      req.BloodSugar,
			IntendedInsulin: req.IntendedInsulin,
			Notes:           req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, insulin.ErrTherapyConstants):
				// perfil mal configurado, no un request inválido
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, submitMealResponse{
			Meal:    toMealResponse(res.Meal),
			Insulin: doseResponse{Total: res.Dose.Total, Breakdown: res.Dose.Breakdown},
			TimingAdvice: timingAdviceResponse{
				TimingMinutes: res.TimingAdvice.TimingMinutes,
				Description:   res.TimingAdvice.Description,
			},
		})
	}
}

func listMealsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit, skip := paginationParams(r)
		writeMealPage(w, r, svc, claims.UserID, limit, skip)
	}
}

func doctorMealHistoryHandler(svc *Service, grantsSvc *careteam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		patientID := chi.URLParam(r, "patientID")
		if err := grantsSvc.Authorize(r.Context(), patientID, claims.UserID, careteam.ScopeMealsRead); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		limit, skip := paginationParams(r)
		writeMealPage(w, r, svc, patientID, limit, skip)
	}
}

func writeMealPage(w http.ResponseWriter, r *http.Request, svc *Service, patientID string, limit, skip int) {
	items, total, err := svc.History(r.Context(), patientID, limit, skip)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]mealResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMealResponse(m))
	}

	writeJSON(w, http.StatusOK, listMealsResponse{
		Meals:      out,
		Pagination: paginationInfo{Total: total, Limit: limit, Skip: skip},
	})
}

func paginationParams(r *http.Request) (limit, skip int) {
	limit = 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v > 0 {
		skip = v
	}
	return limit, skip
}

func toMealResponse(m Meal) mealResponse {
	items := make([]foodItemRequest, 0, len(m.FoodItems))
	for _, it := range m.FoodItems {
		items = append(items, foodItemRequest{Name: it.Name, Amount: it.Amount, Unit: it.Unit})
	}
	acts := make([]activityResponse, 0, len(m.Activities))
	for _, a := range m.Activities {
		acts = append(acts, activityResponse{Level: a.Level, DurationHours: a.DurationHours})
	}

	return mealResponse{
		ID:         m.ID,
		MealType:   m.MealType,
		FoodItems:  items,
		Activities: acts,
		Nutrition: nutritionResponse{
			Calories:         m.Nutrition.Calories,
			Carbs:            m.Nutrition.Carbs,
			Protein:          m.Nutrition.Protein,
			Fat:              m.Nutrition.Fat,
			AbsorptionFactor: m.Nutrition.AbsorptionFactor,
		},
		BloodSugar:       m.BloodSugar,
		IntendedInsulin:  m.IntendedInsulin,
		SuggestedInsulin: m.SuggestedInsulin,
		InsulinBreakdown: m.Breakdown,
		Notes:            m.Notes,
		Timestamp:        m.Timestamp,
	}
}

type foodSearchResult struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Carbs          float64 `json:"carbs"`
	Protein        float64 `json:"protein"`
	Fat            float64 `json:"fat"`
	AbsorptionType string  `json:"absorption_type"`
	ServingAmount  float64 `json:"serving_amount"`
	ServingUnit    string  `json:"serving_unit"`
	Description    string  `json:"description,omitempty"`
}

func searchFoodHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		if query == "" {
			http.Error(w, "q is required", http.StatusBadRequest)
			return
		}

		results, err := svc.SearchFood(r.Context(), query, category)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]foodSearchResult, 0, len(results))
		for _, res := range results {
			out = append(out, foodSearchResult{
				Name:           res.Name,
				Category:       res.Details.Category,
				Carbs:          res.Details.Carbs,
				Protein:        res.Details.Protein,
				Fat:            res.Details.Fat,
				AbsorptionType: res.Details.AbsorptionType,
				ServingAmount:  res.Details.ServingAmount,
				ServingUnit:    res.Details.ServingUnit,
				Description:    res.Details.Description,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo:
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
