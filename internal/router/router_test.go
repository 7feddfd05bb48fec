package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"diabetes-care-backend/internal/domain/careteam"
	"diabetes-care-backend/internal/router"
)

func TestHTTP_EndToEnd_MealAndCareTeam(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	patientID := "patient-1"
	doctorID := "doctor-1"

	// 1) Paciente registra una comida y recibe la dosis sugerida
	{
		st, body := doReq(t, ts.URL, "POST", "/api/meal", patientID, map[string]any{
			"mealType": "lunch",
			"foodItems": []map[string]any{
				{"name": "rice", "amount": 1, "unit": "bowl"},
			},
			"bloodSugar": 180,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 submit meal, got %d body=%s", st, string(body))
		}

		var resp struct {
			Insulin struct {
				Total     float64            `json:"total"`
				Breakdown map[string]float64 `json:"breakdown"`
			} `json:"insulinCalculation"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal meal response: %v body=%s", err, string(body))
		}
		if resp.Insulin.Total <= 0 {
			t.Fatalf("expected positive suggested dose, got %v body=%s", resp.Insulin.Total, string(body))
		}
		if _, ok := resp.Insulin.Breakdown["carb_insulin"]; !ok {
			t.Fatalf("breakdown missing carb_insulin: %s", string(body))
		}
	}

	// 2) Paciente ve su historial
	{
		st, body := doReq(t, ts.URL, "GET", "/api/meals", patientID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list meals, got %d body=%s", st, string(body))
		}
	}

	// 3) Médico NO puede ver el historial todavía
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/meals", doctorID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}

	// 4) Paciente invita al médico
	grantID := inviteGrant(t, ts.URL, patientID, doctorID, []string{
		string(careteam.ScopeMealsRead),
		string(careteam.ScopeBloodSugarRead),
	})

	// 5) Invitación pendiente no alcanza
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/meals", doctorID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 with pending invite, got %d", st)
		}
	}

	// 6) Médico acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/api/care-team/grants/"+grantID+"/accept", doctorID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept grant, got %d body=%s", st, string(body))
		}
	}

	// 7) Médico ya ve comidas y glucemias
	{
		st, body := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/meals", doctorID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 doctor meals, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/blood-sugar", doctorID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 doctor blood sugar, got %d body=%s", st, string(body))
		}
	}

	// 8) Pero no actividades: ese scope no fue otorgado
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/activity-history", doctorID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 activities without scope, got %d", st)
		}
	}

	// 9) Paciente revoca y el médico pierde acceso inmediatamente
	{
		st, body := doReq(t, ts.URL, "POST", "/api/care-team/grants/"+grantID+"/revoke", patientID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke grant, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/doctor/patients/"+patientID+"/meals", doctorID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after revoke, got %d", st)
		}
	}
}

func TestHTTP_MealRejectsUnsupportedUnit(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/api/meal", "patient-1", map[string]any{
		"mealType": "lunch",
		"foodItems": []map[string]any{
			{"name": "rice", "amount": 1, "unit": "bucket"},
		},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported unit, got %d", st)
	}
}

func TestHTTP_BloodSugarFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	patientID := "patient-bs"

	st, body := doReq(t, ts.URL, "POST", "/api/blood-sugar", patientID, map[string]any{
		"bloodSugar":          150,
		"bloodSugarTimestamp": time.Now().UTC().Format(time.RFC3339),
		"notes":               "post lunch",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 add reading, got %d body=%s", st, string(body))
	}

	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Status != "high" {
		t.Fatalf("expected status high for 150 vs target 100, got %q", resp.Status)
	}

	st, body = doReq(t, ts.URL, "GET", "/api/blood-sugar?hours=24", patientID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
	}

	var readings []struct {
		BloodSugar float64 `json:"bloodSugar"`
	}
	_ = json.Unmarshal(body, &readings)
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d body=%s", len(readings), string(body))
	}
}

func TestHTTP_CareTeam_RejectsUnknownScope(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/api/care-team/invites", "patient-1", map[string]any{
		"doctorUserId": "doctor-1",
		"scopes":       []string{"meals:read", "meals:unknown"},
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", st)
	}
}

func inviteGrant(t *testing.T, baseURL, patientID, doctorID string, scopes []string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/care-team/invites", patientID, map[string]any{
		"doctorUserId": doctorID,
		"scopes":       scopes,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 invite grant, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("invite grant: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
