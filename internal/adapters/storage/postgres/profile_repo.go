package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"diabetes-care-backend/internal/domain/profile"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Overrides y health state se guardan como documento jsonb por paciente:
// siempre se leen/escriben completos, nunca por campo.
func (r *ProfileRepo) GetOverrides(ctx context.Context, patientID string) (profile.Overrides, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT overrides FROM patient_overrides WHERE patient_id = $1
	`, patientID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return profile.Overrides{}, profile.ErrNotFound
		}
		return profile.Overrides{}, err
	}

	var o profile.Overrides
	if err := json.Unmarshal(raw, &o); err != nil {
		return profile.Overrides{}, err
	}
	return o, nil
}

func (r *ProfileRepo) SaveOverrides(ctx context.Context, patientID string, o profile.Overrides) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO patient_overrides (patient_id, overrides)
		VALUES ($1, $2)
		ON CONFLICT (patient_id) DO UPDATE SET overrides = EXCLUDED.overrides
	`, patientID, raw)
	return err
}

func (r *ProfileRepo) GetHealthState(ctx context.Context, patientID string) (profile.HealthState, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT state FROM patient_health_state WHERE patient_id = $1
	`, patientID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return profile.HealthState{}, profile.ErrNotFound
		}
		return profile.HealthState{}, err
	}

	var h profile.HealthState
	if err := json.Unmarshal(raw, &h); err != nil {
		return profile.HealthState{}, err
	}
	return h, nil
}

func (r *ProfileRepo) SaveHealthState(ctx context.Context, patientID string, h profile.HealthState) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO patient_health_state (patient_id, state)
		VALUES ($1, $2)
		ON CONFLICT (patient_id) DO UPDATE SET state = EXCLUDED.state
	`, patientID, raw)
	return err
}
