package postgres

import (
	"context"
	"database/sql"
	"time"

	"diabetes-care-backend/internal/domain/bloodsugar"
)

type BloodSugarRepo struct {
	db *sql.DB
}

func NewBloodSugarRepo(db *sql.DB) *BloodSugarRepo {
	return &BloodSugarRepo{db: db}
}

func (r *BloodSugarRepo) Create(ctx context.Context, rd bloodsugar.Reading) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blood_sugar_readings (
			id, patient_id,
			value_mgdl, status, target,
			taken_at, recorded_at,
			notes, source
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rd.ID,
		rd.PatientID,
		rd.ValueMgdl,
		string(rd.Status),
		rd.Target,
		rd.TakenAt,
		rd.RecordedAt,
		rd.Notes,
		rd.Source,
	)
	return err
}

func (r *BloodSugarRepo) ListByPatient(ctx context.Context, patientID string, from time.Time) ([]bloodsugar.Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id,
			value_mgdl, status, target,
			taken_at, recorded_at,
			notes, source
		FROM blood_sugar_readings
		WHERE patient_id = $1 AND taken_at >= $2
		ORDER BY taken_at DESC
	`, patientID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bloodsugar.Reading, 0)
	for rows.Next() {
		var rd bloodsugar.Reading
		var status string
		if err := rows.Scan(
			&rd.ID,
			&rd.PatientID,
			&rd.ValueMgdl,
			&status,
			&rd.Target,
			&rd.TakenAt,
			&rd.RecordedAt,
			&rd.Notes,
			&rd.Source,
		); err != nil {
			return nil, err
		}
		rd.Status = bloodsugar.Status(status)
		out = append(out, rd)
	}
	return out, rows.Err()
}
