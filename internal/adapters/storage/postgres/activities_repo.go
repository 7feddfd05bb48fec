package postgres

import (
	"context"
	"database/sql"

	"diabetes-care-backend/internal/domain/activities"
)

type ActivitiesRepo struct {
	db *sql.DB
}

func NewActivitiesRepo(db *sql.DB) *ActivitiesRepo {
	return &ActivitiesRepo{db: db}
}

func (r *ActivitiesRepo) Create(ctx context.Context, rec activities.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_records (
			id, patient_id,
			type, level, duration,
			expected_at, completed_at,
			recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		rec.PatientID,
		string(rec.Type),
		rec.Level,
		rec.Duration,
		rec.ExpectedAt,
		rec.CompletedAt,
		rec.RecordedAt,
	)
	return err
}

func (r *ActivitiesRepo) ListByPatient(ctx context.Context, patientID string) ([]activities.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id,
			type, level, duration,
			expected_at, completed_at,
			recorded_at
		FROM activity_records
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activities.Record, 0)
	for rows.Next() {
		var rec activities.Record
		var typ string
		if err := rows.Scan(
			&rec.ID,
			&rec.PatientID,
			&typ,
			&rec.Level,
			&rec.Duration,
			&rec.ExpectedAt,
			&rec.CompletedAt,
			&rec.RecordedAt,
		); err != nil {
			return nil, err
		}
		rec.Type = activities.Type(typ)
		out = append(out, rec)
	}
	return out, rows.Err()
}
