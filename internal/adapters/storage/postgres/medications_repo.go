package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"diabetes-care-backend/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

// UpsertSchedule pisa el esquema vigente de (paciente, medicamento),
// conservando id y fecha de alta originales.
func (r *MedicationsRepo) UpsertSchedule(ctx context.Context, s medications.Schedule) (medications.Schedule, error) {
	dailyTimes, err := json.Marshal(s.DailyTimes)
	if err != nil {
		return medications.Schedule{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO medication_schedules (
			id, patient_id, medication,
			start_date, end_date, daily_times,
			created_at, updated_at, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (patient_id, medication) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			daily_times = EXCLUDED.daily_times,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		RETURNING id, created_at
	`,
		s.ID,
		s.PatientID,
		s.Medication,
		s.StartDate,
		s.EndDate,
		dailyTimes,
		s.CreatedAt,
		s.UpdatedAt,
		s.UpdatedBy,
	)

	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return medications.Schedule{}, err
	}
	return s, nil
}

const scheduleColumns = `
	id, patient_id, medication,
	start_date, end_date, daily_times,
	created_at, updated_at, updated_by
`

func (r *MedicationsRepo) GetActiveSchedule(ctx context.Context, patientID, medication string, at time.Time) (medications.Schedule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM medication_schedules
		WHERE patient_id = $1 AND medication = $2
		  AND start_date <= $3 AND end_date >= $3
	`, patientID, medication, at)

	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Schedule{}, medications.ErrNotFound
		}
		return medications.Schedule{}, err
	}
	return s, nil
}

func (r *MedicationsRepo) ListActiveSchedules(ctx context.Context, patientID string, at time.Time) ([]medications.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM medication_schedules
		WHERE patient_id = $1
		  AND start_date <= $2 AND end_date >= $2
		ORDER BY medication
	`, patientID, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *MedicationsRepo) CreateDose(ctx context.Context, d medications.DoseLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_doses (
			id, patient_id, medication,
			dose, is_insulin,
			taken_at, scheduled_for,
			notes, recorded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		d.ID,
		d.PatientID,
		d.Medication,
		d.Dose,
		d.IsInsulin,
		d.TakenAt,
		d.ScheduledFor,
		d.Notes,
		d.RecordedAt,
	)
	return err
}

func (r *MedicationsRepo) ListDoses(ctx context.Context, patientID string, from, to time.Time, onlyInsulin bool) ([]medications.DoseLog, error) {
	query := `
		SELECT
			id, patient_id, medication,
			dose, is_insulin,
			taken_at, scheduled_for,
			notes, recorded_at
		FROM medication_doses
		WHERE patient_id = $1 AND taken_at >= $2 AND taken_at <= $3
	`
	if onlyInsulin {
		query += " AND is_insulin"
	}
	query += " ORDER BY taken_at DESC"

	rows, err := r.db.QueryContext(ctx, query, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.DoseLog, 0)
	for rows.Next() {
		var d medications.DoseLog
		if err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.Medication,
			&d.Dose,
			&d.IsInsulin,
			&d.TakenAt,
			&d.ScheduledFor,
			&d.Notes,
			&d.RecordedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanSchedule(row rowScanner) (medications.Schedule, error) {
	var s medications.Schedule
	var dailyTimes []byte

	if err := row.Scan(
		&s.ID,
		&s.PatientID,
		&s.Medication,
		&s.StartDate,
		&s.EndDate,
		&dailyTimes,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.UpdatedBy,
	); err != nil {
		return medications.Schedule{}, err
	}

	if err := json.Unmarshal(dailyTimes, &s.DailyTimes); err != nil {
		return medications.Schedule{}, err
	}
	return s, nil
}
