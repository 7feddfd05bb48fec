package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"diabetes-care-backend/internal/domain/careteam"
)

type CareTeamRepo struct {
	db *sql.DB
}

func NewCareTeamRepo(db *sql.DB) *CareTeamRepo {
	return &CareTeamRepo{db: db}
}

func (r *CareTeamRepo) Create(ctx context.Context, g careteam.Grant) error {
	scopes, err := json.Marshal(g.Scopes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO care_team_grants (
			id, patient_id, doctor_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		g.ID,
		g.PatientID,
		g.DoctorUserID,
		scopes,
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		g.RevokedAt,
	)
	return err
}

func (r *CareTeamRepo) Update(ctx context.Context, g careteam.Grant) error {
	scopes, err := json.Marshal(g.Scopes)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE care_team_grants
		SET scopes = $2, status = $3, updated_at = $4, revoked_at = $5
		WHERE id = $1
	`,
		g.ID,
		scopes,
		string(g.Status),
		g.UpdatedAt,
		g.RevokedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return careteam.ErrNotFound
	}
	return nil
}

const grantColumns = `
	id, patient_id, doctor_user_id,
	scopes, status,
	created_at, updated_at, revoked_at
`

func (r *CareTeamRepo) GetByID(ctx context.Context, id string) (careteam.Grant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM care_team_grants
		WHERE id = $1
	`, id)

	g, err := scanGrant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return careteam.Grant{}, careteam.ErrNotFound
		}
		return careteam.Grant{}, err
	}
	return g, nil
}

func (r *CareTeamRepo) ListByPatient(ctx context.Context, patientID string) ([]careteam.Grant, error) {
	return r.list(ctx, "patient_id", patientID)
}

func (r *CareTeamRepo) ListByDoctor(ctx context.Context, doctorUserID string) ([]careteam.Grant, error) {
	return r.list(ctx, "doctor_user_id", doctorUserID)
}

func (r *CareTeamRepo) list(ctx context.Context, column, value string) ([]careteam.Grant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+grantColumns+`
		FROM care_team_grants
		WHERE `+column+` = $1
		ORDER BY updated_at DESC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careteam.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// El más reciente por updated_at si hubiera data sucia con varios activos.
func (r *CareTeamRepo) GetActiveGrant(ctx context.Context, patientID, doctorUserID string) (careteam.Grant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM care_team_grants
		WHERE patient_id = $1 AND doctor_user_id = $2 AND status = 'active'
		ORDER BY updated_at DESC, created_at DESC
		LIMIT 1
	`, patientID, doctorUserID)

	g, err := scanGrant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return careteam.Grant{}, careteam.ErrNotFound
		}
		return careteam.Grant{}, err
	}
	return g, nil
}

func scanGrant(row rowScanner) (careteam.Grant, error) {
	var g careteam.Grant
	var scopes []byte
	var status string

	if err := row.Scan(
		&g.ID,
		&g.PatientID,
		&g.DoctorUserID,
		&scopes,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&g.RevokedAt,
	); err != nil {
		return careteam.Grant{}, err
	}

	if err := json.Unmarshal(scopes, &g.Scopes); err != nil {
		return careteam.Grant{}, err
	}
	g.Status = careteam.Status(status)
	return g, nil
}
