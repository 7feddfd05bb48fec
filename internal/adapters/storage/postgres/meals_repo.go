package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"diabetes-care-backend/internal/domain/meals"
)

type MealsRepo struct {
	db *sql.DB
}

func NewMealsRepo(db *sql.DB) *MealsRepo {
	return &MealsRepo{db: db}
}

// Las partes estructuradas (items, actividades, nutrición, desglose) van en
// columnas jsonb: se leen siempre completas y el esquema del desglose puede
// crecer sin migración.
func (r *MealsRepo) Create(ctx context.Context, m meals.Meal) error {
	foodItems, err := json.Marshal(m.FoodItems)
	if err != nil {
		return err
	}
	activities, err := json.Marshal(m.Activities)
	if err != nil {
		return err
	}
	nutrition, err := json.Marshal(m.Nutrition)
	if err != nil {
		return err
	}
	breakdown, err := json.Marshal(m.Breakdown)
	if err != nil {
		return err
	}
	conditions, err := json.Marshal(m.ActiveConditions)
	if err != nil {
		return err
	}
	medications, err := json.Marshal(m.ActiveMedications)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meals (
			id, patient_id,
			meal_type, food_items, activities,
			nutrition,
			blood_sugar, intended_insulin,
			suggested_insulin, breakdown,
			active_conditions, active_medications,
			notes, ts
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		m.ID,
		m.PatientID,
		m.MealType,
		foodItems,
		activities,
		nutrition,
		m.BloodSugar,
		m.IntendedInsulin,
		m.SuggestedInsulin,
		breakdown,
		conditions,
		medications,
		m.Notes,
		m.Timestamp,
	)
	return err
}

const mealColumns = `
	id, patient_id,
	meal_type, food_items, activities,
	nutrition,
	blood_sugar, intended_insulin,
	suggested_insulin, breakdown,
	active_conditions, active_medications,
	notes, ts
`

func (r *MealsRepo) GetByID(ctx context.Context, id string) (meals.Meal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return meals.Meal{}, meals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+mealColumns+`
		FROM meals
		WHERE id = $1
	`, id)

	m, err := scanMeal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return meals.Meal{}, meals.ErrNotFound
		}
		return meals.Meal{}, err
	}
	return m, nil
}

func (r *MealsRepo) ListByPatient(ctx context.Context, patientID string, limit, skip int) ([]meals.Meal, error) {
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mealColumns+`
		FROM meals
		WHERE patient_id = $1
		ORDER BY ts DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]meals.Meal, 0)
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MealsRepo) CountByPatient(ctx context.Context, patientID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM meals WHERE patient_id = $1
	`, patientID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (meals.Meal, error) {
	var m meals.Meal
	var foodItems, activities, nutrition, breakdown, conditions, medications []byte

	if err := row.Scan(
		&m.ID,
		&m.PatientID,
		&m.MealType,
		&foodItems,
		&activities,
		&nutrition,
		&m.BloodSugar,
		&m.IntendedInsulin,
		&m.SuggestedInsulin,
		&breakdown,
		&conditions,
		&medications,
		&m.Notes,
		&m.Timestamp,
	); err != nil {
		return meals.Meal{}, err
	}

	if err := json.Unmarshal(foodItems, &m.FoodItems); err != nil {
		return meals.Meal{}, err
	}
	if err := json.Unmarshal(activities, &m.Activities); err != nil {
		return meals.Meal{}, err
	}
	if err := json.Unmarshal(nutrition, &m.Nutrition); err != nil {
		return meals.Meal{}, err
	}
	if err := json.Unmarshal(breakdown, &m.Breakdown); err != nil {
		return meals.Meal{}, err
	}
	if err := json.Unmarshal(conditions, &m.ActiveConditions); err != nil {
		return meals.Meal{}, err
	}
	if err := json.Unmarshal(medications, &m.ActiveMedications); err != nil {
		return meals.Meal{}, err
	}

	return m, nil
}
