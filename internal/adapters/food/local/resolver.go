package local

import (
	"context"
	"sort"
	"strings"

	"diabetes-care-backend/internal/ports/food"
)

// Resolver es la base de alimentos embebida. Sirve como fallback cuando no
// hay API externa configurada y como fixture estable para tests.
type Resolver struct {
	foods map[string]food.Details
}

func NewResolver() *Resolver {
	return &Resolver{foods: catalog()}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (food.Details, error) {
	d, ok := r.foods[normalize(name)]
	if !ok {
		return food.Details{}, food.ErrNotFound
	}
	return d, nil
}

// Search matchea por substring del nombre, con filtro opcional de categoría.
// Resultados ordenados por nombre para salida estable.
func (r *Resolver) Search(ctx context.Context, query, category string) ([]food.Result, error) {
	query = normalize(query)
	category = strings.TrimSpace(category)

	var out []food.Result
	for name, d := range r.foods {
		if query != "" && !strings.Contains(name, query) {
			continue
		}
		if category != "" && d.Category != category {
			continue
		}
		out = append(out, food.Result{Name: name, Details: d})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_")))
}

// catalog es el catálogo base. Los macros son por porción de referencia
// (ServingAmount/ServingUnit); el peso estándar lo resuelve el conversor.
func catalog() map[string]food.Details {
	return map[string]food.Details{
		"rice": {
			Carbs: 44.0, Protein: 5.0, Fat: 0.4,
			AbsorptionType: "fast",
			ServingAmount:  1, ServingUnit: "bowl",
			Category:    "basic",
			Description: "Cooked white rice",
		},
		"white_bread": {
			Carbs: 26.0, Protein: 4.0, Fat: 2.0,
			AbsorptionType: "fast",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "starch",
			Description: "White bread slices",
		},
		"potato": {
			Carbs: 17.0, Protein: 2.0, Fat: 0.1,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "cup",
			Category:    "starchy_vegetables",
			Description: "Medium white potato",
		},
		"dal": {
			Carbs: 45.0, Protein: 27.0, Fat: 2.4,
			AbsorptionType: "slow",
			ServingAmount:  1, ServingUnit: "bowl",
			Category:    "pulses",
			Description: "Cooked yellow split lentils",
		},
		"apple": {
			Carbs: 21.0, Protein: 0.5, Fat: 0.3,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "cup",
			Category:    "fruits",
			Description: "Medium apple with skin",
		},
		"paneer": {
			Carbs: 3.0, Protein: 14.0, Fat: 22.0,
			AbsorptionType: "slow",
			ServingAmount:  1, ServingUnit: "cup",
			Category:    "dairy",
			Description: "Indian cottage cheese",
		},
		"sugar": {
			Carbs: 25.2, Protein: 0, Fat: 0,
			AbsorptionType: "very_fast",
			ServingAmount:  2, ServingUnit: "tablespoon",
			Category:    "sweets",
			Description: "White granulated sugar",
		},
		"veg_pizza": {
			Carbs: 70.0, Protein: 16.0, Fat: 20.0,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "snacks",
			Description: "6-inch vegetarian pizza",
		},
		"pani_puri": {
			Carbs: 24.0, Protein: 3.0, Fat: 8.0,
			AbsorptionType: "fast",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "common_snacks",
			Description: "Indian street food snack with potato filling",
		},
		"non_veg_burger": {
			Carbs: 31.0, Protein: 29.0, Fat: 17.0,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "high_protein",
			Description: "Beef burger with bun and vegetables",
		},
		"french_fries": {
			Carbs: 41.0, Protein: 3.4, Fat: 15.0,
			AbsorptionType: "fast",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "high_fat",
			Description: "Medium portion",
		},
		"chole_bhature": {
			Carbs: 65.0, Protein: 15.0, Fat: 22.0,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "indian",
			Description: "Spicy chickpea curry with fried bread",
		},
		"fried_rice": {
			Carbs: 45.0, Protein: 6.0, Fat: 12.0,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "bowl",
			Category:    "chinese",
			Description: "Stir-fried rice with vegetables",
		},
		"lasagna": {
			Carbs: 35.0, Protein: 18.0, Fat: 14.0,
			AbsorptionType: "medium",
			ServingAmount:  1, ServingUnit: "v_plate",
			Category:    "italian",
			Description: "Layered pasta with meat sauce and cheese",
		},
	}
}
