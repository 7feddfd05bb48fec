package insulin

import (
	"testing"

	"diabetes-care-backend/internal/domain/units"
	"diabetes-care-backend/internal/platform/logger"
)

func testAbsorptionModifiers() map[string]float64 {
	return map[string]float64{
		"very_slow": 0.6,
		"slow":      0.8,
		"medium":    1.0,
		"fast":      1.2,
		"very_fast": 1.4,
	}
}

func TestCalculateMealNutrition_SingleServing(t *testing.T) {
	items := []PortionedFood{
		{
			Portion: FoodPortion{Name: "rice", Amount: 1, Unit: "bowl"},
			Food: ResolvedFood{
				Carbs: 44, Protein: 5, Fat: 0.4,
				AbsorptionType: "medium",
				ServingSize:    ServingSize{Amount: 1, Unit: "bowl"},
			},
		},
	}

	n := CalculateMealNutrition(items, units.Default(), testAbsorptionModifiers(), logger.Nop())

	if n.Carbs != 44 || n.Protein != 5 || n.Fat != 0.4 {
		t.Fatalf("macros 1x porción: got %+v", n)
	}
	// 44*4 + 5*4 + 0.4*9 = 199.6
	if n.Calories != 199.6 {
		t.Fatalf("calorías Atwater: esperaba 199.6, got %v", n.Calories)
	}
	if n.AbsorptionFactor != 1.0 {
		t.Fatalf("absorción medium: esperaba 1.0, got %v", n.AbsorptionFactor)
	}
}

func TestCalculateMealNutrition_HalfPortionByWeight(t *testing.T) {
	items := []PortionedFood{
		{
			Portion: FoodPortion{Name: "chicken", Amount: 100, Unit: "g"},
			Food: ResolvedFood{
				Carbs: 0, Protein: 40, Fat: 10,
				AbsorptionType: "slow",
				ServingSize:    ServingSize{Amount: 200, Unit: "g"},
			},
		},
	}

	n := CalculateMealNutrition(items, units.Default(), testAbsorptionModifiers(), logger.Nop())

	if n.Protein != 20 || n.Fat != 5 {
		t.Fatalf("ratio 0.5: esperaba protein=20 fat=5, got %+v", n)
	}
	if n.AbsorptionFactor != 0.8 {
		t.Fatalf("absorción slow: esperaba 0.8, got %v", n.AbsorptionFactor)
	}
}

func TestCalculateMealNutrition_SkipsFamilyMismatch(t *testing.T) {
	items := []PortionedFood{
		{
			// porción en peso, serving en volumen: se saltea
			Portion: FoodPortion{Name: "soup", Amount: 100, Unit: "g"},
			Food: ResolvedFood{
				Carbs:       30,
				ServingSize: ServingSize{Amount: 1, Unit: "cup"},
			},
		},
	}

	n := CalculateMealNutrition(items, units.Default(), testAbsorptionModifiers(), logger.Nop())

	if n.Carbs != 0 || n.Calories != 0 {
		t.Fatalf("item con familias distintas debería saltearse, got %+v", n)
	}
	if n.AbsorptionFactor != 1.0 {
		t.Fatalf("sin items válidos el factor es 1.0, got %v", n.AbsorptionFactor)
	}
}

func TestCalculateMealNutrition_SkipsUnknownUnit(t *testing.T) {
	items := []PortionedFood{
		{
			Portion: FoodPortion{Name: "bread", Amount: 2, Unit: "slice"},
			Food: ResolvedFood{
				Carbs:       26,
				ServingSize: ServingSize{Amount: 50, Unit: "g"},
			},
		},
		{
			Portion: FoodPortion{Name: "rice", Amount: 200, Unit: "g"},
			Food: ResolvedFood{
				Carbs:          44,
				AbsorptionType: "fast",
				ServingSize:    ServingSize{Amount: 200, Unit: "g"},
			},
		},
	}

	n := CalculateMealNutrition(items, units.Default(), testAbsorptionModifiers(), logger.Nop())

	if n.Carbs != 44 {
		t.Fatalf("solo el item válido debería sumar, got carbs=%v", n.Carbs)
	}
	if n.AbsorptionFactor != 1.2 {
		t.Fatalf("absorción del único item válido (fast), got %v", n.AbsorptionFactor)
	}
}

func TestCalculateMealNutrition_EmptyMeal(t *testing.T) {
	n := CalculateMealNutrition(nil, units.Default(), testAbsorptionModifiers(), logger.Nop())

	if n.Carbs != 0 || n.Protein != 0 || n.Fat != 0 || n.Calories != 0 {
		t.Fatalf("comida vacía debería dar ceros, got %+v", n)
	}
	if n.AbsorptionFactor != 1.0 {
		t.Fatalf("comida vacía: factor 1.0, got %v", n.AbsorptionFactor)
	}
}

func TestCalculateMealNutrition_AveragesAbsorption(t *testing.T) {
	items := []PortionedFood{
		{
			Portion: FoodPortion{Name: "a", Amount: 100, Unit: "g"},
			Food:    ResolvedFood{Carbs: 10, AbsorptionType: "very_fast", ServingSize: ServingSize{Amount: 100, Unit: "g"}},
		},
		{
			Portion: FoodPortion{Name: "b", Amount: 100, Unit: "g"},
			Food:    ResolvedFood{Carbs: 10, AbsorptionType: "very_slow", ServingSize: ServingSize{Amount: 100, Unit: "g"}},
		},
	}

	n := CalculateMealNutrition(items, units.Default(), testAbsorptionModifiers(), logger.Nop())

	// (1.4 + 0.6) / 2
	if n.AbsorptionFactor != 1.0 {
		t.Fatalf("promedio de absorciones: esperaba 1.0, got %v", n.AbsorptionFactor)
	}
}

func TestDominantAbsorptionType(t *testing.T) {
	items := []PortionedFood{
		{Food: ResolvedFood{AbsorptionType: "fast"}},
		{Food: ResolvedFood{AbsorptionType: "very_slow"}},
		{Food: ResolvedFood{AbsorptionType: "medium"}},
	}

	if got := DominantAbsorptionType(items); got != "very_slow" {
		t.Fatalf("domina la más lenta, got %s", got)
	}
	if got := DominantAbsorptionType(nil); got != "medium" {
		t.Fatalf("sin items: medium, got %s", got)
	}
}
