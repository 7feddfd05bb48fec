package insulin

import (
	"diabetes-care-backend/internal/domain/units"
	"diabetes-care-backend/internal/platform/logger"
)

// Factores de Atwater (kcal por gramo). Constantes fijas, no configurables.
const (
	kcalPerGramCarb    = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// CalculateMealNutrition agrega los macros de la comida completa.
//
// Por item: porción y porción de referencia se llevan a unidades base;
// si alguna unidad no convierte o las familias (volumen/peso) no coinciden,
// el item se saltea con un warn — nunca tumba la comida entera.
// Una comida sin items válidos devuelve un resumen en cero con factor 1.0,
// que más adelante produce una dosis cero válida.
func CalculateMealNutrition(items []PortionedFood, conv units.Converter, absorptionModifiers map[string]float64, log logger.Logger) NutritionSummary {
	if log == nil {
		log = logger.Nop()
	}

	var calories, carbs, protein, fat float64
	labels := make([]string, 0, len(items))

	for _, it := range items {
		std, ok := conv.ToStandard(it.Portion.Amount, it.Portion.Unit)
		if !ok {
			log.Warn("meal item skipped: unknown portion unit", map[string]any{
				"food": it.Portion.Name,
				"unit": it.Portion.Unit,
			})
			continue
		}

		serving, ok := conv.ToStandard(it.Food.ServingSize.Amount, it.Food.ServingSize.Unit)
		if !ok || serving == 0 {
			log.Warn("meal item skipped: unusable serving size", map[string]any{
				"food": it.Portion.Name,
				"unit": it.Food.ServingSize.Unit,
			})
			continue
		}

		pf, _ := conv.Family(it.Portion.Unit)
		sf, _ := conv.Family(it.Food.ServingSize.Unit)
		if pf != sf {
			log.Warn("meal item skipped: measurement family mismatch", map[string]any{
				"food":    it.Portion.Name,
				"portion": string(pf),
				"serving": string(sf),
			})
			continue
		}

		ratio := std / serving

		itemCarbs := it.Food.Carbs * ratio
		itemProtein := it.Food.Protein * ratio
		itemFat := it.Food.Fat * ratio

		carbs += itemCarbs
		protein += itemProtein
		fat += itemFat
		calories += itemCarbs*kcalPerGramCarb + itemProtein*kcalPerGramProtein + itemFat*kcalPerGramFat

		label := it.Food.AbsorptionType
		if label == "" {
			label = "medium"
		}
		labels = append(labels, label)
	}

	absorption := 1.0
	if len(labels) > 0 {
		sum := 0.0
		for _, label := range labels {
			m, ok := absorptionModifiers[label]
			if !ok {
				m = 1.0
			}
			sum += m
		}
		absorption = sum / float64(len(labels))
	}

	return NutritionSummary{
		Calories:         round1(calories),
		Carbs:            round1(carbs),
		Protein:          round1(protein),
		Fat:              round1(fat),
		AbsorptionFactor: round2(absorption),
	}
}

// DominantAbsorptionType devuelve la etiqueta de absorción más lenta entre
// los items, para elegir la guía de timing de la dosis. "medium" si no hay.
func DominantAbsorptionType(items []PortionedFood) string {
	order := map[string]int{
		"very_slow": 0,
		"slow":      1,
		"medium":    2,
		"fast":      3,
		"very_fast": 4,
	}

	best := ""
	bestRank := len(order)
	for _, it := range items {
		label := it.Food.AbsorptionType
		if label == "" {
			label = "medium"
		}
		r, ok := order[label]
		if !ok {
			continue
		}
		if r < bestRank {
			best = label
			bestRank = r
		}
	}

	if best == "" {
		return "medium"
	}
	return best
}
