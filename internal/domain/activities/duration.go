package activities

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Una duración ilegible no tumba el registro: se asume 1 hora.
const DefaultDurationHours = 1.0

// ParseDuration acepta "HH:MM" o un decimal de horas ("1.5").
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		hours, err := strconv.Atoi(parts[0])
		if err != nil || hours < 0 {
			return 0, false
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, false
		}
		return float64(hours) + float64(minutes)/60, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// FormatDuration normaliza horas decimales a "HH:MM".
func FormatDuration(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FlexDuration deserializa duraciones que llegan como número de horas
// o como string "HH:MM". Si no se puede interpretar, cae en el default
// en vez de rechazar el request.
type FlexDuration float64

func (d *FlexDuration) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		if f < 0 {
			f = 0
		}
		*d = FlexDuration(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = FlexDuration(DefaultDurationHours)
		return nil
	}

	h, ok := ParseDuration(s)
	if !ok {
		*d = FlexDuration(DefaultDurationHours)
		return nil
	}
	*d = FlexDuration(h)
	return nil
}

func (d FlexDuration) Hours() float64 { return float64(d) }
