package units

// Family indica el sistema de medida al que pertenece una unidad.
// @Enum volume, weight
type Family string

const (
	FamilyVolume Family = "volume"
	FamilyWeight Family = "weight"
)

// Converter convierte porciones caseras ("cup", "palm", ...) a unidades base
// (ml para volumen, g para peso). Las tablas son data de configuración:
// se pueden reemplazar por paciente/deploy sin tocar código.
type Converter struct {
	volume map[string]float64 // unidad -> ml
	weight map[string]float64 // unidad -> g
}

// DefaultVolume devuelve la tabla de volumen por defecto (unidad -> ml).
func DefaultVolume() map[string]float64 {
	return map[string]float64{
		"cup":           240,
		"half_cup":      120,
		"quarter_cup":   60,
		"tablespoon":    15,
		"teaspoon":      5,
		"bowl":          400,
		"v_plate":       350,
		"v_small_plate": 175,
		"ml":            1,
	}
}

// DefaultWeight devuelve la tabla de peso por defecto (unidad -> g).
func DefaultWeight() map[string]float64 {
	return map[string]float64{
		"palm":          85,
		"handful":       30,
		"fist":          150,
		"w_plate":       300,
		"w_small_plate": 150,
		"g":             1,
		"kg":            1000,
	}
}

// NewConverter crea un Converter con tablas propias.
// Copia los maps para que el Converter quede inmutable frente al caller.
func NewConverter(volume, weight map[string]float64) Converter {
	v := make(map[string]float64, len(volume))
	for k, f := range volume {
		v[k] = f
	}
	w := make(map[string]float64, len(weight))
	for k, f := range weight {
		w[k] = f
	}
	return Converter{volume: v, weight: w}
}

// Default crea un Converter con las tablas por defecto.
func Default() Converter {
	return NewConverter(DefaultVolume(), DefaultWeight())
}

// Family devuelve la familia de la unidad, o false si no está en ninguna tabla.
func (c Converter) Family(unit string) (Family, bool) {
	if _, ok := c.volume[unit]; ok {
		return FamilyVolume, true
	}
	if _, ok := c.weight[unit]; ok {
		return FamilyWeight, true
	}
	return "", false
}

// ToStandard convierte amount a la unidad base (ml o g).
// Conversión lineal: cero da cero y los negativos pasan tal cual
// (validar no-negatividad es responsabilidad del caller).
// ok=false cuando la unidad no existe en ninguna tabla; nunca panic.
func (c Converter) ToStandard(amount float64, unit string) (float64, bool) {
	if f, ok := c.volume[unit]; ok {
		return amount * f, true
	}
	if f, ok := c.weight[unit]; ok {
		return amount * f, true
	}
	return 0, false
}

// Between convierte amount de from a to componiendo dos conversiones
// por la unidad base. Entre familias asume densidad 1 (1 g ~ 1 ml),
// igual que el resto del sistema de porciones.
func (c Converter) Between(amount float64, from, to string) (float64, bool) {
	base, ok := c.ToStandard(amount, from)
	if !ok {
		return 0, false
	}
	if f, ok := c.volume[to]; ok {
		return base / f, true
	}
	if f, ok := c.weight[to]; ok {
		return base / f, true
	}
	return 0, false
}

// Supported devuelve las unidades soportadas por familia (para clientes/UI).
func (c Converter) Supported() map[Family][]string {
	out := map[Family][]string{
		FamilyVolume: make([]string, 0, len(c.volume)),
		FamilyWeight: make([]string, 0, len(c.weight)),
	}
	for k := range c.volume {
		out[FamilyVolume] = append(out[FamilyVolume], k)
	}
	for k := range c.weight {
		out[FamilyWeight] = append(out[FamilyWeight], k)
	}
	return out
}
