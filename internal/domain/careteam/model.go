package careteam

import "time"

// Scope define qué puede ver/tocar un médico sobre un paciente.
type Scope string

const (
	ScopeMealsRead      Scope = "meals:read"
	ScopeBloodSugarRead Scope = "bloodsugar:read"
	ScopeActivitiesRead Scope = "activities:read"
	ScopeInsulinRead    Scope = "insulin:read"
	ScopeConstantsWrite Scope = "constants:write"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant es el permiso que un paciente otorga a un médico.
type Grant struct {
	ID string

	PatientID    string // quien comparte sus datos
	DoctorUserID string // el médico autorizado

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

func validScope(s Scope) bool {
	switch s {
	case ScopeMealsRead, ScopeBloodSugarRead, ScopeActivitiesRead, ScopeInsulinRead, ScopeConstantsWrite:
		return true
	default:
		return false
	}
}

// HasScope reporta si el grant incluye el scope pedido.
func HasScope(g Grant, s Scope) bool {
	for _, sc := range g.Scopes {
		if sc == s {
			return true
		}
	}
	return false
}
