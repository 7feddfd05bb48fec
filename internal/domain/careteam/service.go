package careteam

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	PatientID    string
	DoctorUserID string
	Scopes       []Scope
}

// Invite crea (o actualiza) la invitación del paciente a su médico.
// Reinvitar al mismo médico actualiza scopes sobre el grant vigente en vez
// de acumular duplicados.
func (s *Service) Invite(ctx context.Context, in InviteInput) (Grant, error) {
	patientID := strings.TrimSpace(in.PatientID)
	doctorID := strings.TrimSpace(in.DoctorUserID)

	if patientID == "" || doctorID == "" {
		return Grant{}, ErrInvalidInput
	}
	if patientID == doctorID {
		return Grant{}, ErrInvalidInput
	}

	// Scopes vacíos => default de solo lectura del historial.
	var scopes []Scope
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeMealsRead, ScopeBloodSugarRead, ScopeActivitiesRead}
	} else {
		seen := map[Scope]struct{}{}
		for _, sc := range in.Scopes {
			if !validScope(sc) {
				return Grant{}, ErrInvalidInput
			}
			if _, ok := seen[sc]; ok {
				continue
			}
			seen[sc] = struct{}{}
			scopes = append(scopes, sc)
		}
	}

	now := s.now()

	existing, err := s.latestNonRevoked(ctx, patientID, doctorID)
	if err == nil && existing.ID != "" {
		existing.Scopes = scopes
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Grant{}, err
		}
		return existing, nil
	}

	g := Grant{
		ID:           uuid.NewString(),
		PatientID:    patientID,
		DoctorUserID: doctorID,
		Scopes:       scopes,
		Status:       StatusInvited,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Accept pasa el grant a active. Idempotente si ya estaba activo.
func (s *Service) Accept(ctx context.Context, grantID, doctorUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	doctorUserID = strings.TrimSpace(doctorUserID)
	if grantID == "" || doctorUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	if g.DoctorUserID != doctorUserID {
		return Grant{}, ErrForbidden
	}

	switch g.Status {
	case StatusActive:
		return g, nil
	case StatusRevoked:
		return Grant{}, ErrBadState
	}

	g.Status = StatusActive
	g.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Revoke lo puede hacer solo el paciente dueño de los datos.
func (s *Service) Revoke(ctx context.Context, grantID, patientID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	patientID = strings.TrimSpace(patientID)
	if grantID == "" || patientID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	if g.PatientID != patientID {
		return Grant{}, ErrForbidden
	}

	if g.Status == StatusRevoked {
		return g, nil
	}

	now := s.now()
	g.Status = StatusRevoked
	g.UpdatedAt = now
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) GetActiveGrant(ctx context.Context, patientID, doctorUserID string) (Grant, error) {
	return s.repo.GetActiveGrant(ctx, patientID, doctorUserID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Grant, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorUserID string) ([]Grant, error) {
	return s.repo.ListByDoctor(ctx, doctorUserID)
}

// Authorize resuelve el acceso a datos de un paciente: el paciente entra a
// lo suyo sin grant; cualquier otro usuario necesita grant activo con scope.
func (s *Service) Authorize(ctx context.Context, patientID, userID string, scope Scope) error {
	if patientID == userID {
		return nil
	}
	g, err := s.repo.GetActiveGrant(ctx, patientID, userID)
	if err != nil || !HasScope(g, scope) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) latestNonRevoked(ctx context.Context, patientID, doctorID string) (Grant, error) {
	all, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return Grant{}, err
	}

	var winner Grant
	for _, g := range all {
		if g.DoctorUserID != doctorID || g.Status == StatusRevoked {
			continue
		}
		if winner.ID == "" || g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
		}
	}
	if winner.ID == "" {
		return Grant{}, ErrNotFound
	}
	return winner, nil
}
