package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

const (
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04"
	defaultTime = "09:00"
	maxRoomLen  = 32
)

// Caller is the authenticated user acting on appointments.
type Caller struct {
	Username string
	Roles    []string
}

func (c Caller) isStaff() bool {
	return auth.HasRole(c.Roles, auth.RoleAssistant, auth.RoleNurse)
}

func (c Caller) is(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "appointment").Logger(),
		now:    time.Now,
	}
}

func invalid(field, reason string) error {
	return &apperr.FieldValidationError{Field: field, Reason: reason}
}

// Schedule books a patient with a doctor. Patients may only book for
// themselves; an omitted patient_username means the caller.
func (s *Service) Schedule(ctx context.Context, req *ScheduleRequest, caller Caller) (*Appointment, error) {
	if req.PatientUsername == "" && caller.is(auth.RolePatient) {
		req.PatientUsername = caller.Username
	}
	if strings.TrimSpace(req.PatientUsername) == "" {
		return nil, invalid("patient_username", "is required")
	}
	if strings.TrimSpace(req.DoctorUsername) == "" {
		return nil, invalid("doctor_username", "is required")
	}
	if req.Date == "" {
		return nil, invalid("date", "is required")
	}
	clock := req.Time
	if clock == "" {
		clock = defaultTime
	}
	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be a date in YYYY-MM-DD format")
	}
	hm, err := time.Parse(timeLayout, clock)
	if err != nil {
		return nil, invalid("time", "must be a time in HH:MM format")
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.UTC)
	if at.Before(s.now()) {
		return nil, invalid("date", "must not be in the past")
	}
	if len(req.Room) > maxRoomLen {
		return nil, invalid("room", "is too long")
	}

	if !caller.isStaff() && !strings.EqualFold(req.PatientUsername, caller.Username) {
		return nil, &apperr.ForbiddenError{Message: "patients may only schedule their own appointments"}
	}

	patient, err := s.repo.LookupRole(ctx, req.PatientUsername, auth.RolePatient)
	if err != nil {
		return nil, err
	}
	if patient == "" {
		return nil, &apperr.ReferenceNotFoundError{Ref: "patient", ID: req.PatientUsername}
	}
	doctor, err := s.repo.LookupRole(ctx, req.DoctorUsername, auth.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if doctor == "" {
		return nil, &apperr.ReferenceNotFoundError{Ref: "doctor", ID: req.DoctorUsername}
	}

	a := &Appointment{
		PatientUsername: patient,
		DoctorUsername:  doctor,
		ScheduledAt:     at,
		Status:          StatusScheduled,
	}
	if caller.Username != "" {
		by := caller.Username
		a.ScheduledBy = &by
	}
	if room := strings.TrimSpace(req.Room); room != "" {
		a.Room = &room
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("patient", patient).
		Str("doctor", doctor).
		Time("scheduled_at", at).
		Msg("appointment scheduled")
	return a, nil
}

// Get returns an appointment visible to caller. Staff see every appointment,
// patients and doctors only their own.
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller Caller) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || !canView(a, caller) {
		// Hidden appointments look missing.
		return nil, &apperr.NotFoundError{Resource: "appointment", ID: id.String()}
	}
	return a, nil
}

func canView(a *Appointment, caller Caller) bool {
	if caller.isStaff() {
		return true
	}
	return strings.EqualFold(a.PatientUsername, caller.Username) ||
		strings.EqualFold(a.DoctorUsername, caller.Username)
}

// List returns appointments matching f. Non-staff callers are confined to
// their own appointments whatever the filter says.
func (s *Service) List(ctx context.Context, f Filter, caller Caller, limit, offset int) ([]*Appointment, int, error) {
	if !caller.isStaff() {
		switch {
		case caller.is(auth.RoleDoctor):
			f.Doctor = caller.Username
		default:
			f.Patient = caller.Username
		}
	}
	return s.repo.List(ctx, f, limit, offset)
}
