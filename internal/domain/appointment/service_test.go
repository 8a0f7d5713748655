package appointment

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	appts    map[uuid.UUID]*Appointment
	patients []string
	doctors  []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appts:    make(map[uuid.UUID]*Appointment),
		patients: []string{"pat01", "pat02"},
		doctors:  []string{"doc01"},
	}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	for _, existing := range m.appts {
		if existing.DoctorUsername == a.DoctorUsername && existing.ScheduledAt.Equal(a.ScheduledAt) &&
			existing.Status != StatusCancelled {
			return &apperr.DuplicateFieldError{Field: "scheduled_at"}
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	return m.appts[id], nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if f.Patient != "" && !strings.EqualFold(a.PatientUsername, f.Patient) {
			continue
		}
		if f.Doctor != "" && !strings.EqualFold(a.DoctorUsername, f.Doctor) {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockRepo) LookupRole(_ context.Context, username, role string) (string, error) {
	names := m.patients
	if role == auth.RoleDoctor {
		names = m.doctors
	}
	for _, n := range names {
		if strings.EqualFold(n, username) {
			return n, nil
		}
	}
	return "", nil
}

var (
	patient01 = Caller{Username: "pat01", Roles: []string{auth.RolePatient}}
	assistant = Caller{Username: "as01", Roles: []string{auth.RoleAssistant}}
	doctor01  = Caller{Username: "doc01", Roles: []string{auth.RoleDoctor}}
)

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestSchedule_Success(t *testing.T) {
	svc, repo := newTestService()

	a, err := svc.Schedule(context.Background(), &ScheduleRequest{
		PatientUsername: "PAT01", DoctorUsername: "doc01", Date: "2025-03-10", Time: "14:30", Room: " B12 ",
	}, assistant)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, "pat01", a.PatientUsername, "stored spelling should be used")
	assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), a.ScheduledAt)
	require.NotNil(t, a.Room)
	assert.Equal(t, "B12", *a.Room)
	require.NotNil(t, a.ScheduledBy)
	assert.Equal(t, "as01", *a.ScheduledBy)
	assert.Len(t, repo.appts, 1)
}

func TestSchedule_PatientDefaultsToSelf(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Schedule(context.Background(), &ScheduleRequest{DoctorUsername: "doc01", Date: "2025-03-10"}, patient01)
	require.NoError(t, err)
	assert.Equal(t, "pat01", a.PatientUsername)
	assert.Equal(t, 9, a.ScheduledAt.Hour())
}

func TestSchedule_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   ScheduleRequest
		field string
	}{
		{"missing doctor", ScheduleRequest{PatientUsername: "pat01", Date: "2025-03-10"}, "doctor_username"},
		{"missing date", ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01"}, "date"},
		{"bad date", ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "10/03/2025"}, "date"},
		{"bad time", ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2025-03-10", Time: "25:00"}, "time"},
		{"past date", ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2024-03-10"}, "date"},
		{"long room", ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2025-03-10", Room: strings.Repeat("r", 40)}, "room"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Schedule(context.Background(), &tt.req, assistant)
			var fv *apperr.FieldValidationError
			require.ErrorAs(t, err, &fv)
			assert.Equal(t, tt.field, fv.Field)
		})
	}

	svc, _ := newTestService()
	_, err := svc.Schedule(context.Background(), &ScheduleRequest{DoctorUsername: "doc01", Date: "2025-03-10"}, assistant)
	var fv *apperr.FieldValidationError
	require.ErrorAs(t, err, &fv)
	assert.Equal(t, "patient_username", fv.Field)
}

func TestSchedule_UnknownPeople(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Schedule(context.Background(), &ScheduleRequest{
		PatientUsername: "ghost", DoctorUsername: "doc01", Date: "2025-03-10",
	}, assistant)
	var ref *apperr.ReferenceNotFoundError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "patient", ref.Ref)

	_, err = svc.Schedule(context.Background(), &ScheduleRequest{
		PatientUsername: "pat01", DoctorUsername: "pat02", Date: "2025-03-10",
	}, assistant)
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "doctor", ref.Ref)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestSchedule_PatientCannotBookForOthers(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Schedule(context.Background(), &ScheduleRequest{
		PatientUsername: "pat02", DoctorUsername: "doc01", Date: "2025-03-10",
	}, patient01)
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))
	assert.Empty(t, repo.appts)
}

func TestSchedule_DoctorSlotTaken(t *testing.T) {
	svc, _ := newTestService()
	req := ScheduleRequest{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2025-03-10", Time: "10:00"}

	_, err := svc.Schedule(context.Background(), &req, assistant)
	require.NoError(t, err)

	req.PatientUsername = "pat02"
	_, err = svc.Schedule(context.Background(), &req, assistant)
	var dup *apperr.DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "scheduled_at", dup.Field)
}

func TestGet_Visibility(t *testing.T) {
	svc, _ := newTestService()
	a, err := svc.Schedule(context.Background(), &ScheduleRequest{
		PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2025-03-10",
	}, assistant)
	require.NoError(t, err)

	for _, c := range []Caller{patient01, doctor01, assistant} {
		_, err := svc.Get(context.Background(), a.ID, c)
		assert.NoError(t, err, "caller %s should see the appointment", c.Username)
	}

	other := Caller{Username: "pat02", Roles: []string{auth.RolePatient}}
	_, err = svc.Get(context.Background(), a.ID, other)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))

	_, err = svc.Get(context.Background(), uuid.New(), assistant)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestList_ConfinesNonStaff(t *testing.T) {
	svc, _ := newTestService()
	bookings := []ScheduleRequest{
		{PatientUsername: "pat01", DoctorUsername: "doc01", Date: "2025-03-10", Time: "09:00"},
		{PatientUsername: "pat02", DoctorUsername: "doc01", Date: "2025-03-10", Time: "10:00"},
	}
	for i := range bookings {
		_, err := svc.Schedule(context.Background(), &bookings[i], assistant)
		require.NoError(t, err)
	}

	items, total, err := svc.List(context.Background(), Filter{Patient: "pat02"}, patient01, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "pat01", items[0].PatientUsername)

	_, total, err = svc.List(context.Background(), Filter{}, doctor01, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = svc.List(context.Background(), Filter{Patient: "pat02"}, assistant, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
