package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientUsername string    `db:"patient_username" json:"patient_username"`
	DoctorUsername  string    `db:"doctor_username" json:"doctor_username"`
	ScheduledBy     *string   `db:"scheduled_by" json:"scheduled_by,omitempty"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	Room            *string   `db:"room" json:"room,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type ScheduleRequest struct {
	PatientUsername string `json:"patient_username"`
	DoctorUsername  string `json:"doctor_username"`
	Date            string `json:"date"`
	Time            string `json:"time,omitempty"`
	Room            string `json:"room,omitempty"`
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	Patient string
	Doctor  string
}
