package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetByID returns nil, nil when the appointment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// LookupRole matches username case-insensitively against the role table
	// ("patient" or "doctor") and returns the stored spelling, or "" when the
	// person does not hold that role.
	LookupRole(ctx context.Context, username, role string) (string, error)
}
