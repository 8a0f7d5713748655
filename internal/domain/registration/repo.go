package registration

import (
	"context"
)

// Store is the person store. Every write of a registration happens inside a
// single InTx call.
type Store interface {
	// InTx runs fn in one transaction, committing when fn returns nil and
	// rolling back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ListSpecializations(ctx context.Context) ([]*Specialization, error)
}

// Tx is the transactional view used by the orchestrator.
type Tx interface {
	PersonLookup
	// MissingSpecializations returns the ids not present in the reference set.
	MissingSpecializations(ctx context.Context, ids []int64) ([]int64, error)
	InsertPerson(ctx context.Context, p *Person) error
	// InsertContract stores c and sets c.ID.
	InsertContract(ctx context.Context, c *EmployeeContract) error
	// InsertRole stores the role row, plus one doctor_specialization row per
	// id for doctors.
	InsertRole(ctx context.Context, r *RoleRecord) error
}
