package registration

import (
	"context"

	"github.com/hms/hms/internal/platform/apperr"
)

// PersonLookup answers existence questions about the person relation.
// UsernameExists must compare case-insensitively.
type PersonLookup interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	MobileNumberExists(ctx context.Context, mobile string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// UniquenessChecker reports the first field already taken, in the order
// username, mobile_number, email. The unique indexes on person remain the
// authoritative guard; this only produces the friendlier error early.
type UniquenessChecker struct {
	lookup PersonLookup
}

func NewUniquenessChecker(lookup PersonLookup) *UniquenessChecker {
	return &UniquenessChecker{lookup: lookup}
}

func (u *UniquenessChecker) Check(ctx context.Context, username, mobile, email string) error {
	checks := []struct {
		field  string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{"username", username, u.lookup.UsernameExists},
		{"mobile_number", mobile, u.lookup.MobileNumberExists},
		{"email", email, u.lookup.EmailExists},
	}
	for _, c := range checks {
		taken, err := c.exists(ctx, c.value)
		if err != nil {
			return apperr.Storage("check "+c.field, err)
		}
		if taken {
			return &apperr.DuplicateFieldError{Field: c.field}
		}
	}
	return nil
}
