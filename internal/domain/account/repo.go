package account

import "context"

type Repository interface {
	// GetByUsername matches case-insensitively and returns nil, nil when no
	// person exists.
	GetByUsername(ctx context.Context, username string) (*Account, error)
}
