package account

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const accountQuery = `
	SELECT p.username, p.password, p.name, p.mobile_number, p.birth_date, p.address, p.email,
		CASE
			WHEN d.person_username IS NOT NULL THEN 'doctor'
			WHEN n.person_username IS NOT NULL THEN 'nurse'
			WHEN a.person_username IS NOT NULL THEN 'assistant'
			WHEN pt.person_username IS NOT NULL THEN 'patient'
			ELSE ''
		END AS role,
		n.position, d.license_info, p.created_at
	FROM person p
	LEFT JOIN doctor d ON d.person_username = p.username
	LEFT JOIN nurse n ON n.person_username = p.username
	LEFT JOIN assistant a ON a.person_username = p.username
	LEFT JOIN patient pt ON pt.person_username = p.username
	WHERE LOWER(p.username) = LOWER($1)`

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := db.Conn(ctx, r.pool).QueryRow(ctx, accountQuery, username).Scan(
		&a.Username, &a.PasswordHash, &a.Name, &a.MobileNumber, &a.BirthDate, &a.Address, &a.Email,
		&a.Role, &a.Position, &a.LicenseInfo, &a.CreatedAt)
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get account", err)
	}
	return &a, nil
}
