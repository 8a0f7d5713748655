package registration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type storePG struct{ pool *pgxpool.Pool }

func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{pool: pool} }

func (s *storePG) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return db.InTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &txPG{q: tx})
	})
}

func (s *storePG) ListSpecializations(ctx context.Context) ([]*Specialization, error) {
	rows, err := db.Conn(ctx, s.pool).Query(ctx, `SELECT id, name FROM specialization ORDER BY name`)
	if err != nil {
		return nil, apperr.Storage("list specializations", err)
	}
	defer rows.Close()

	var items []*Specialization
	for rows.Next() {
		var sp Specialization
		if err := rows.Scan(&sp.ID, &sp.Name); err != nil {
			return nil, apperr.Storage("scan specialization", err)
		}
		items = append(items, &sp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list specializations", err)
	}
	return items, nil
}

type txPG struct{ q db.Querier }

func (t *txPG) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := t.q.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (t *txPG) UsernameExists(ctx context.Context, username string) (bool, error) {
	return t.exists(ctx, `SELECT EXISTS (SELECT 1 FROM person WHERE LOWER(username) = LOWER($1))`, username)
}

func (t *txPG) MobileNumberExists(ctx context.Context, mobile string) (bool, error) {
	return t.exists(ctx, `SELECT EXISTS (SELECT 1 FROM person WHERE mobile_number = $1)`, mobile)
}

func (t *txPG) EmailExists(ctx context.Context, email string) (bool, error) {
	return t.exists(ctx, `SELECT EXISTS (SELECT 1 FROM person WHERE email = $1)`, email)
}

func (t *txPG) MissingSpecializations(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := t.q.Query(ctx, `
		SELECT want.id
		FROM unnest($1::bigint[]) WITH ORDINALITY AS want(id, ord)
		LEFT JOIN specialization s ON s.id = want.id
		WHERE s.id IS NULL
		ORDER BY want.ord`, ids)
	if err != nil {
		return nil, apperr.Storage("check specializations", err)
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Storage("scan specialization id", err)
		}
		missing = append(missing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("check specializations", err)
	}
	return missing, nil
}

func (t *txPG) InsertPerson(ctx context.Context, p *Person) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO person (username, password, name, mobile_number, birth_date, address, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		p.Username, p.PasswordHash, p.Name, p.MobileNumber, p.BirthDate, p.Address, p.Email,
	).Scan(&p.CreatedAt)
	return translate("insert person", err)
}

func (t *txPG) InsertContract(ctx context.Context, c *EmployeeContract) error {
	err := t.q.QueryRow(ctx, `
		INSERT INTO employee_contract (person_username, salary, start_date, duration, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.PersonUsername, c.Salary, c.StartDate, c.Duration, c.EndDate,
	).Scan(&c.ID)
	return translate("insert contract", err)
}

func (t *txPG) InsertRole(ctx context.Context, r *RoleRecord) error {
	var err error
	switch r.Role {
	case RolePatient:
		_, err = t.q.Exec(ctx, `INSERT INTO patient (person_username) VALUES ($1)`, r.Username)
	case RoleAssistant:
		_, err = t.q.Exec(ctx, `INSERT INTO assistant (person_username, contract_id) VALUES ($1, $2)`,
			r.Username, r.ContractID)
	case RoleNurse:
		_, err = t.q.Exec(ctx, `INSERT INTO nurse (person_username, contract_id, position) VALUES ($1, $2, $3)`,
			r.Username, r.ContractID, r.Position)
	case RoleDoctor:
		_, err = t.q.Exec(ctx, `INSERT INTO doctor (person_username, contract_id, license_info) VALUES ($1, $2, $3)`,
			r.Username, r.ContractID, r.LicenseInfo)
		if err == nil && len(r.SpecializationIDs) > 0 {
			_, err = t.q.Exec(ctx, `
				INSERT INTO doctor_specialization (doctor_username, specialization_id)
				SELECT $1, unnest($2::bigint[])`,
				r.Username, r.SpecializationIDs)
		}
	default:
		return fmt.Errorf("unknown role %q", r.Role)
	}
	return translate("insert "+string(r.Role), err)
}

// uniqueFields maps unique constraint names on person to request fields.
var uniqueFields = map[string]string{
	"person_pkey":               "username",
	"person_username_lower_key": "username",
	"person_mobile_number_key":  "mobile_number",
	"person_email_key":          "email",
}

// translate turns constraint violations into typed errors and wraps
// everything else as a storage failure.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := db.IsUniqueViolation(err); ok {
		if field, known := uniqueFields[constraint]; known {
			return &apperr.DuplicateFieldError{Field: field}
		}
	}
	return apperr.Storage(op, err)
}
