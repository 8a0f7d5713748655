package appointment

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, patient_username, doctor_username, scheduled_by, scheduled_at, room, status, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientUsername, &a.DoctorUsername, &a.ScheduledBy,
		&a.ScheduledAt, &a.Room, &a.Status, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO appointment (id, patient_username, doctor_username, scheduled_by, scheduled_at, room, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		a.ID, a.PatientUsername, a.DoctorUsername, a.ScheduledBy, a.ScheduledAt, a.Room, a.Status,
	).Scan(&a.CreatedAt)
	if err == nil {
		return nil
	}
	if constraint, ok := db.IsUniqueViolation(err); ok && constraint == "appointment_doctor_slot_key" {
		return &apperr.DuplicateFieldError{Field: "scheduled_at"}
	}
	if constraint, ok := db.IsForeignKeyViolation(err); ok {
		switch constraint {
		case "appointment_patient_username_fkey":
			return &apperr.ReferenceNotFoundError{Ref: "patient", ID: a.PatientUsername}
		case "appointment_doctor_username_fkey":
			return &apperr.ReferenceNotFoundError{Ref: "doctor", ID: a.DoctorUsername}
		}
	}
	return apperr.Storage("insert appointment", err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get appointment", err)
	}
	return a, nil
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// listQueries builds the count and page queries for f. Usernames compare
// case-insensitively, like logins.
func listQueries(f Filter, limit, offset int) (count, page sq.SelectBuilder) {
	var where sq.And
	if f.Patient != "" {
		where = append(where, sq.Expr("LOWER(patient_username) = LOWER(?)", f.Patient))
	}
	if f.Doctor != "" {
		where = append(where, sq.Expr("LOWER(doctor_username) = LOWER(?)", f.Doctor))
	}

	count = psql.Select("COUNT(*)").From("appointment")
	page = psql.Select(apptCols).From("appointment").
		OrderBy("scheduled_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if len(where) > 0 {
		count = count.Where(where)
		page = page.Where(where)
	}
	return count, page
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	countQ, pageQ := listQueries(f, limit, offset)
	q := db.Conn(ctx, r.pool)

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, apperr.Storage("build count query", err)
	}
	var total int
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Storage("count appointments", err)
	}

	query, args, err = pageQ.ToSql()
	if err != nil {
		return nil, 0, apperr.Storage("build list query", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Storage("list appointments", err)
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, apperr.Storage("scan appointment", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage("list appointments", err)
	}
	return items, total, nil
}

var roleTables = map[string]string{
	"patient": "patient",
	"doctor":  "doctor",
}

func (r *repoPG) LookupRole(ctx context.Context, username, role string) (string, error) {
	table, ok := roleTables[role]
	if !ok {
		return "", fmt.Errorf("unknown role %q", role)
	}
	var stored string
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT person_username FROM `+table+` WHERE LOWER(person_username) = LOWER($1)`, username).Scan(&stored)
	if db.IsNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Storage("look up "+role, err)
	}
	return stored, nil
}
