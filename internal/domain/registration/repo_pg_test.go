package registration

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/migrations"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestTranslate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"person_pkey", "username"},
		{"person_username_lower_key", "username"},
		{"person_mobile_number_key", "mobile_number"},
		{"person_email_key", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := translate("insert person", fmt.Errorf("exec: %w", uniqueViolation(tt.constraint)))

			var dup *apperr.DuplicateFieldError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.field, dup.Field)
			assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
		})
	}
}

func TestTranslate_OtherErrorsAreInternal(t *testing.T) {
	tests := map[string]error{
		"unmapped constraint": uniqueViolation("employee_contract_person_username_key"),
		"foreign key":         &pgconn.PgError{Code: "23503", ConstraintName: "patient_person_username_fkey"},
		"connection":          errors.New("conn reset by peer"),
	}
	for name, cause := range tests {
		t.Run(name, func(t *testing.T) {
			err := translate("insert person", cause)

			var se *apperr.StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, http.StatusInternalServerError, apperr.StatusOf(err))
			assert.Equal(t, "internal error", apperr.BodyOf(err).Message)
		})
	}
	assert.NoError(t, translate("insert person", nil))
}

// Every named index the mapping relies on must exist in the schema, or a
// racing duplicate would surface as a 500.
func TestUniqueFields_MatchSchema(t *testing.T) {
	schema, err := fs.ReadFile(migrations.Files, "001_core.sql")
	require.NoError(t, err)

	for constraint := range uniqueFields {
		if constraint == "person_pkey" {
			assert.Contains(t, string(schema), "username       VARCHAR(64)  PRIMARY KEY")
			continue
		}
		assert.True(t, strings.Contains(string(schema), "UNIQUE INDEX IF NOT EXISTS "+constraint+" ON person"),
			"index %s missing from 001_core.sql", constraint)
	}
}
