package registration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/hms/hms/internal/platform/apperr"
)

const (
	dateLayout        = "2006-01-02"
	maxUsernameLength = 64
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	mobilePattern   = regexp.MustCompile(`^[0-9]{9}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
)

func invalid(field, reason string) error {
	return &apperr.FieldValidationError{Field: field, Reason: reason}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// Validate checks the fields every registration carries. The first failing
// rule is returned.
func (f CommonFields) Validate() error {
	if err := required("username", f.Username); err != nil {
		return err
	}
	if !usernamePattern.MatchString(f.Username) {
		return invalid("username", "must contain only letters and digits")
	}
	if len(f.Username) > maxUsernameLength {
		return invalid("username", fmt.Sprintf("must be at most %d characters", maxUsernameLength))
	}

	if f.Password == "" {
		return invalid("password", "is required")
	}
	if len(f.Password) > maxPasswordBytes {
		return invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	if err := required("name", f.Name); err != nil {
		return err
	}
	if strings.IndexFunc(f.Name, unicode.IsDigit) >= 0 {
		return invalid("name", "must not contain digits")
	}

	if err := required("mobile_number", f.MobileNumber); err != nil {
		return err
	}
	if !mobilePattern.MatchString(f.MobileNumber) {
		return invalid("mobile_number", "must be exactly 9 digits")
	}

	if err := required("birth_date", f.BirthDate); err != nil {
		return err
	}
	if _, err := parseDate("birth_date", f.BirthDate); err != nil {
		return err
	}

	if err := required("address", f.Address); err != nil {
		return err
	}

	if err := required("email", f.Email); err != nil {
		return err
	}
	if !emailPattern.MatchString(f.Email) {
		return invalid("email", "must look like local@domain.tld")
	}
	return nil
}

// Validate checks the contract terms. A nil contract is reported as missing.
func (c *ContractInput) Validate() error {
	if c == nil {
		return invalid("contract", "is required")
	}

	salary := string(c.Salary)
	if err := required("salary", salary); err != nil {
		return err
	}
	if !digitsPattern.MatchString(salary) {
		return invalid("salary", "must contain only digits")
	}
	if _, err := strconv.ParseInt(salary, 10, 64); err != nil {
		return invalid("salary", "is out of range")
	}

	if err := required("start_date", c.StartDate); err != nil {
		return err
	}
	start, err := parseDate("start_date", c.StartDate)
	if err != nil {
		return err
	}

	if c.EndDate != "" {
		end, err := parseDate("end_date", c.EndDate)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return invalid("end_date", "must not be before start_date")
		}
	}
	return nil
}

func (r *PatientRequest) Validate() error {
	return r.CommonFields.Validate()
}

func (r *AssistantRequest) Validate() error {
	if err := r.CommonFields.Validate(); err != nil {
		return err
	}
	return r.Contract.Validate()
}

func (r *NurseRequest) Validate() error {
	if err := r.CommonFields.Validate(); err != nil {
		return err
	}
	if err := required("position", r.Position); err != nil {
		return err
	}
	return r.Contract.Validate()
}

func (r *DoctorRequest) Validate() error {
	if err := r.CommonFields.Validate(); err != nil {
		return err
	}
	if err := required("license_info", r.LicenseInfo); err != nil {
		return err
	}
	for _, id := range r.SpecializationIDs {
		if id <= 0 {
			return invalid("specializations_ids", "must contain positive ids")
		}
	}
	return r.Contract.Validate()
}

// person builds the row to insert from validated fields.
func (f CommonFields) person(passwordHash string) (*Person, error) {
	birth, err := parseDate("birth_date", f.BirthDate)
	if err != nil {
		return nil, err
	}
	return &Person{
		Username:     f.Username,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(f.Name),
		MobileNumber: f.MobileNumber,
		BirthDate:    birth,
		Address:      strings.TrimSpace(f.Address),
		Email:        f.Email,
	}, nil
}

// contract builds the row to insert from a validated contract.
func (c *ContractInput) contract(username string) (*EmployeeContract, error) {
	salary, err := strconv.ParseInt(string(c.Salary), 10, 64)
	if err != nil {
		return nil, invalid("salary", "must contain only digits")
	}
	start, err := parseDate("start_date", c.StartDate)
	if err != nil {
		return nil, err
	}
	ec := &EmployeeContract{PersonUsername: username, Salary: salary, StartDate: start}
	if d := strings.TrimSpace(c.Duration); d != "" {
		ec.Duration = &d
	}
	if c.EndDate != "" {
		end, err := parseDate("end_date", c.EndDate)
		if err != nil {
			return nil, err
		}
		ec.EndDate = &end
	}
	return ec, nil
}

// dedupe returns ids without repeats, keeping first-seen order.
func dedupe(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
