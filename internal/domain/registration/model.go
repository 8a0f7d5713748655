package registration

import (
	"bytes"
	"encoding/json"
	"time"
)

// Role identifies which role record a registration creates.
type Role string

const (
	RolePatient   Role = "patient"
	RoleAssistant Role = "assistant"
	RoleNurse     Role = "nurse"
	RoleDoctor    Role = "doctor"
)

// IsEmployee reports whether the role requires an employee contract.
func (r Role) IsEmployee() bool {
	return r == RoleAssistant || r == RoleNurse || r == RoleDoctor
}

// LooseString accepts a JSON string or a bare JSON number, so clients may
// send "salary": 1500 as well as "salary": "1500".
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = LooseString(n.String())
	return nil
}

// CommonFields are required for every registration.
type CommonFields struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	BirthDate    string `json:"birth_date"`
	Address      string `json:"address"`
	Email        string `json:"email"`
}

// ContractInput carries the employee contract terms as submitted.
type ContractInput struct {
	Salary    LooseString `json:"salary"`
	StartDate string      `json:"start_date"`
	Duration  string      `json:"duration,omitempty"`
	EndDate   string      `json:"end_date,omitempty"`
}

type PatientRequest struct {
	CommonFields
}

type AssistantRequest struct {
	CommonFields
	Contract *ContractInput `json:"contract"`
}

type NurseRequest struct {
	CommonFields
	Position string         `json:"position"`
	Contract *ContractInput `json:"contract"`
}

type DoctorRequest struct {
	CommonFields
	LicenseInfo       string         `json:"license_info"`
	SpecializationIDs []int64        `json:"specializations_ids"`
	Contract          *ContractInput `json:"contract"`
}

// Person maps to the person table.
type Person struct {
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password" json:"-"`
	Name         string    `db:"name" json:"name"`
	MobileNumber string    `db:"mobile_number" json:"mobile_number"`
	BirthDate    time.Time `db:"birth_date" json:"birth_date"`
	Address      string    `db:"address" json:"address"`
	Email        string    `db:"email" json:"email"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EmployeeContract maps to the employee_contract table.
type EmployeeContract struct {
	ID             int64      `db:"id" json:"id"`
	PersonUsername string     `db:"person_username" json:"person_username"`
	Salary         int64      `db:"salary" json:"salary"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	Duration       *string    `db:"duration" json:"duration,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// RoleRecord is the role-specific row. Position is set for nurses,
// LicenseInfo and SpecializationIDs for doctors.
type RoleRecord struct {
	Role              Role
	Username          string
	ContractID        *int64
	Position          string
	LicenseInfo       string
	SpecializationIDs []int64
}

// Specialization maps to the specialization reference table.
type Specialization struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Result describes a committed registration.
type Result struct {
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	ContractID *int64 `json:"contract_id,omitempty"`
}
