package registration

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

// Stage is a step of the registration state machine:
// Validating -> PersonInserted -> ContractInserted -> RoleInserted -> Committed.
type Stage int

const (
	StageValidating Stage = iota
	StagePersonInserted
	StageContractInserted
	StageRoleInserted
	StageCommitted
)

var stageNames = [...]string{
	StageValidating:       "validating",
	StagePersonInserted:   "person",
	StageContractInserted: "contract",
	StageRoleInserted:     "role",
	StageCommitted:        "commit",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "stage(" + strconv.Itoa(int(s)) + ")"
	}
	return stageNames[s]
}

// StageError is the Failed(stage) outcome. Stage is the state the
// registration was moving into when it failed. Nothing written before the
// failure survives it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Kind() apperr.Kind { return apperr.KindOf(e.Err) }

// PasswordHasher hashes plaintext passwords before they are stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	store  Store
	hasher PasswordHasher
	logger zerolog.Logger
}

func NewService(store Store, hasher PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		logger: logger.With().Str("component", "registration").Logger(),
	}
}

// attempt is one registration on its way through the state machine.
type attempt struct {
	common   CommonFields
	contract *ContractInput
	role     RoleRecord
}

func (s *Service) RegisterPatient(ctx context.Context, req *PatientRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(req.Username, RolePatient, StageValidating, err)
	}
	return s.register(ctx, attempt{
		common: req.CommonFields,
		role:   RoleRecord{Role: RolePatient},
	})
}

func (s *Service) RegisterAssistant(ctx context.Context, req *AssistantRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(req.Username, RoleAssistant, StageValidating, err)
	}
	return s.register(ctx, attempt{
		common:   req.CommonFields,
		contract: req.Contract,
		role:     RoleRecord{Role: RoleAssistant},
	})
}

func (s *Service) RegisterNurse(ctx context.Context, req *NurseRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(req.Username, RoleNurse, StageValidating, err)
	}
	return s.register(ctx, attempt{
		common:   req.CommonFields,
		contract: req.Contract,
		role:     RoleRecord{Role: RoleNurse, Position: req.Position},
	})
}

func (s *Service) RegisterDoctor(ctx context.Context, req *DoctorRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail(req.Username, RoleDoctor, StageValidating, err)
	}
	return s.register(ctx, attempt{
		common:   req.CommonFields,
		contract: req.Contract,
		role: RoleRecord{
			Role:              RoleDoctor,
			LicenseInfo:       req.LicenseInfo,
			SpecializationIDs: dedupe(req.SpecializationIDs),
		},
	})
}

func (s *Service) ListSpecializations(ctx context.Context) ([]*Specialization, error) {
	return s.store.ListSpecializations(ctx)
}

// register runs the checks that need the store and every insert inside one
// transaction. Any failure rolls all of it back.
func (s *Service) register(ctx context.Context, a attempt) (*Result, error) {
	username, role := a.common.Username, a.role.Role

	hash, err := s.hasher.Hash(a.common.Password)
	if err != nil {
		return nil, s.fail(username, role, StageValidating, apperr.Storage("hash password", err))
	}
	person, err := a.common.person(hash)
	if err != nil {
		return nil, s.fail(username, role, StageValidating, err)
	}

	var contract *EmployeeContract
	if role.IsEmployee() {
		if contract, err = a.contract.contract(username); err != nil {
			return nil, s.fail(username, role, StageValidating, err)
		}
	}

	stage := StageValidating
	err = s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := checkSpecializations(ctx, tx, a.role.SpecializationIDs); err != nil {
			return err
		}
		if err := NewUniquenessChecker(tx).Check(ctx, person.Username, person.MobileNumber, person.Email); err != nil {
			return err
		}

		stage = StagePersonInserted
		if err := tx.InsertPerson(ctx, person); err != nil {
			return err
		}
		s.logger.Debug().Str("username", username).Stringer("stage", stage).Msg("person inserted")

		if contract != nil {
			stage = StageContractInserted
			if err := tx.InsertContract(ctx, contract); err != nil {
				return err
			}
			a.role.ContractID = &contract.ID
			s.logger.Debug().Str("username", username).Int64("contract_id", contract.ID).Msg("contract inserted")
		}

		stage = StageRoleInserted
		a.role.Username = person.Username
		if err := tx.InsertRole(ctx, &a.role); err != nil {
			return err
		}

		stage = StageCommitted
		return nil
	})
	if err != nil {
		return nil, s.fail(username, role, stage, err)
	}

	s.logger.Info().Str("username", username).Str("role", string(role)).Msg("registration committed")
	return &Result{Username: person.Username, Role: role, ContractID: a.role.ContractID}, nil
}

func checkSpecializations(ctx context.Context, tx Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := tx.MissingSpecializations(ctx, ids)
	if err != nil {
		return apperr.Storage("check specializations", err)
	}
	if len(missing) > 0 {
		return &apperr.ReferenceNotFoundError{Ref: "specialization", ID: strconv.FormatInt(missing[0], 10)}
	}
	return nil
}

func (s *Service) fail(username string, role Role, stage Stage, err error) error {
	evt := s.logger.Debug()
	if apperr.KindOf(err) == apperr.KindInternal {
		evt = s.logger.Error().Err(err)
	}
	evt.Str("username", username).
		Str("role", string(role)).
		Stringer("stage", stage).
		Str("error_kind", apperr.KindOf(err).String()).
		Msg("registration failed")
	return &StageError{Stage: stage, Err: err}
}
