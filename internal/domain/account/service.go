package account

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

type PasswordVerifier interface {
	Verify(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(username, role string) (string, time.Time, error)
}

var errBadCredentials = &apperr.UnauthorizedError{Message: "invalid username or password"}

type Service struct {
	repo     Repository
	verifier PasswordVerifier
	issuer   TokenIssuer
	logger   zerolog.Logger
}

func NewService(repo Repository, verifier PasswordVerifier, issuer TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		issuer:   issuer,
		logger:   logger.With().Str("component", "account").Logger(),
	}
}

// Login checks the credentials and issues a bearer token. Unknown users and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Token, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, errBadCredentials
	}

	acct, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		s.logger.Info().Str("username", req.Username).Msg("login rejected: unknown user")
		return nil, errBadCredentials
	}

	ok, err := s.verifier.Verify(acct.PasswordHash, req.Password)
	if err != nil {
		return nil, apperr.Storage("verify password", err)
	}
	if !ok {
		s.logger.Info().Str("username", acct.Username).Msg("login rejected: wrong password")
		return nil, errBadCredentials
	}

	token, exp, err := s.issuer.Issue(acct.Username, acct.Role)
	if err != nil {
		return nil, apperr.Storage("issue token", err)
	}
	return &Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		Username:    acct.Username,
		Role:        acct.Role,
	}, nil
}

func (s *Service) Get(ctx context.Context, username string) (*Account, error) {
	acct, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &apperr.NotFoundError{Resource: "person", ID: username}
	}
	return acct, nil
}
