package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/simrs/bap/internal/platform/auth"
)

// ErrInvalidCredentials is returned for every login failure, whether the
// account is unknown, the password wrong, or the account disabled. Callers
// must not be able to probe which usernames exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalid marks a rejected account input; messages wrapping it are safe
// to return to the client.
var ErrInvalid = errors.New("invalid input")

type Service struct {
	repo Repository
	jwt  auth.JWTConfig
}

func NewService(repo Repository, jwt auth.JWTConfig) *Service {
	return &Service{repo: repo, jwt: jwt}
}

type CreateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Unit     string `json:"unit"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

const minPasswordLen = 8

func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLen)
	}
	if in.Role == "" {
		in.Role = auth.RoleUser
	}
	if in.Role != auth.RoleAdmin && in.Role != auth.RoleUser {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalid, in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	}
	if in.Email != "" {
		u.Email = &in.Email
	}
	if in.Unit != "" {
		u.Unit = &in.Unit
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and issues a signed token. Inactive accounts
// fail the same way bad passwords do.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.jwt, &auth.Actor{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to record last login")
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
