package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"outlay/internal/auth"
	"outlay/internal/core"
	"outlay/internal/log"
	"outlay/internal/storage"
)

// AccountService manages credentials and user profiles. It owns password
// hashing; storage only ever sees bcrypt hashes.
type AccountService struct {
	repo   *storage.Repository
	hasher *auth.Hasher
	logger *log.Logger
}

func NewAccountService(repo *storage.Repository, hasher *auth.Hasher) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		logger: log.New(log.ComponentAccount, slog.LevelInfo),
	}
}

// RegisterInput carries the fields a new account provides. Password is the
// only place a raw password enters the service; it is hashed immediately.
type RegisterInput struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	DateOfBirth core.Date `json:"dateOfBirth"`
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return core.ErrEmptyEmail
	}
	if in.Password == "" {
		return core.ErrEmptyPassword
	}
	return nil
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*core.Credential, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred, err := s.repo.CreateCredential(ctx, core.Credential{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registered account",
		log.FieldUserID, cred.ID, log.FieldEmail, cred.Email)
	return cred, nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password both come back as ErrInvalidCredentials; the caller cannot tell
// which one failed.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*core.Credential, error) {
	cred, err := s.repo.GetCredentialByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up credential: %w", err)
	}
	if cred == nil || !s.hasher.Verify(password, cred.PasswordHash) {
		return nil, core.ErrInvalidCredentials
	}
	return cred, nil
}

// UpdateInput carries editable credential fields. An empty Password keeps
// the stored hash; a non-empty one is rehashed.
type UpdateInput struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	DateOfBirth core.Date `json:"dateOfBirth"`
}

func (s *AccountService) UpdateCredential(ctx context.Context, id int64, in UpdateInput) (*core.Credential, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, core.ErrEmptyEmail
	}

	current, err := s.repo.GetCredentialByID(ctx, id)
	if err != nil {
		return nil, err
	}

	hash := current.PasswordHash
	if in.Password != "" {
		hash, err = s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	return s.repo.UpdateCredential(ctx, id, core.Credential{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
	})
}

func (s *AccountService) GetCredential(ctx context.Context, id int64) (*core.Credential, error) {
	return s.repo.GetCredentialByID(ctx, id)
}

func (s *AccountService) ListCredentials(ctx context.Context) ([]core.Credential, error) {
	return s.repo.ListCredentials(ctx)
}

func (s *AccountService) DeleteCredential(ctx context.Context, id int64) error {
	return s.repo.DeleteCredential(ctx, id)
}

// User profile CRUD. Profiles carry no secret material and are separate from
// credentials; the two are linked by email only.

func (s *AccountService) CreateUser(ctx context.Context, user core.User) (*core.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, core.ErrEmptyEmail
	}
	return s.repo.CreateUser(ctx, user)
}

func (s *AccountService) GetUser(ctx context.Context, id int64) (*core.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *AccountService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *AccountService) UpdateUser(ctx context.Context, id int64, user core.User) (*core.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, core.ErrEmptyEmail
	}
	return s.repo.UpdateUser(ctx, id, user)
}

func (s *AccountService) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
