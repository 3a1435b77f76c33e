package user

import (
	"log/slog"

	"github.com/fintech-enterprise/expense-tracker/internal"
)

type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByUsername(username string) (*User, error)
	GetAll() ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
}

// PasswordHasher hashes plaintext credentials; the auth service provides
// the implementation so the bcrypt cost lives in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByUsername(dto.Username); err == nil && existing != nil {
		return nil, internal.NewConflictError("username already taken", internal.ErrCodeDuplicateName)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	u := &User{
		Username:     dto.Username,
		PasswordHash: hash,
		Role:         dto.Role,
		DepartmentID: dto.DepartmentID,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *Service) GetUserByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load user")
	}
	return u, nil
}

func (s *Service) GetAllUsers() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load user")
	}

	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}

	if err := s.repo.Update(u); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	return u, nil
}

func (s *Service) DeleteUser(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.CoerceError(err, "failed to load user")
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
