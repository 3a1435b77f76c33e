package department

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fintech-enterprise/expense-tracker/internal"
)

// Repository is the persistence contract for departments.
type Repository interface {
	Create(dept *Department) error
	GetByID(id int64) (*Department, error)
	GetAll() ([]*Department, error)
	Update(dept *Department) error
	Delete(id int64) error
	// RecordSpend adds amount to the department's spent total as a single
	// SQL-side increment, so concurrent approvals cannot lose updates.
	RecordSpend(departmentID int64, amount decimal.Decimal) error
}

// MemberRepository manipulates the user side of department membership.
type MemberRepository interface {
	AssignDepartment(userID int64, departmentID *int64) error
	GetDepartmentID(userID int64) (*int64, error)
}

type Service struct {
	repo    Repository
	members MemberRepository
	logger  *slog.Logger
}

func NewService(repo Repository, members MemberRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidBudget)
	}

	dept := &Department{
		Name:         dto.Name,
		YearlyBudget: dto.YearlyBudget,
		SpentAmount:  decimal.Zero,
	}

	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) GetDepartmentByID(id int64) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load department")
	}
	return dept, nil
}

func (s *Service) GetAllDepartments() ([]*Department, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	return depts, nil
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidBudget)
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load department")
	}

	if dto.Name != nil {
		dept.Name = *dto.Name
	}
	if dto.YearlyBudget != nil {
		dept.YearlyBudget = *dto.YearlyBudget
	}

	if err := s.repo.Update(dept); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to update department", err)
	}

	return dept, nil
}

func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.CoerceError(err, "failed to load department")
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to delete department", err)
	}
	return nil
}

// AddMember points a user's department reference at this department.
func (s *Service) AddMember(departmentID, userID int64) (*Department, error) {
	dept, err := s.repo.GetByID(departmentID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load department")
	}

	if _, err := s.members.GetDepartmentID(userID); err != nil {
		return nil, internal.CoerceError(err, "failed to resolve user")
	}

	if err := s.members.AssignDepartment(userID, &departmentID); err != nil {
		s.logger.Error("failed to add member", "error", err, "department_id", departmentID, "user_id", userID)
		return nil, internal.NewInternalError("failed to add member", err)
	}

	s.logger.Info("member added to department", "department_id", departmentID, "user_id", userID)
	return dept, nil
}

// RemoveMember clears a user's department reference, guarding that the
// user actually belongs to this department.
func (s *Service) RemoveMember(departmentID, userID int64) (*Department, error) {
	dept, err := s.repo.GetByID(departmentID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load department")
	}

	current, err := s.members.GetDepartmentID(userID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to resolve user")
	}
	if current == nil || *current != departmentID {
		return nil, internal.ErrNotDepartmentMember
	}

	if err := s.members.AssignDepartment(userID, nil); err != nil {
		s.logger.Error("failed to remove member", "error", err, "department_id", departmentID, "user_id", userID)
		return nil, internal.NewInternalError("failed to remove member", err)
	}

	s.logger.Info("member removed from department", "department_id", departmentID, "user_id", userID)
	return dept, nil
}

// RecordSpend increases a department's spent total. Expense approval uses
// the transactional path in the expense repository; this entry point serves
// callers outside that transaction.
func (s *Service) RecordSpend(departmentID int64, amount decimal.Decimal) error {
	if err := s.repo.RecordSpend(departmentID, amount); err != nil {
		return err
	}
	s.logger.Info("spend recorded", "department_id", departmentID, "amount", amount)
	return nil
}

// BudgetOverview reports budget consumption for every department.
func (s *Service) BudgetOverview() ([]BudgetOverview, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to load departments for overview", "error", err)
		return nil, internal.NewInternalError("failed to build budget overview", err)
	}

	overview := make([]BudgetOverview, 0, len(depts))
	for _, dept := range depts {
		overview = append(overview, dept.Overview())
	}
	return overview, nil
}
