package expense

import (
	"log/slog"
	"time"

	"github.com/fintech-enterprise/expense-tracker/internal"
)

// Repository is the persistence contract for expenses. Review must be a
// compare-and-swap on the PENDING status: of two concurrent reviews of the
// same expense exactly one transitions the row.
type Repository interface {
	Create(exp *Expense) error
	GetByID(id int64) (*Expense, error)
	GetAll() ([]*Expense, error)
	GetBySubmitter(userID int64) ([]*Expense, error)
	GetByDepartment(departmentID int64) ([]*Expense, error)
	GetByCategory(category string) ([]*Expense, error)
	// GetBiggestInRange returns the expense with the largest amount whose
	// submission date falls in [from, to); ties break on lowest id. A nil
	// expense with nil error means the range is empty.
	GetBiggestInRange(from, to time.Time) (*Expense, error)
	// Update rewrites the editable fields and must compare-and-swap on the
	// PENDING status the same way Review does, returning
	// ErrExpenseNotFound or ErrExpenseNotPending when the row is missing
	// or already reviewed.
	Update(exp *Expense) error
	// Review transitions a pending expense to status and, when approving,
	// adds its amount to the department spent total in the same
	// transaction. Returns ErrExpenseNotFound if the id does not resolve
	// and ErrExpenseReviewConflict if the row exists but is no longer
	// pending.
	Review(expenseID, reviewerID int64, status string, reviewedAt time.Time) (*Expense, error)
	Delete(id int64) error
}

// DepartmentDirectory resolves charge targets.
type DepartmentDirectory interface {
	Exists(id int64) (bool, error)
}

// UserDirectory resolves reviewer identities.
type UserDirectory interface {
	Exists(id int64) (bool, error)
}

// Service is the approval workflow: it owns the expense lifecycle and its
// effect on department budgets. Role checks happen at the transport
// boundary; this layer enforces state and consistency.
type Service struct {
	repo        Repository
	departments DepartmentDirectory
	users       UserDirectory
	logger      *slog.Logger
}

func NewService(repo Repository, departments DepartmentDirectory, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		users:       users,
		logger:      logger,
	}
}

// Submit creates a new PENDING expense on behalf of the caller.
func (s *Service) Submit(callerID int64, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "user_id", callerID)
		return nil, err
	}

	exists, err := s.departments.Exists(dto.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve department", "error", err, "department_id", dto.DepartmentID)
		return nil, internal.NewInternalError("failed to resolve department", err)
	}
	if !exists {
		return nil, internal.ErrDepartmentNotFound
	}

	category, _ := ParseCategory(dto.Category)
	exp := &Expense{
		Title:         dto.Title,
		Description:   dto.Description,
		Amount:        dto.Amount,
		Category:      category,
		Status:        StatusPending,
		DateSubmitted: time.Now(),
		SubmittedByID: callerID,
		DepartmentID:  dto.DepartmentID,
	}

	if err := s.repo.Create(exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", callerID)
		return nil, internal.NewInternalError("failed to create expense", err)
	}

	s.logger.Info("expense submitted",
		"expense_id", exp.ID,
		"user_id", callerID,
		"department_id", exp.DepartmentID,
		"amount", exp.Amount)

	return exp, nil
}

// Update replaces the editable fields of a pending expense. Submitter,
// department, and status never change here.
func (s *Service) Update(expenseID int64, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exp, err := s.repo.GetByID(expenseID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load expense")
	}

	if !exp.IsPending() {
		s.logger.Warn("cannot update reviewed expense", "expense_id", expenseID, "status", exp.Status)
		return nil, internal.ErrExpenseNotPending
	}

	category, _ := ParseCategory(dto.Category)
	exp.Title = dto.Title
	exp.Description = dto.Description
	exp.Amount = dto.Amount
	exp.Category = category

	// The repository re-checks PENDING in the write itself; a review that
	// lands between the read above and this write loses nothing.
	if err := s.repo.Update(exp); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update expense", "error", err, "expense_id", expenseID)
		return nil, internal.NewInternalError("failed to update expense", err)
	}

	return exp, nil
}

// Approve transitions a pending expense to APPROVED and charges its amount
// to the department budget. The reviewer is the authenticated caller.
func (s *Service) Approve(expenseID, reviewerID int64) (*Expense, error) {
	return s.review(expenseID, reviewerID, StatusApproved)
}

// Deny transitions a pending expense to DENIED. The reviewer is resolved by
// id and must exist; a denial never touches the budget ledger.
func (s *Service) Deny(expenseID, reviewerID int64) (*Expense, error) {
	exists, err := s.users.Exists(reviewerID)
	if err != nil {
		s.logger.Error("failed to resolve reviewer", "error", err, "reviewer_id", reviewerID)
		return nil, internal.NewInternalError("failed to resolve reviewer", err)
	}
	if !exists {
		return nil, internal.ErrReviewerNotFound
	}

	return s.review(expenseID, reviewerID, StatusDenied)
}

func (s *Service) review(expenseID, reviewerID int64, status string) (*Expense, error) {
	exp, err := s.repo.GetByID(expenseID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load expense")
	}

	if !exp.CanBeReviewed() {
		s.logger.Warn("expense already reviewed",
			"expense_id", expenseID,
			"status", exp.Status,
			"requested_status", status)
		return nil, internal.ErrExpenseAlreadyReviewed
	}

	reviewed, err := s.repo.Review(expenseID, reviewerID, status, time.Now())
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to review expense", "error", err, "expense_id", expenseID)
		return nil, internal.NewInternalError("failed to review expense", err)
	}

	s.logger.Info("expense reviewed",
		"expense_id", expenseID,
		"reviewer_id", reviewerID,
		"status", status,
		"amount", reviewed.Amount)

	return reviewed, nil
}

// Delete removes an expense unconditionally, in any state. Approved spend
// stays on the department ledger.
func (s *Service) Delete(expenseID int64) error {
	if _, err := s.repo.GetByID(expenseID); err != nil {
		return internal.CoerceError(err, "failed to load expense")
	}
	if err := s.repo.Delete(expenseID); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", expenseID)
		return internal.NewInternalError("failed to delete expense", err)
	}
	s.logger.Info("expense deleted", "expense_id", expenseID)
	return nil
}

// --- Query layer: pure reads, no mutation ---

func (s *Service) GetByID(expenseID int64) (*Expense, error) {
	exp, err := s.repo.GetByID(expenseID)
	if err != nil {
		return nil, internal.CoerceError(err, "failed to load expense")
	}
	return exp, nil
}

func (s *Service) GetAll() ([]*Expense, error) {
	return s.list(s.repo.GetAll())
}

func (s *Service) GetBySubmitter(userID int64) ([]*Expense, error) {
	return s.list(s.repo.GetBySubmitter(userID))
}

func (s *Service) GetByDepartment(departmentID int64) ([]*Expense, error) {
	return s.list(s.repo.GetByDepartment(departmentID))
}

// GetByCategory is lenient: an unrecognized category yields an empty
// result set rather than an error.
func (s *Service) GetByCategory(raw string) ([]*Expense, error) {
	category, ok := ParseCategory(raw)
	if !ok {
		return []*Expense{}, nil
	}
	return s.list(s.repo.GetByCategory(category))
}

// BiggestThisMonth returns the largest expense submitted during the
// current calendar month on the server clock, or nil if there is none.
// Equal amounts tie-break on the lowest id.
func (s *Service) BiggestThisMonth() (*Expense, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	exp, err := s.repo.GetBiggestInRange(from, to)
	if err != nil {
		s.logger.Error("failed to query biggest expense", "error", err)
		return nil, internal.NewInternalError("failed to query biggest expense", err)
	}
	return exp, nil
}

func (s *Service) list(expenses []*Expense, err error) ([]*Expense, error) {
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err)
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	return expenses, nil
}
