package expense

import (
	"github.com/shopspring/decimal"

	"github.com/fintech-enterprise/expense-tracker/internal"
)

const maxDescriptionLength = 500

type CreateExpenseDTO struct {
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	DepartmentID int64           `json:"department_id"`
}

func (dto CreateExpenseDTO) Validate() error {
	if dto.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeInvalidTitle)
	}
	if len(dto.Description) > maxDescriptionLength {
		return internal.NewValidationError("description must be at most 500 characters", internal.ErrCodeValidationFailed)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if _, ok := ParseCategory(dto.Category); !ok {
		return internal.NewValidationError("unknown expense category", internal.ErrCodeInvalidCategory)
	}
	return nil
}

// UpdateExpenseDTO replaces the editable fields of a pending expense.
// Submitter, department, and status are immutable after creation.
type UpdateExpenseDTO struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

func (dto UpdateExpenseDTO) Validate() error {
	if dto.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeInvalidTitle)
	}
	if len(dto.Description) > maxDescriptionLength {
		return internal.NewValidationError("description must be at most 500 characters", internal.ErrCodeValidationFailed)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationError("amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if _, ok := ParseCategory(dto.Category); !ok {
		return internal.NewValidationError("unknown expense category", internal.ErrCodeInvalidCategory)
	}
	return nil
}
