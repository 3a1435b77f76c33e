package department

import (
	"errors"

	"github.com/shopspring/decimal"
)

type CreateDepartmentDTO struct {
	Name         string          `json:"name"`
	YearlyBudget decimal.Decimal `json:"yearly_budget"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.YearlyBudget.IsNegative() {
		return errors.New("yearly budget cannot be negative")
	}
	return nil
}

// UpdateDepartmentDTO carries partial updates; only name and budget are
// settable, the spent total is owned by expense approvals.
type UpdateDepartmentDTO struct {
	Name         *string          `json:"name,omitempty"`
	YearlyBudget *decimal.Decimal `json:"yearly_budget,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.YearlyBudget != nil && dto.YearlyBudget.IsNegative() {
		return errors.New("yearly budget cannot be negative")
	}
	return nil
}
