package user

import (
	"errors"

	"github.com/fintech-enterprise/expense-tracker/internal/auth"
)

type CreateUserDTO struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !auth.ValidRole(dto.Role) {
		return errors.New("role must be one of ADMIN, MANAGER, EMPLOYEE")
	}
	return nil
}

// UpdateUserDTO carries partial updates; the username and password hash do
// not change through this path.
type UpdateUserDTO struct {
	Role         *string `json:"role,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Role != nil && !auth.ValidRole(*dto.Role) {
		return errors.New("role must be one of ADMIN, MANAGER, EMPLOYEE")
	}
	return nil
}
