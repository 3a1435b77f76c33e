package postgres

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
)

// DepartmentRepository implements department.Repository using GORM.
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(dept *department.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var dept department.Department
	if err := r.db.Where("id = ?", id).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var depts []*department.Department
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}

// Update writes the settable columns only. The spent total is owned by the
// approval flow's SQL-side increment; rewriting it from a caller's copy
// could erase spend recorded between that caller's read and write.
func (r *DepartmentRepository) Update(dept *department.Department) error {
	res := r.db.Model(&department.Department{}).
		Where("id = ?", dept.ID).
		Updates(map[string]interface{}{
			"name":          dept.Name,
			"yearly_budget": dept.YearlyBudget,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Delete(&department.Department{}, id).Error
}

// RecordSpend increments the spent total in SQL so concurrent approvals
// against the same department serialize on the row, not in Go.
func (r *DepartmentRepository) RecordSpend(departmentID int64, amount decimal.Decimal) error {
	res := r.db.Model(&department.Department{}).
		Where("id = ?", departmentID).
		Update("spent_amount", gorm.Expr("spent_amount + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}

// Exists reports whether a department id resolves, for collaborators that
// only need to validate a charge target.
func (r *DepartmentRepository) Exists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&department.Department{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
