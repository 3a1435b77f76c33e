package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
	"github.com/fintech-enterprise/expense-tracker/internal/expense"
)

// ExpenseRepository implements expense.Repository using GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(exp *expense.Expense) error {
	return r.db.Create(exp).Error
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var exp expense.Expense
	if err := r.db.Where("id = ?", id).First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) GetAll() ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Order("date_submitted DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetBySubmitter(userID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("submitted_by_id = ?", userID).
		Order("date_submitted DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByDepartment(departmentID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("department_id = ?", departmentID).
		Order("date_submitted DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByCategory(category string) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("category = ?", category).
		Order("date_submitted DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

// GetBiggestInRange orders by amount descending then id ascending, so
// equal amounts resolve to the lowest id deterministically.
func (r *ExpenseRepository) GetBiggestInRange(from, to time.Time) (*expense.Expense, error) {
	var exp expense.Expense
	err := r.db.Where("date_submitted >= ? AND date_submitted < ?", from, to).
		Order("amount DESC, id ASC").
		First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exp, nil
}

// Update rewrites the editable fields of a pending expense. Like Review it
// is a compare-and-swap on the PENDING status, so an edit racing a review
// can never resurrect a reviewed row.
func (r *ExpenseRepository) Update(exp *expense.Expense) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&expense.Expense{}).
			Where("id = ? AND status = ?", exp.ID, expense.StatusPending).
			Updates(map[string]interface{}{
				"title":       exp.Title,
				"description": exp.Description,
				"amount":      exp.Amount,
				"category":    exp.Category,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&expense.Expense{}).Where("id = ?", exp.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.ErrExpenseNotFound
			}
			return internal.ErrExpenseNotPending
		}

		return tx.Where("id = ?", exp.ID).First(exp).Error
	})
}

// Review is the compare-and-swap transition of the approval workflow: the
// status write only matches rows still PENDING, and the department spend
// increment rides in the same transaction, so a concurrent reviewer of the
// same expense loses cleanly and budgets never drift from approvals.
func (r *ExpenseRepository) Review(expenseID, reviewerID int64, status string, reviewedAt time.Time) (*expense.Expense, error) {
	var reviewed expense.Expense

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&expense.Expense{}).
			Where("id = ? AND status = ?", expenseID, expense.StatusPending).
			Updates(map[string]interface{}{
				"status":         status,
				"reviewed_by_id": reviewerID,
				"date_reviewed":  reviewedAt,
				"updated_at":     time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&expense.Expense{}).Where("id = ?", expenseID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return internal.ErrExpenseNotFound
			}
			return internal.ErrExpenseReviewConflict
		}

		if err := tx.Where("id = ?", expenseID).First(&reviewed).Error; err != nil {
			return err
		}

		if status == expense.StatusApproved {
			spend := tx.Model(&department.Department{}).
				Where("id = ?", reviewed.DepartmentID).
				Update("spent_amount", gorm.Expr("spent_amount + ?", reviewed.Amount))
			if spend.Error != nil {
				return spend.Error
			}
			if spend.RowsAffected == 0 {
				return internal.ErrDepartmentNotFound
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &reviewed, nil
}

func (r *ExpenseRepository) Delete(id int64) error {
	return r.db.Delete(&expense.Expense{}, id).Error
}
