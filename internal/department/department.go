package department

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department is a budget-holding organizational unit. Members are users
// whose department_id points here; the reverse association is resolved by
// query, never embedded.
type Department struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"uniqueIndex;not null"`
	YearlyBudget decimal.Decimal `json:"yearly_budget" gorm:"type:decimal(14,2);not null"`
	SpentAmount  decimal.Decimal `json:"spent_amount" gorm:"type:decimal(14,2);not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// BudgetOverview summarizes a department's budget consumption for
// reporting.
type BudgetOverview struct {
	DepartmentName   string          `json:"department_name"`
	YearlyBudget     decimal.Decimal `json:"yearly_budget"`
	SpentAmount      decimal.Decimal `json:"spent_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	RemainingPercent decimal.Decimal `json:"remaining_percent"`
	SpentPercent     decimal.Decimal `json:"spent_percent"`
}

var hundred = decimal.NewFromInt(100)

// Overview derives the reporting row for one department. Percentages are
// (value/budget)*100 at four fractional digits, rounded half-up; a zero
// budget yields zero percentages rather than a division by zero.
func (d *Department) Overview() BudgetOverview {
	remaining := d.YearlyBudget.Sub(d.SpentAmount)

	remainingPercent := decimal.Zero
	spentPercent := decimal.Zero
	if d.YearlyBudget.IsPositive() {
		remainingPercent = remaining.DivRound(d.YearlyBudget, 4).Mul(hundred).Round(2)
		spentPercent = d.SpentAmount.DivRound(d.YearlyBudget, 4).Mul(hundred).Round(2)
	}

	return BudgetOverview{
		DepartmentName:   d.Name,
		YearlyBudget:     d.YearlyBudget,
		SpentAmount:      d.SpentAmount,
		RemainingAmount:  remaining,
		RemainingPercent: remainingPercent,
		SpentPercent:     spentPercent,
	}
}
