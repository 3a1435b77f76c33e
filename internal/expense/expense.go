package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense status constants. PENDING is the only non-terminal state; an
// expense transitions at most once, to APPROVED or DENIED.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDenied   = "DENIED"
)

// Expense categories.
const (
	CategoryTravel         = "TRAVEL"
	CategorySoftware       = "SOFTWARE"
	CategoryOfficeSupplies = "OFFICE_SUPPLIES"
	CategoryMeals          = "MEALS"
	CategoryAdvertising    = "ADVERTISING"
	CategoryOther          = "OTHER"
)

var categories = map[string]struct{}{
	CategoryTravel:         {},
	CategorySoftware:       {},
	CategoryOfficeSupplies: {},
	CategoryMeals:          {},
	CategoryAdvertising:    {},
	CategoryOther:          {},
}

// ParseCategory normalizes a category string, reporting whether it is one
// of the known categories.
func ParseCategory(raw string) (string, bool) {
	category := strings.ToUpper(strings.TrimSpace(raw))
	_, ok := categories[category]
	return category, ok
}

// Expense is a single spending claim charged to a department. It references
// its submitter, department, and reviewer by id only; reverse associations
// are reconstructed by the query layer.
type Expense struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	Title         string          `json:"title" gorm:"not null"`
	Description   string          `json:"description,omitempty" gorm:"size:500"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Category      string          `json:"category" gorm:"not null"`
	Status        string          `json:"status" gorm:"not null;default:PENDING"`
	DateSubmitted time.Time       `json:"date_submitted" gorm:"column:date_submitted;not null"`
	DateReviewed  *time.Time      `json:"date_reviewed,omitempty" gorm:"column:date_reviewed"`
	SubmittedByID int64           `json:"submitted_by_id" gorm:"column:submitted_by_id;not null"`
	DepartmentID  int64           `json:"department_id" gorm:"column:department_id;not null"`
	ReviewedByID  *int64          `json:"reviewed_by_id,omitempty" gorm:"column:reviewed_by_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) IsPending() bool {
	return e.Status == StatusPending
}

func (e *Expense) CanBeReviewed() bool {
	return e.IsPending()
}
