package expense_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/expense"
)

func TestExpenseService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Service Suite")
}

// Mock repository for testing
type mockExpenseRepository struct {
	expenses    map[int64]*expense.Expense
	nextID      int64
	createError error
	getError    error
	biggest     *expense.Expense
	biggestFrom time.Time
	biggestTo   time.Time
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{
		expenses: make(map[int64]*expense.Expense),
		nextID:   1,
	}
}

func (m *mockExpenseRepository) Create(exp *expense.Expense) error {
	if m.createError != nil {
		return m.createError
	}
	exp.ID = m.nextID
	m.nextID++
	exp.CreatedAt = time.Now()
	exp.UpdatedAt = time.Now()
	m.expenses[exp.ID] = exp
	return nil
}

func (m *mockExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	exp, ok := m.expenses[id]
	if !ok {
		return nil, internal.ErrExpenseNotFound
	}
	return exp, nil
}

func (m *mockExpenseRepository) GetAll() ([]*expense.Expense, error) {
	out := make([]*expense.Expense, 0, len(m.expenses))
	for _, exp := range m.expenses {
		out = append(out, exp)
	}
	return out, nil
}

func (m *mockExpenseRepository) GetBySubmitter(userID int64) ([]*expense.Expense, error) {
	var out []*expense.Expense
	for _, exp := range m.expenses {
		if exp.SubmittedByID == userID {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) GetByDepartment(departmentID int64) ([]*expense.Expense, error) {
	var out []*expense.Expense
	for _, exp := range m.expenses {
		if exp.DepartmentID == departmentID {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) GetByCategory(category string) ([]*expense.Expense, error) {
	var out []*expense.Expense
	for _, exp := range m.expenses {
		if exp.Category == category {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) GetBiggestInRange(from, to time.Time) (*expense.Expense, error) {
	m.biggestFrom = from
	m.biggestTo = to
	return m.biggest, nil
}

func (m *mockExpenseRepository) Update(exp *expense.Expense) error {
	stored, ok := m.expenses[exp.ID]
	if !ok {
		return internal.ErrExpenseNotFound
	}
	if stored.Status != expense.StatusPending {
		return internal.ErrExpenseNotPending
	}
	stored.Title = exp.Title
	stored.Description = exp.Description
	stored.Amount = exp.Amount
	stored.Category = exp.Category
	return nil
}

func (m *mockExpenseRepository) Review(expenseID, reviewerID int64, status string, reviewedAt time.Time) (*expense.Expense, error) {
	exp, ok := m.expenses[expenseID]
	if !ok {
		return nil, internal.ErrExpenseNotFound
	}
	if exp.Status != expense.StatusPending {
		return nil, internal.ErrExpenseReviewConflict
	}
	exp.Status = status
	exp.ReviewedByID = &reviewerID
	exp.DateReviewed = &reviewedAt
	return exp, nil
}

func (m *mockExpenseRepository) Delete(id int64) error {
	delete(m.expenses, id)
	return nil
}

type mockDirectory struct {
	ids map[int64]bool
	err error
}

func (m *mockDirectory) Exists(id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.ids[id], nil
}

var _ = Describe("Expense Service", func() {
	var (
		repo        *mockExpenseRepository
		departments *mockDirectory
		users       *mockDirectory
		svc         *expense.Service
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	validDTO := func() expense.CreateExpenseDTO {
		return expense.CreateExpenseDTO{
			Title:        "Team offsite flights",
			Description:  "Return flights for the planning offsite",
			Amount:       decimal.NewFromFloat(420.50),
			Category:     "travel",
			DepartmentID: 1,
		}
	}

	BeforeEach(func() {
		repo = newMockExpenseRepository()
		departments = &mockDirectory{ids: map[int64]bool{1: true}}
		users = &mockDirectory{ids: map[int64]bool{10: true, 11: true}}
		svc = expense.NewService(repo, departments, users, testLogger)
	})

	Describe("Submit", func() {
		It("creates a pending expense with the submission date set", func() {
			exp, err := svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.ID).To(BeNumerically(">", 0))
			Expect(exp.Status).To(Equal(expense.StatusPending))
			Expect(exp.SubmittedByID).To(Equal(int64(10)))
			Expect(exp.Category).To(Equal(expense.CategoryTravel))
			Expect(exp.DateSubmitted).To(BeTemporally("~", time.Now(), time.Second))
			Expect(exp.DateReviewed).To(BeNil())
			Expect(exp.ReviewedByID).To(BeNil())
		})

		It("rejects a non-positive amount", func() {
			dto := validDTO()
			dto.Amount = decimal.Zero

			_, err := svc.Submit(10, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects an unknown category", func() {
			dto := validDTO()
			dto.Category = "YACHTS"

			_, err := svc.Submit(10, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a department that does not exist", func() {
			dto := validDTO()
			dto.DepartmentID = 99

			_, err := svc.Submit(10, dto)
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("Update", func() {
		var pending *expense.Expense

		BeforeEach(func() {
			var err error
			pending, err = svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("replaces the editable fields of a pending expense", func() {
			updated, err := svc.Update(pending.ID, expense.UpdateExpenseDTO{
				Title:    "Team offsite flights and hotel",
				Amount:   decimal.NewFromInt(900),
				Category: "TRAVEL",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Team offsite flights and hotel"))
			Expect(updated.Amount.Equal(decimal.NewFromInt(900))).To(BeTrue())
			Expect(updated.Status).To(Equal(expense.StatusPending))
			Expect(updated.SubmittedByID).To(Equal(int64(10)))
		})

		It("refuses to edit a reviewed expense", func() {
			_, err := svc.Approve(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Update(pending.ID, expense.UpdateExpenseDTO{
				Title:    "Sneaky edit",
				Amount:   decimal.NewFromInt(9000),
				Category: "TRAVEL",
			})
			Expect(err).To(Equal(internal.ErrExpenseNotPending))
		})

		It("returns not found for a missing expense", func() {
			_, err := svc.Update(999, expense.UpdateExpenseDTO{
				Title:    "Ghost",
				Amount:   decimal.NewFromInt(1),
				Category: "OTHER",
			})
			Expect(err).To(Equal(internal.ErrExpenseNotFound))
		})

		It("surfaces a repository failure as an internal error", func() {
			repo.getError = errors.New("connection refused")

			_, err := svc.Update(pending.ID, expense.UpdateExpenseDTO{
				Title:    "Team offsite flights",
				Amount:   decimal.NewFromInt(100),
				Category: "TRAVEL",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Approve", func() {
		var pending *expense.Expense

		BeforeEach(func() {
			var err error
			pending, err = svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("transitions a pending expense and records the reviewer", func() {
			approved, err := svc.Approve(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(expense.StatusApproved))
			Expect(approved.ReviewedByID).NotTo(BeNil())
			Expect(*approved.ReviewedByID).To(Equal(int64(11)))
			Expect(approved.DateReviewed).NotTo(BeNil())
		})

		It("refuses a second review of the same expense", func() {
			_, err := svc.Approve(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Approve(pending.ID, 11)
			Expect(err).To(Equal(internal.ErrExpenseAlreadyReviewed))
		})

		It("returns not found for a missing expense", func() {
			_, err := svc.Approve(999, 11)
			Expect(err).To(Equal(internal.ErrExpenseNotFound))
		})
	})

	Describe("Deny", func() {
		var pending *expense.Expense

		BeforeEach(func() {
			var err error
			pending, err = svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("transitions a pending expense to denied", func() {
			denied, err := svc.Deny(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())
			Expect(denied.Status).To(Equal(expense.StatusDenied))
			Expect(*denied.ReviewedByID).To(Equal(int64(11)))
		})

		It("requires the reviewer to exist", func() {
			_, err := svc.Deny(pending.ID, 404)
			Expect(err).To(Equal(internal.ErrReviewerNotFound))

			exp, err := svc.GetByID(pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Status).To(Equal(expense.StatusPending))
		})

		It("refuses to deny an approved expense", func() {
			_, err := svc.Approve(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Deny(pending.ID, 11)
			Expect(err).To(Equal(internal.ErrExpenseAlreadyReviewed))
		})

		It("fails when the reviewer lookup errors", func() {
			users.err = errors.New("directory down")

			_, err := svc.Deny(pending.ID, 11)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Delete", func() {
		It("removes an expense in any state", func() {
			pending, err := svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Approve(pending.ID, 11)
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Delete(pending.ID)).To(Succeed())

			_, err = svc.GetByID(pending.ID)
			Expect(err).To(Equal(internal.ErrExpenseNotFound))
		})

		It("returns not found for a missing expense", func() {
			Expect(svc.Delete(999)).To(Equal(internal.ErrExpenseNotFound))
		})
	})

	Describe("GetByID", func() {
		It("surfaces a repository failure as an internal error, not not-found", func() {
			repo.getError = errors.New("connection refused")

			_, err := svc.GetByID(1)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("GetByCategory", func() {
		It("returns an empty list for an unknown category", func() {
			_, err := svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())

			expenses, err := svc.GetByCategory("YACHTS")
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(BeEmpty())
		})

		It("normalizes the category before filtering", func() {
			_, err := svc.Submit(10, validDTO())
			Expect(err).NotTo(HaveOccurred())

			expenses, err := svc.GetByCategory("  travel ")
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
		})
	})

	Describe("BiggestThisMonth", func() {
		It("queries the current calendar month window", func() {
			repo.biggest = &expense.Expense{ID: 7, Amount: decimal.NewFromInt(500)}

			exp, err := svc.BiggestThisMonth()
			Expect(err).NotTo(HaveOccurred())
			Expect(exp.ID).To(Equal(int64(7)))

			now := time.Now()
			expectedFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			Expect(repo.biggestFrom).To(Equal(expectedFrom))
			Expect(repo.biggestTo).To(Equal(expectedFrom.AddDate(0, 1, 0)))
		})

		It("returns nil when the month has no expenses", func() {
			exp, err := svc.BiggestThisMonth()
			Expect(err).NotTo(HaveOccurred())
			Expect(exp).To(BeNil())
		})
	})

	Describe("listing", func() {
		It("never returns a nil slice", func() {
			expenses, err := svc.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).NotTo(BeNil())
			Expect(expenses).To(BeEmpty())

			expenses, err = svc.GetBySubmitter(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).NotTo(BeNil())
		})
	})
})
