package expense_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fintech-enterprise/expense-tracker/internal/auth"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
	departmentPostgres "github.com/fintech-enterprise/expense-tracker/internal/department/postgres"
	"github.com/fintech-enterprise/expense-tracker/internal/expense"
	expensePostgres "github.com/fintech-enterprise/expense-tracker/internal/expense/postgres"
	"github.com/fintech-enterprise/expense-tracker/internal/user"
	userPostgres "github.com/fintech-enterprise/expense-tracker/internal/user/postgres"
)

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}

var _ = Describe("Expense Handler Integration", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		caller   *auth.User
		dept     *department.Department
		reviewer *user.User
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	withCaller := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), caller)))
		})
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&department.Department{}, &user.User{}, &expense.Expense{})).To(Succeed())

		dept = &department.Department{
			Name:         "Engineering",
			YearlyBudget: decimal.NewFromInt(1000),
			SpentAmount:  decimal.Zero,
		}
		Expect(db.Create(dept).Error).To(Succeed())

		reviewer = &user.User{Username: "manager", PasswordHash: "x", Role: auth.RoleManager}
		Expect(db.Create(reviewer).Error).To(Succeed())

		caller = &auth.User{ID: reviewer.ID, Username: reviewer.Username, Role: reviewer.Role}

		repo := expensePostgres.NewExpenseRepository(db)
		users := userPostgres.NewUserRepository(db)
		departments := departmentPostgres.NewDepartmentRepository(db)
		svc := expense.NewService(repo, departments, users, testLogger)
		handler := expense.NewHandler(svc)

		router = chi.NewRouter()
		router.Use(withCaller)
		router.Post("/expenses/submit", handler.SubmitExpense)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Patch("/expenses/{id}/approve", handler.ApproveExpense)
		router.Patch("/expenses/{id}/deny/{reviewerId}", handler.DenyExpense)
		router.Get("/expenses/category/{category}", handler.GetExpensesByCategory)
		router.Get("/expenses/insight/biggest-this-month", handler.BiggestExpenseThisMonth)
	})

	submit := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/expenses/submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("submits an expense and returns it pending", func() {
		w := submit(`{"title":"Flights","amount":"300.00","category":"TRAVEL","department_id":` + jsonID(dept.ID) + `}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Status).To(Equal(expense.StatusPending))
		Expect(created.SubmittedByID).To(Equal(caller.ID))
		Expect(created.DateSubmitted).To(BeTemporally("~", time.Now(), time.Minute))
	})

	It("rejects an invalid payload with 400", func() {
		w := submit(`{"title":"","amount":"300.00","category":"TRAVEL","department_id":` + jsonID(dept.ID) + `}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("approves through the HTTP surface and charges the budget", func() {
		w := submit(`{"title":"Flights","amount":"300.00","category":"TRAVEL","department_id":` + jsonID(dept.ID) + `}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		req := httptest.NewRequest(http.MethodPatch, "/expenses/"+jsonID(created.ID)+"/approve", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var approved expense.Expense
		Expect(json.NewDecoder(rec.Body).Decode(&approved)).To(Succeed())
		Expect(approved.Status).To(Equal(expense.StatusApproved))
		Expect(*approved.ReviewedByID).To(Equal(caller.ID))

		var d department.Department
		Expect(db.First(&d, dept.ID).Error).To(Succeed())
		Expect(d.SpentAmount.Equal(decimal.NewFromInt(300))).To(BeTrue())
	})

	It("answers 400 on a second review", func() {
		w := submit(`{"title":"Flights","amount":"300.00","category":"TRAVEL","department_id":` + jsonID(dept.ID) + `}`)
		var created expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		req := httptest.NewRequest(http.MethodPatch, "/expenses/"+jsonID(created.ID)+"/approve", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))

		req = httptest.NewRequest(http.MethodPatch, "/expenses/"+jsonID(created.ID)+"/deny/"+jsonID(reviewer.ID), nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 404 when denying with an unknown reviewer", func() {
		w := submit(`{"title":"Flights","amount":"300.00","category":"TRAVEL","department_id":` + jsonID(dept.ID) + `}`)
		var created expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		req := httptest.NewRequest(http.MethodPatch, "/expenses/"+jsonID(created.ID)+"/deny/999", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("returns an empty list for an unknown category", func() {
		req := httptest.NewRequest(http.MethodGet, "/expenses/category/YACHTS", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
	})

	It("answers 204 when the month has no expenses", func() {
		req := httptest.NewRequest(http.MethodGet, "/expenses/insight/biggest-this-month", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})
