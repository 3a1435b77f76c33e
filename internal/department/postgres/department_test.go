package postgres_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
	departmentPostgres "github.com/fintech-enterprise/expense-tracker/internal/department/postgres"
)

func TestDepartmentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DepartmentRepository Suite")
}

var _ = Describe("Department Repository", func() {
	var (
		db   *gorm.DB
		repo *departmentPostgres.DepartmentRepository
	)

	create := func(name string, budget int64) *department.Department {
		dept := &department.Department{
			Name:         name,
			YearlyBudget: decimal.NewFromInt(budget),
			SpentAmount:  decimal.Zero,
		}
		Expect(repo.Create(dept)).To(Succeed())
		return dept
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&department.Department{})).To(Succeed())

		repo = departmentPostgres.NewDepartmentRepository(db)
	})

	It("round-trips a department", func() {
		dept := create("Engineering", 1000)

		got, err := repo.GetByID(dept.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Engineering"))
		Expect(got.YearlyBudget.Equal(decimal.NewFromInt(1000))).To(BeTrue())
	})

	It("maps a missing id to the not found error", func() {
		_, err := repo.GetByID(999)
		Expect(err).To(Equal(internal.ErrDepartmentNotFound))
	})

	It("enforces unique names", func() {
		create("Engineering", 1000)

		dup := &department.Department{
			Name:         "Engineering",
			YearlyBudget: decimal.NewFromInt(500),
			SpentAmount:  decimal.Zero,
		}
		Expect(repo.Create(dup)).NotTo(Succeed())
	})

	It("lists departments by name", func() {
		create("Sales", 500)
		create("Engineering", 1000)

		all, err := repo.GetAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all[0].Name).To(Equal("Engineering"))
		Expect(all[1].Name).To(Equal("Sales"))
	})

	Describe("Update", func() {
		It("rewrites name and budget", func() {
			dept := create("Engineering", 1000)

			dept.Name = "Platform Engineering"
			dept.YearlyBudget = decimal.NewFromInt(2000)
			Expect(repo.Update(dept)).To(Succeed())

			got, err := repo.GetByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Platform Engineering"))
			Expect(got.YearlyBudget.Equal(decimal.NewFromInt(2000))).To(BeTrue())
		})

		It("maps a missing department to the not found error", func() {
			ghost := &department.Department{ID: 999, Name: "Ghost", YearlyBudget: decimal.NewFromInt(1)}
			Expect(repo.Update(ghost)).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("keeps spend recorded while the caller held a stale copy", func() {
			dept := create("Engineering", 1000)

			stale, err := repo.GetByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RecordSpend(dept.ID, decimal.NewFromInt(500))).To(Succeed())

			stale.YearlyBudget = decimal.NewFromInt(2000)
			Expect(repo.Update(stale)).To(Succeed())

			got, err := repo.GetByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.YearlyBudget.Equal(decimal.NewFromInt(2000))).To(BeTrue())
			Expect(got.SpentAmount.Equal(decimal.NewFromInt(500))).To(BeTrue())
		})
	})

	Describe("RecordSpend", func() {
		It("accumulates spend on the row", func() {
			dept := create("Engineering", 1000)

			Expect(repo.RecordSpend(dept.ID, decimal.NewFromInt(100))).To(Succeed())
			Expect(repo.RecordSpend(dept.ID, decimal.NewFromInt(150))).To(Succeed())

			got, err := repo.GetByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SpentAmount.Equal(decimal.NewFromInt(250))).To(BeTrue())
		})

		It("fails for a missing department", func() {
			err := repo.RecordSpend(999, decimal.NewFromInt(100))
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("Exists", func() {
		It("reports presence and absence", func() {
			dept := create("Engineering", 1000)

			ok, err := repo.Exists(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.Exists(999)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
