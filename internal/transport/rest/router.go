package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/auth"
	"github.com/fintech-enterprise/expense-tracker/internal/department"
	"github.com/fintech-enterprise/expense-tracker/internal/expense"
	"github.com/fintech-enterprise/expense-tracker/internal/transport/middleware"
	"github.com/fintech-enterprise/expense-tracker/internal/transport/swagger"
	"github.com/fintech-enterprise/expense-tracker/internal/user"
)

// RegisterAllRoutes mounts the whole HTTP surface under /api/v1, with the
// swagger UI and the OpenAPI document served at the root.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	serverCfg internal.ServerConfig,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	expenseHandler *expense.Handler,
	departmentHandler *department.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	// Global middleware
	router.Use(middleware.CORS(serverCfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))

	// OpenAPI document and swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Everything below requires an authenticated caller.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/submit", expenseHandler.SubmitExpense)
				er.Get("/", expenseHandler.GetAllExpenses)
				er.Get("/{id}", expenseHandler.GetExpense)
				er.Put("/{id}", expenseHandler.UpdateExpense)
				er.Delete("/{id}", expenseHandler.DeleteExpense)

				er.Get("/user/{userId}", expenseHandler.GetExpensesByUser)
				er.Get("/department/{deptId}", expenseHandler.GetExpensesByDepartment)
				er.Get("/category/{category}", expenseHandler.GetExpensesByCategory)
				er.Get("/insight/biggest-this-month", expenseHandler.BiggestExpenseThisMonth)

				// Reviewing is for admins and managers only.
				er.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireReviewer())
					mr.Patch("/{id}/approve", expenseHandler.ApproveExpense)
					mr.Patch("/{id}/deny/{reviewerId}", expenseHandler.DenyExpense)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireReviewer())
					mr.Get("/", departmentHandler.GetAllDepartments)
					mr.Get("/{id}", departmentHandler.GetDepartment)
					mr.Get("/budget-overview", departmentHandler.BudgetOverview)
				})

				dr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", departmentHandler.CreateDepartment)
					ar.Put("/{id}", departmentHandler.UpdateDepartment)
					ar.Delete("/{id}", departmentHandler.DeleteDepartment)
					ar.Post("/{departmentId}/members/{userId}", departmentHandler.AddMember)
					ar.Delete("/{departmentId}/members/{userId}", departmentHandler.RemoveMember)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", userHandler.GetCurrentUser)

				ur.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", userHandler.CreateUser)
					ar.Get("/", userHandler.GetAllUsers)
					ar.Get("/{id}", userHandler.GetUser)
					ar.Put("/{id}", userHandler.UpdateUser)
					ar.Delete("/{id}", userHandler.DeleteUser)
				})
			})
		})
	})
}
