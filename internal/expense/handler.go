package expense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fintech-enterprise/expense-tracker/internal/auth"
	"github.com/fintech-enterprise/expense-tracker/internal/transport"
	"github.com/fintech-enterprise/expense-tracker/pkg/logger"
)

type ServiceAPI interface {
	Submit(callerID int64, dto CreateExpenseDTO) (*Expense, error)
	Update(expenseID int64, dto UpdateExpenseDTO) (*Expense, error)
	Approve(expenseID, reviewerID int64) (*Expense, error)
	Deny(expenseID, reviewerID int64) (*Expense, error)
	Delete(expenseID int64) error
	GetByID(expenseID int64) (*Expense, error)
	GetAll() ([]*Expense, error)
	GetBySubmitter(userID int64) ([]*Expense, error)
	GetByDepartment(departmentID int64) ([]*Expense, error)
	GetByCategory(category string) ([]*Expense, error)
	BiggestThisMonth() (*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.Submit(caller.ID, dto)
	if err != nil {
		h.Logger.Error("SubmitExpense: service error", "error", err, "user_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitExpense: expense created",
		"expense_id", exp.ID,
		"user_id", caller.ID,
		"amount", exp.Amount)

	h.WriteJSON(w, http.StatusCreated, exp)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exp, err := h.Service.Update(expenseID, dto)
	if err != nil {
		h.Logger.Error("UpdateExpense: service error", "error", err, "expense_id", expenseID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(expenseID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	exp, err := h.Service.GetByID(expenseID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) GetAllExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Service.GetAll()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) GetExpensesByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	expenses, err := h.Service.GetBySubmitter(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) GetExpensesByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := h.pathID(w, r, "deptId")
	if !ok {
		return
	}

	expenses, err := h.Service.GetByDepartment(departmentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) GetExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	expenses, err := h.Service.GetByCategory(category)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	exp, err := h.Service.Approve(expenseID, caller.ID)
	if err != nil {
		h.Logger.Error("ApproveExpense: service error", "error", err, "expense_id", expenseID, "reviewer_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveExpense: expense approved", "expense_id", expenseID, "reviewer_id", caller.ID)
	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) DenyExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	reviewerID, ok := h.pathID(w, r, "reviewerId")
	if !ok {
		return
	}

	exp, err := h.Service.Deny(expenseID, reviewerID)
	if err != nil {
		h.Logger.Error("DenyExpense: service error", "error", err, "expense_id", expenseID, "reviewer_id", reviewerID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("DenyExpense: expense denied", "expense_id", expenseID, "reviewer_id", reviewerID)
	h.WriteJSON(w, http.StatusOK, exp)
}

// BiggestExpenseThisMonth answers 204 when no expense was submitted in the
// current calendar month.
func (h *Handler) BiggestExpenseThisMonth(w http.ResponseWriter, r *http.Request) {
	exp, err := h.Service.BiggestThisMonth()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if exp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
