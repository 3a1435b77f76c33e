package department

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fintech-enterprise/expense-tracker/internal/transport"
	"github.com/fintech-enterprise/expense-tracker/pkg/logger"
)

type ServiceAPI interface {
	CreateDepartment(dto CreateDepartmentDTO) (*Department, error)
	GetDepartmentByID(id int64) (*Department, error)
	GetAllDepartments() ([]*Department, error)
	UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error)
	DeleteDepartment(id int64) error
	AddMember(departmentID, userID int64) (*Department, error)
	RemoveMember(departmentID, userID int64) (*Department, error)
	BudgetOverview() ([]BudgetOverview, error)
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

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.CreateDepartment(dto)
	if err != nil {
		h.Logger.Error("CreateDepartment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	dept, err := h.Service.GetDepartmentByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) GetAllDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Service.GetAllDepartments()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, depts)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.UpdateDepartment(id, dto)
	if err != nil {
		h.Logger.Error("UpdateDepartment: service error", "error", err, "department_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteDepartment(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := h.pathID(w, r, "departmentId")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	dept, err := h.Service.AddMember(departmentID, userID)
	if err != nil {
		h.Logger.Error("AddMember: service error", "error", err, "department_id", departmentID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	departmentID, ok := h.pathID(w, r, "departmentId")
	if !ok {
		return
	}
	userID, ok := h.pathID(w, r, "userId")
	if !ok {
		return
	}

	dept, err := h.Service.RemoveMember(departmentID, userID)
	if err != nil {
		h.Logger.Error("RemoveMember: service error", "error", err, "department_id", departmentID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) BudgetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.BudgetOverview()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, overview)
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
