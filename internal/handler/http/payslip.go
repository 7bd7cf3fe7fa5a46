package http

import (
	"net/http"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/response"
	payslipservice "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/payslip"
	"github.com/go-chi/chi/v5"
)

type PayslipHandler interface {
	GetPayslip(w http.ResponseWriter, r *http.Request)
	ListByRun(w http.ResponseWriter, r *http.Request)
	ListByEmployee(w http.ResponseWriter, r *http.Request)
}

type payslipHandlerImpl struct {
	payslipService *payslipservice.Service
}

func NewPayslipHandler(payslipService *payslipservice.Service) PayslipHandler {
	return &payslipHandlerImpl{payslipService: payslipService}
}

func (h *payslipHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payslip ID is required", nil)
		return
	}

	result, err := h.payslipService.GetPayslip(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) ListByRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payslipService.ListByRun(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payslipHandlerImpl) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.payslipService.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
