package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/payrollrun"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/middleware"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/response"
	payrollrunservice "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/payrollrun"
	"github.com/go-chi/chi/v5"
)

type PayrollRunHandler interface {
	// Runs
	ComputeRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	SubmitRun(w http.ResponseWriter, r *http.Request)
	ApproveRun(w http.ResponseWriter, r *http.Request)
	FreezeRun(w http.ResponseWriter, r *http.Request)
	UnfreezeRun(w http.ResponseWriter, r *http.Request)
	VoidRun(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)

	// Irregularities
	GetIrregularity(w http.ResponseWriter, r *http.Request)
	ResolveIrregularity(w http.ResponseWriter, r *http.Request)
}

type payrollRunHandlerImpl struct {
	runService *payrollrunservice.Service
}

func NewPayrollRunHandler(runService *payrollrunservice.Service) PayrollRunHandler {
	return &payrollRunHandlerImpl{runService: runService}
}

// ========== RUNS ==========

func (h *payrollRunHandlerImpl) ComputeRun(w http.ResponseWriter, r *http.Request) {
	var req payrollrun.ComputeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CreatedBy = middleware.ActorID(r)

	result, err := h.runService.ComputeRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if req.DryRun {
		response.SuccessWithMessage(w, "Dry run computed, nothing persisted", result)
		return
	}
	response.Created(w, "Payroll run generated", result)
}

func (h *payrollRunHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.runService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollRunHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := payrollrun.ListRunsFilter{
		PayrollAreaID: r.URL.Query().Get("payroll_area_id"),
		Status:        r.URL.Query().Get("status"),
		Page:          page,
		Limit:         limit,
	}

	runs, total, err := h.runService.ListRuns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, runs, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

// ========== LIFECYCLE ==========

func (h *payrollRunHandlerImpl) SubmitRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.runService.Submit(r.Context(), id, middleware.ActorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run submitted for approval", result)
}

func (h *payrollRunHandlerImpl) ApproveRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	var req payrollrun.ApproveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}
	req.Role = payrollrun.ApprovalRole(middleware.ActorRole(r))
	req.ActorID = middleware.ActorID(r)

	result, err := h.runService.Approve(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run approved", result)
}

func (h *payrollRunHandlerImpl) FreezeRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	payslips, err := h.runService.Freeze(r.Context(), id, middleware.ActorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run frozen, payslips issued", payslips)
}

func (h *payrollRunHandlerImpl) UnfreezeRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	var req payrollrun.UnfreezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ActorID = middleware.ActorID(r)

	result, err := h.runService.Unfreeze(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run unfrozen", result)
}

func (h *payrollRunHandlerImpl) VoidRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	var body struct {
		Reason *string `json:"reason,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.runService.Void(r.Context(), id, middleware.ActorID(r), body.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run voided", result)
}

func (h *payrollRunHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.runService.MarkPaid(r.Context(), id, middleware.ActorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Run marked as paid", result)
}

// ========== IRREGULARITIES ==========

func (h *payrollRunHandlerImpl) GetIrregularity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Irregularity ID is required", nil)
		return
	}

	result, err := h.runService.GetIrregularity(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollRunHandlerImpl) ResolveIrregularity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Irregularity ID is required", nil)
		return
	}

	var req payrollrun.ResolveIrregularityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ResolvedBy = middleware.ActorID(r)

	result, err := h.runService.ResolveIrregularity(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Irregularity resolved", result)
}
