package http

import (
	"encoding/json"
	"net/http"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/domain/ledger"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/middleware"
	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/response"
	ledgerservice "github.com/User-2rxeg/Full-Hr-System-sub013/internal/service/ledger"
	"github.com/go-chi/chi/v5"
)

type LedgerHandler interface {
	// Disputes
	CreateDispute(w http.ResponseWriter, r *http.Request)
	GetDispute(w http.ResponseWriter, r *http.Request)
	ListDisputes(w http.ResponseWriter, r *http.Request)
	ReviewDispute(w http.ResponseWriter, r *http.Request)

	// Claims
	CreateClaim(w http.ResponseWriter, r *http.Request)
	GetClaim(w http.ResponseWriter, r *http.Request)
	ListClaims(w http.ResponseWriter, r *http.Request)
	ReviewClaim(w http.ResponseWriter, r *http.Request)

	// Refunds
	CreateRefund(w http.ResponseWriter, r *http.Request)
	GetRefund(w http.ResponseWriter, r *http.Request)
	ListRefunds(w http.ResponseWriter, r *http.Request)
	ApproveRefund(w http.ResponseWriter, r *http.Request)
	PayRefund(w http.ResponseWriter, r *http.Request)

	// Maintenance
	Reconcile(w http.ResponseWriter, r *http.Request)
	ScanIntegrity(w http.ResponseWriter, r *http.Request)
}

type ledgerHandlerImpl struct {
	ledgerService *ledgerservice.Service
}

func NewLedgerHandler(ledgerService *ledgerservice.Service) LedgerHandler {
	return &ledgerHandlerImpl{ledgerService: ledgerService}
}

// ========== DISPUTES ==========

func (h *ledgerHandlerImpl) CreateDispute(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ledgerService.CreateDispute(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Dispute created", result)
}

func (h *ledgerHandlerImpl) GetDispute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Dispute ID is required", nil)
		return
	}

	result, err := h.ledgerService.GetDispute(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ListDisputes(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ListDisputes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ReviewDispute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Dispute ID is required", nil)
		return
	}

	var req ledger.ReviewDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ledgerService.ReviewDispute(r.Context(), id, middleware.ActorID(r), middleware.ActorRole(r), req.Approve, req.Note)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Dispute review recorded", result)
}

// ========== CLAIMS ==========

func (h *ledgerHandlerImpl) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ledgerService.CreateClaim(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Claim created", result)
}

func (h *ledgerHandlerImpl) GetClaim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Claim ID is required", nil)
		return
	}

	result, err := h.ledgerService.GetClaim(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ListClaims(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ListClaims(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ReviewClaim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Claim ID is required", nil)
		return
	}

	var req ledger.ReviewClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ReviewerID = middleware.ActorID(r)

	result, err := h.ledgerService.ReviewClaim(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim reviewed", result)
}

// ========== REFUNDS ==========

func (h *ledgerHandlerImpl) CreateRefund(w http.ResponseWriter, r *http.Request) {
	var req ledger.CreateRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.ledgerService.CreateRefund(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Refund created", result)
}

func (h *ledgerHandlerImpl) GetRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Refund ID is required", nil)
		return
	}

	result, err := h.ledgerService.GetRefund(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ListRefunds(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ListRefunds(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *ledgerHandlerImpl) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Refund ID is required", nil)
		return
	}

	result, err := h.ledgerService.ApproveRefund(r.Context(), id, middleware.ActorID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Refund approved", result)
}

func (h *ledgerHandlerImpl) PayRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Refund ID is required", nil)
		return
	}

	var req ledger.PayRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ActorID = middleware.ActorID(r)

	result, err := h.ledgerService.PayRefund(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Refund paid", result)
}

// ========== MAINTENANCE ==========

func (h *ledgerHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ReconcileReferences(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconciliation complete", result)
}

func (h *ledgerHandlerImpl) ScanIntegrity(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerService.ScanIntegrity(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
