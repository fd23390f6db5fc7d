package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	// Records
	CreateRecord(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	ListRecords(w http.ResponseWriter, r *http.Request)
	UpdateRecord(w http.ResponseWriter, r *http.Request)
	SubmitRecord(w http.ResponseWriter, r *http.Request)
	ApproveRecord(w http.ResponseWriter, r *http.Request)
	PayRecord(w http.ResponseWriter, r *http.Request)
	MarkRecordFailed(w http.ResponseWriter, r *http.Request)
	CancelRecord(w http.ResponseWriter, r *http.Request)

	// Batches
	CreateBatch(w http.ResponseWriter, r *http.Request)
	GetBatch(w http.ResponseWriter, r *http.Request)
	ListBatches(w http.ResponseWriter, r *http.Request)
	SubmitBatch(w http.ResponseWriter, r *http.Request)
	ApproveBatch(w http.ResponseWriter, r *http.Request)
	ProcessBatchPayments(w http.ResponseWriter, r *http.Request)

	// Summary
	GetYearlySummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// claimsFromRequest reads tenant and actor from the verified JWT claims.
func claimsFromRequest(r *http.Request) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) CreateRecord(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req payroll.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateRecord(r.Context(), companyID, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll record created", result)
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.GetRecord(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := payroll.RecordFilter{
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := r.URL.Query().Get("batch_id"); v != "" {
		filter.BatchID = &v
	}

	result, err := h.payrollService.ListRecords(r.Context(), companyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req payroll.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.payrollService.UpdateRecord(r.Context(), companyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.SubmitRecord(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveRecord(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.ApproveRecord(r.Context(), companyID, userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) PayRecord(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.PayRecord(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) MarkRecordFailed(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req payroll.FailRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.MarkRecordFailed(r.Context(), companyID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) CancelRecord(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.CancelRecord(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== BATCHES ==========

func (h *payrollHandlerImpl) CreateBatch(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req payroll.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreateBatch(r.Context(), companyID, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll batch created", result)
}

func (h *payrollHandlerImpl) GetBatch(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.GetBatch(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListBatches(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := payroll.BatchFilter{
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", 20),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("business_id"); v != "" {
		filter.BusinessID = &v
	}

	result, err := h.payrollService.ListBatches(r.Context(), companyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.SubmitBatch(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ApproveBatch(w http.ResponseWriter, r *http.Request) {
	companyID, userID, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.ApproveBatch(r.Context(), companyID, userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ProcessBatchPayments(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	result, err := h.payrollService.ProcessBatchPayments(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== SUMMARY ==========

func (h *payrollHandlerImpl) GetYearlySummary(w http.ResponseWriter, r *http.Request) {
	companyID, _, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	businessID := r.URL.Query().Get("business_id")
	if businessID == "" {
		response.BadRequest(w, "business_id is required", nil)
		return
	}
	year := parseIntQuery(r, "year", time.Now().Year())

	result, err := h.payrollService.GetYearlySummary(r.Context(), companyID, businessID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
