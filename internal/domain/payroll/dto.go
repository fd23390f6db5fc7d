package payroll

import (
	"time"

	"github.com/paystream-hq/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ========== RECORD DTOs ==========

type CreateRecordRequest struct {
	EmployeeID       string                     `json:"employee_id"`
	PeriodStart      string                     `json:"period_start"` // "2006-01-02", inclusive
	PeriodEnd        string                     `json:"period_end"`   // "2006-01-02", exclusive
	GrossAmount      decimal.Decimal            `json:"gross_amount"`
	Deductions       decimal.Decimal            `json:"deductions"`
	Bonuses          decimal.Decimal            `json:"bonuses"`
	DeductionsDetail map[string]decimal.Decimal `json:"deductions_detail,omitempty"`
	BonusesDetail    map[string]decimal.Decimal `json:"bonuses_detail,omitempty"`
	Notes            *string                    `json:"notes,omitempty"`
}

func (r *CreateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID == "" {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if startOK && endOK {
		start, end := r.Period()
		if !end.After(start) {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be after period_start"})
		}
	}
	if r.GrossAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_amount", Message: "must be non-negative"})
	}
	if r.Deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "must be non-negative"})
	}
	if r.Bonuses.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonuses", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the parsed [start, end) pair. Call Validate first.
func (r *CreateRecordRequest) Period() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, r.PeriodStart)
	end, _ := time.Parse(dateLayout, r.PeriodEnd)
	return start, end
}

type UpdateRecordRequest struct {
	ID               string                     `json:"-"`
	GrossAmount      *decimal.Decimal           `json:"gross_amount,omitempty"`
	Deductions       *decimal.Decimal           `json:"deductions,omitempty"`
	Bonuses          *decimal.Decimal           `json:"bonuses,omitempty"`
	DeductionsDetail map[string]decimal.Decimal `json:"deductions_detail,omitempty"`
	BonusesDetail    map[string]decimal.Decimal `json:"bonuses_detail,omitempty"`
	Notes            *string                    `json:"notes,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.GrossAmount != nil && r.GrossAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "gross_amount", Message: "must be non-negative"})
	}
	if r.Deductions != nil && r.Deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "must be non-negative"})
	}
	if r.Bonuses != nil && r.Bonuses.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonuses", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FailRecordRequest struct {
	Reason string `json:"reason"`
}

func (r *FailRecordRequest) Validate() error {
	if r.Reason == "" {
		return validator.ValidationErrors{{Field: "reason", Message: "is required"}}
	}
	return nil
}

type RecordFilter struct {
	Status     *string `json:"status,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	BatchID    *string `json:"batch_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type RecordResponse struct {
	ID               string                     `json:"id"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeName     *string                    `json:"employee_name,omitempty"`
	Department       *string                    `json:"department,omitempty"`
	BatchID          *string                    `json:"batch_id,omitempty"`
	PeriodStart      string                     `json:"period_start"`
	PeriodEnd        string                     `json:"period_end"`
	GrossAmount      decimal.Decimal            `json:"gross_amount"`
	Deductions       decimal.Decimal            `json:"deductions"`
	Bonuses          decimal.Decimal            `json:"bonuses"`
	NetAmount        decimal.Decimal            `json:"net_amount"`
	DeductionsDetail map[string]decimal.Decimal `json:"deductions_detail,omitempty"`
	BonusesDetail    map[string]decimal.Decimal `json:"bonuses_detail,omitempty"`
	Status           string                     `json:"status"`
	ApprovedBy       *string                    `json:"approved_by,omitempty"`
	ApprovedAt       *string                    `json:"approved_at,omitempty"`
	TransactionID    *string                    `json:"transaction_id,omitempty"`
	PaidAt           *string                    `json:"paid_at,omitempty"`
	FailureReason    *string                    `json:"failure_reason,omitempty"`
	Notes            *string                    `json:"notes,omitempty"`
}

type ListRecordsResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ========== BATCH DTOs ==========

type CreateBatchRequest struct {
	BusinessID    string   `json:"business_id"`
	Name          string   `json:"name"`
	PeriodStart   string   `json:"period_start"`
	PeriodEnd     string   `json:"period_end"`
	EmployeeIDs   []string `json:"employee_ids,omitempty"` // Empty = all eligible employees
	FundingSource *string  `json:"funding_source,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

func (r *CreateBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BusinessID == "" {
		errs = append(errs, validator.ValidationError{Field: "business_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	startOK := validator.IsValidDate(r.PeriodStart)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "period_start", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	endOK := validator.IsValidDate(r.PeriodEnd)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if startOK && endOK {
		start, end := r.Period()
		if !end.After(start) {
			errs = append(errs, validator.ValidationError{Field: "period_end", Message: "must be after period_start"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the parsed [start, end) pair. Call Validate first.
func (r *CreateBatchRequest) Period() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, r.PeriodStart)
	end, _ := time.Parse(dateLayout, r.PeriodEnd)
	return start, end
}

type BatchFilter struct {
	Status     *string `json:"status,omitempty"`
	BusinessID *string `json:"business_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type BatchResponse struct {
	ID               string          `json:"id"`
	BusinessID       string          `json:"business_id"`
	Name             string          `json:"name"`
	PeriodStart      string          `json:"period_start"`
	PeriodEnd        string          `json:"period_end"`
	TotalEmployees   int             `json:"total_employees"`
	TotalGrossAmount decimal.Decimal `json:"total_gross_amount"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetAmount   decimal.Decimal `json:"total_net_amount"`
	Status           string          `json:"status"`
	ApprovedBy       *string         `json:"approved_by,omitempty"`
	ApprovedAt       *string         `json:"approved_at,omitempty"`
	ProcessedAt      *string         `json:"processed_at,omitempty"`
	CompletedAt      *string         `json:"completed_at,omitempty"`
	FundingSource    *string         `json:"funding_source,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

type BatchDetailResponse struct {
	BatchResponse
	Records         []RecordResponse `json:"records"`
	RecordsByStatus map[string]int   `json:"records_by_status"`
}

type ListBatchesResponse struct {
	Data       []BatchResponse `json:"data"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}

// ========== PAYMENT RUN DTOs ==========

// RecordOutcome is the per-record result of one batch payment run.
type RecordOutcome struct {
	RecordID      string  `json:"record_id"`
	EmployeeID    string  `json:"employee_id"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Error         *string `json:"error,omitempty"`
}

type BatchPaymentResult struct {
	BatchID     string          `json:"batch_id"`
	BatchStatus string          `json:"batch_status"`
	Successful  int             `json:"successful"`
	Failed      int             `json:"failed"`
	Outcomes    []RecordOutcome `json:"outcomes"`
}

// ========== SUMMARY DTOs ==========

// UnassignedDepartment buckets paid records of employees without a department.
const UnassignedDepartment = "Unassigned"

type YearlySummaryResponse struct {
	Year         int                        `json:"year"`
	TotalPaid    decimal.Decimal            `json:"total_paid"`
	ByMonth      map[int]decimal.Decimal    `json:"by_month"`  // keys 0-11
	ByDepartment map[string]decimal.Decimal `json:"by_department"`
	TotalPending decimal.Decimal            `json:"total_pending"`
}
