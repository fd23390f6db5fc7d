package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatus enum
type RecordStatus string

const (
	RecordStatusDraft           RecordStatus = "draft"
	RecordStatusPendingApproval RecordStatus = "pending_approval"
	RecordStatusApproved        RecordStatus = "approved"
	RecordStatusProcessing      RecordStatus = "processing"
	RecordStatusPaid            RecordStatus = "paid"
	RecordStatusFailed          RecordStatus = "failed"
	RecordStatusCancelled       RecordStatus = "cancelled"
)

// IsActive reports whether the record still counts toward the
// one-record-per-employee-per-period invariant.
func (s RecordStatus) IsActive() bool {
	return s != RecordStatusCancelled && s != RecordStatusFailed
}

// IsEditable reports whether amounts, breakdowns and notes may still change.
func (s RecordStatus) IsEditable() bool {
	return s == RecordStatusDraft || s == RecordStatusPendingApproval
}

// IsCancellable reports whether the record may still be cancelled.
func (s RecordStatus) IsCancellable() bool {
	return s != RecordStatusPaid && s != RecordStatusCancelled
}

// BatchStatus enum. Batches are never cancelled directly, only their records.
type BatchStatus string

const (
	BatchStatusDraft           BatchStatus = "draft"
	BatchStatusPendingApproval BatchStatus = "pending_approval"
	BatchStatusApproved        BatchStatus = "approved"
	BatchStatusProcessing      BatchStatus = "processing"
	BatchStatusPaid            BatchStatus = "paid"
	BatchStatusFailed          BatchStatus = "failed"
)

// PayrollRecord - one employee, one pay period [PeriodStart, PeriodEnd).
// Terminal records (paid/failed/cancelled) are retained for audit, never deleted.
type PayrollRecord struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	BatchID          *string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	GrossAmount      decimal.Decimal
	Deductions       decimal.Decimal
	Bonuses          decimal.Decimal
	NetAmount        decimal.Decimal
	DeductionsDetail map[string]decimal.Decimal // {"BPJS": 100000}
	BonusesDetail    map[string]decimal.Decimal // {"Holiday Bonus": 500000}
	Status           RecordStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	TransactionID    *string
	PaidAt           *time.Time
	FailureReason    *string
	Notes            *string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	Department   *string
}

// PayrollBatch - a named grouping of records processed together.
// Totals are sums over member records at creation time.
type PayrollBatch struct {
	ID               string
	CompanyID        string
	BusinessID       string
	Name             string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TotalEmployees   int
	TotalGrossAmount decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalNetAmount   decimal.Decimal
	Status           BatchStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	ProcessedAt      *time.Time
	CompletedAt      *time.Time
	FundingSource    *string
	Notes            *string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
