package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RecordRepository defines data access for payroll records.
// All methods include companyID to prevent cross-company data access.
type RecordRepository interface {
	Create(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetByID(ctx context.Context, companyID string, id string) (PayrollRecord, error)
	List(ctx context.Context, companyID string, filter RecordFilter) ([]PayrollRecord, int64, error)
	ListByBatchID(ctx context.Context, companyID string, batchID string) ([]PayrollRecord, error)

	// HasActiveForPeriod reports whether a non-cancelled, non-failed record
	// already exists for the exact (employee, period) pair.
	HasActiveForPeriod(ctx context.Context, companyID string, employeeID string, periodStart, periodEnd time.Time) (bool, error)

	// Update persists the record's mutable fields, guarded by the status the
	// caller last observed. A concurrent status change means zero rows match
	// and the update fails with ErrInvalidStatus, which is what serializes
	// competing transitions on the same record.
	Update(ctx context.Context, record PayrollRecord, expected RecordStatus) error

	// BulkUpdateStatusByBatch moves every member record whose status is in
	// from to to, stamping approval metadata when provided. Used inside the
	// batch-wide transactions.
	BulkUpdateStatusByBatch(ctx context.Context, companyID string, batchID string, from []RecordStatus, to RecordStatus, approvedBy *string, approvedAt *time.Time) (int64, error)

	// Summary reads. Business scoping goes through the employee directory join.
	ListPaidInYear(ctx context.Context, companyID string, businessID string, year int) ([]PayrollRecord, error)
	ListPendingByBusiness(ctx context.Context, companyID string, businessID string) ([]PayrollRecord, error)
}

// BatchRepository defines data access for payroll batches.
type BatchRepository interface {
	Create(ctx context.Context, batch PayrollBatch) (PayrollBatch, error)
	GetByID(ctx context.Context, companyID string, id string) (PayrollBatch, error)
	List(ctx context.Context, companyID string, filter BatchFilter) ([]PayrollBatch, int64, error)

	// Update persists the batch's mutable fields guarded by the last observed
	// status, same discipline as RecordRepository.Update.
	Update(ctx context.Context, batch PayrollBatch, expected BatchStatus) error
}

// TxManager runs fn inside one atomic storage transaction. Repository calls
// made with the ctx passed to fn join that transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentExecutor moves funds to an employee's wallet. The returned id is the
// gateway transaction identifier stamped onto the paid record. An error's
// message becomes the record's failure reason.
type PaymentExecutor interface {
	Disburse(ctx context.Context, employeeID string, amount decimal.Decimal, walletID string) (string, error)
}
