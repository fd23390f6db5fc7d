package payroll

import "context"

// PayrollService is the application surface for payroll obligations.
// companyID scopes every call to one tenant; actorID is the authenticated
// user performing the operation.
type PayrollService interface {
	// Records
	CreateRecord(ctx context.Context, companyID, actorID string, req CreateRecordRequest) (RecordResponse, error)
	GetRecord(ctx context.Context, companyID, id string) (RecordResponse, error)
	ListRecords(ctx context.Context, companyID string, filter RecordFilter) (ListRecordsResponse, error)
	UpdateRecord(ctx context.Context, companyID string, req UpdateRecordRequest) (RecordResponse, error)
	SubmitRecord(ctx context.Context, companyID, id string) (RecordResponse, error)
	ApproveRecord(ctx context.Context, companyID, actorID, id string) (RecordResponse, error)
	PayRecord(ctx context.Context, companyID, id string) (RecordResponse, error)
	MarkRecordFailed(ctx context.Context, companyID, id string, req FailRecordRequest) (RecordResponse, error)
	CancelRecord(ctx context.Context, companyID, id string) (RecordResponse, error)

	// Batches
	CreateBatch(ctx context.Context, companyID, actorID string, req CreateBatchRequest) (BatchDetailResponse, error)
	GetBatch(ctx context.Context, companyID, id string) (BatchDetailResponse, error)
	ListBatches(ctx context.Context, companyID string, filter BatchFilter) (ListBatchesResponse, error)
	SubmitBatch(ctx context.Context, companyID, id string) (BatchResponse, error)
	ApproveBatch(ctx context.Context, companyID, actorID, id string) (BatchResponse, error)
	ProcessBatchPayments(ctx context.Context, companyID, id string) (BatchPaymentResult, error)

	// Summary
	GetYearlySummary(ctx context.Context, companyID, businessID string, year int) (YearlySummaryResponse, error)
}
