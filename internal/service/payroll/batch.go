package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// CreateBatch fans out one draft record per eligible employee. The batch
// header and every member record are created in a single transaction: either
// the whole batch exists afterwards or none of it does.
func (s *PayrollServiceImpl) CreateBatch(ctx context.Context, companyID, actorID string, req payroll.CreateBatchRequest) (payroll.BatchDetailResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BatchDetailResponse{}, err
	}

	eligible, err := s.employeeRepo.ListEligible(ctx, companyID, req.BusinessID)
	if err != nil {
		return payroll.BatchDetailResponse{}, fmt.Errorf("failed to list eligible employees: %w", err)
	}

	var employees []employee.Employee
	if len(req.EmployeeIDs) > 0 {
		requested := make(map[string]bool, len(req.EmployeeIDs))
		for _, id := range req.EmployeeIDs {
			requested[id] = true
		}
		for _, emp := range eligible {
			if requested[emp.ID] {
				employees = append(employees, emp)
			}
		}
	} else {
		employees = eligible
	}

	if len(employees) == 0 {
		return payroll.BatchDetailResponse{}, payroll.ErrNoEligibleEmployees
	}

	periodStart, periodEnd := req.Period()

	salaries := make([]decimal.Decimal, 0, len(employees))
	for _, emp := range employees {
		salaries = append(salaries, *emp.BaseSalary)
	}
	totalGross := money.Sum(salaries...)

	batch := payroll.PayrollBatch{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		BusinessID:       req.BusinessID,
		Name:             req.Name,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		TotalEmployees:   len(employees),
		TotalGrossAmount: totalGross,
		TotalDeductions:  decimal.Zero,
		TotalNetAmount:   totalGross, // net = gross, no deductions or bonuses at creation
		Status:           payroll.BatchStatusDraft,
		FundingSource:    req.FundingSource,
		Notes:            req.Notes,
		CreatedBy:        actorID,
	}

	var createdBatch payroll.PayrollBatch
	var createdRecords []payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		createdBatch, err = s.batchRepo.Create(txCtx, batch)
		if err != nil {
			return err
		}

		for _, emp := range employees {
			salary := *emp.BaseSalary
			record := payroll.PayrollRecord{
				ID:          uuid.NewString(),
				CompanyID:   companyID,
				EmployeeID:  emp.ID,
				BatchID:     &createdBatch.ID,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				GrossAmount: salary,
				Deductions:  decimal.Zero,
				Bonuses:     decimal.Zero,
				NetAmount:   salary,
				Status:      payroll.RecordStatusDraft,
				CreatedBy:   actorID,
			}

			created, err := s.recordRepo.Create(txCtx, record)
			if err != nil {
				return fmt.Errorf("failed to create record for employee %s: %w", emp.ID, err)
			}
			created.EmployeeName = &emp.FullName
			created.Department = emp.Department
			createdRecords = append(createdRecords, created)
		}

		return nil
	})
	if err != nil {
		return payroll.BatchDetailResponse{}, err
	}

	return payroll.BatchDetailResponse{
		BatchResponse:   mapToBatchResponse(createdBatch),
		Records:         mapToRecordResponses(createdRecords),
		RecordsByStatus: countRecordsByStatus(createdRecords),
	}, nil
}

func (s *PayrollServiceImpl) GetBatch(ctx context.Context, companyID, id string) (payroll.BatchDetailResponse, error) {
	batch, err := s.batchRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchDetailResponse{}, err
	}

	records, err := s.recordRepo.ListByBatchID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchDetailResponse{}, err
	}

	return payroll.BatchDetailResponse{
		BatchResponse:   mapToBatchResponse(batch),
		Records:         mapToRecordResponses(records),
		RecordsByStatus: countRecordsByStatus(records),
	}, nil
}

func (s *PayrollServiceImpl) ListBatches(ctx context.Context, companyID string, filter payroll.BatchFilter) (payroll.ListBatchesResponse, error) {
	batches, totalCount, err := s.batchRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListBatchesResponse{}, err
	}

	data := make([]payroll.BatchResponse, 0, len(batches))
	for _, b := range batches {
		data = append(data, mapToBatchResponse(b))
	}

	return payroll.ListBatchesResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// SubmitBatch advances the batch and all of its draft member records to
// pending approval in one transaction.
func (s *PayrollServiceImpl) SubmitBatch(ctx context.Context, companyID, id string) (payroll.BatchResponse, error) {
	batch, err := s.batchRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchResponse{}, err
	}
	if batch.Status != payroll.BatchStatusDraft {
		return payroll.BatchResponse{}, fmt.Errorf("cannot submit batch in status %q: %w", batch.Status, payroll.ErrInvalidStatus)
	}

	batch.Status = payroll.BatchStatusPendingApproval
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.batchRepo.Update(txCtx, batch, payroll.BatchStatusDraft); err != nil {
			return err
		}
		_, err := s.recordRepo.BulkUpdateStatusByBatch(txCtx, companyID, id,
			[]payroll.RecordStatus{payroll.RecordStatusDraft},
			payroll.RecordStatusPendingApproval, nil, nil)
		return err
	})
	if err != nil {
		return payroll.BatchResponse{}, err
	}

	return mapToBatchResponse(batch), nil
}

// ApproveBatch advances the batch and all of its pending member records to
// approved in one transaction, stamping the same approver and timestamp on
// the batch and on every affected record.
func (s *PayrollServiceImpl) ApproveBatch(ctx context.Context, companyID, actorID, id string) (payroll.BatchResponse, error) {
	batch, err := s.batchRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchResponse{}, err
	}
	if batch.Status != payroll.BatchStatusPendingApproval {
		return payroll.BatchResponse{}, fmt.Errorf("cannot approve batch in status %q: %w", batch.Status, payroll.ErrInvalidStatus)
	}

	now := time.Now()
	batch.Status = payroll.BatchStatusApproved
	batch.ApprovedBy = &actorID
	batch.ApprovedAt = &now
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.batchRepo.Update(txCtx, batch, payroll.BatchStatusPendingApproval); err != nil {
			return err
		}
		_, err := s.recordRepo.BulkUpdateStatusByBatch(txCtx, companyID, id,
			[]payroll.RecordStatus{payroll.RecordStatusPendingApproval},
			payroll.RecordStatusApproved, &actorID, &now)
		return err
	})
	if err != nil {
		return payroll.BatchResponse{}, err
	}

	return mapToBatchResponse(batch), nil
}
