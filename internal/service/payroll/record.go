package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/money"
)

func (s *PayrollServiceImpl) CreateRecord(ctx context.Context, companyID, actorID string, req payroll.CreateRecordRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, companyID, req.EmployeeID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if !emp.IsActive() {
		return payroll.RecordResponse{}, fmt.Errorf("employee %s: %w", emp.ID, employee.ErrEmployeeInactive)
	}

	periodStart, periodEnd := req.Period()

	exists, err := s.recordRepo.HasActiveForPeriod(ctx, companyID, req.EmployeeID, periodStart, periodEnd)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if exists {
		return payroll.RecordResponse{}, payroll.ErrDuplicateRecord
	}

	record := payroll.PayrollRecord{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		EmployeeID:       req.EmployeeID,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		GrossAmount:      req.GrossAmount,
		Deductions:       req.Deductions,
		Bonuses:          req.Bonuses,
		NetAmount:        money.Net(req.GrossAmount, req.Deductions, req.Bonuses),
		DeductionsDetail: req.DeductionsDetail,
		BonusesDetail:    req.BonusesDetail,
		Status:           payroll.RecordStatusDraft,
		Notes:            req.Notes,
		CreatedBy:        actorID,
	}

	created, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(created), nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, companyID, id string) (payroll.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, companyID string, filter payroll.RecordFilter) (payroll.ListRecordsResponse, error) {
	records, totalCount, err := s.recordRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListRecordsResponse{}, err
	}

	return payroll.ListRecordsResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) UpdateRecord(ctx context.Context, companyID string, req payroll.UpdateRecordRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	record, err := s.recordRepo.GetByID(ctx, companyID, req.ID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if !record.Status.IsEditable() {
		return payroll.RecordResponse{}, fmt.Errorf("cannot update record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}
	observed := record.Status

	if req.GrossAmount != nil {
		record.GrossAmount = *req.GrossAmount
	}
	if req.Deductions != nil {
		record.Deductions = *req.Deductions
	}
	if req.Bonuses != nil {
		record.Bonuses = *req.Bonuses
	}
	if req.DeductionsDetail != nil {
		record.DeductionsDetail = req.DeductionsDetail
	}
	if req.BonusesDetail != nil {
		record.BonusesDetail = req.BonusesDetail
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	// Net is always derived, never caller-supplied.
	record.NetAmount = money.Net(record.GrossAmount, record.Deductions, record.Bonuses)

	if err := s.recordRepo.Update(ctx, record, observed); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) SubmitRecord(ctx context.Context, companyID, id string) (payroll.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if record.Status != payroll.RecordStatusDraft {
		return payroll.RecordResponse{}, fmt.Errorf("cannot submit record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}

	record.Status = payroll.RecordStatusPendingApproval
	if err := s.recordRepo.Update(ctx, record, payroll.RecordStatusDraft); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ApproveRecord(ctx context.Context, companyID, actorID, id string) (payroll.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if record.Status != payroll.RecordStatusPendingApproval {
		return payroll.RecordResponse{}, fmt.Errorf("cannot approve record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}

	now := time.Now()
	record.Status = payroll.RecordStatusApproved
	record.ApprovedBy = &actorID
	record.ApprovedAt = &now
	if err := s.recordRepo.Update(ctx, record, payroll.RecordStatusPendingApproval); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

// PayRecord pays a single approved record outside of a batch run, using the
// same disbursement executor. The employee needs a wallet or an external bank
// account; the wallet wins when both are configured.
func (s *PayrollServiceImpl) PayRecord(ctx context.Context, companyID, id string) (payroll.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if record.Status != payroll.RecordStatusApproved {
		return payroll.RecordResponse{}, fmt.Errorf("cannot pay record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}

	emp, err := s.employeeRepo.GetByID(ctx, companyID, record.EmployeeID)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if !emp.HasPaymentDestination() {
		return payroll.RecordResponse{}, payroll.ErrMissingPaymentDestination
	}
	destination := ""
	if emp.HasWallet() {
		destination = *emp.WalletID
	} else {
		destination = *emp.BankAccountNumber
	}

	transactionID, err := s.executor.Disburse(ctx, record.EmployeeID, record.NetAmount, destination)
	if err != nil {
		reason := err.Error()
		record.Status = payroll.RecordStatusFailed
		record.FailureReason = &reason
		if updateErr := s.recordRepo.Update(ctx, record, payroll.RecordStatusApproved); updateErr != nil {
			return payroll.RecordResponse{}, fmt.Errorf("payment executor: %w (additionally failed to persist failure: %v)", err, updateErr)
		}
		return payroll.RecordResponse{}, fmt.Errorf("payment executor: %w", err)
	}

	now := time.Now()
	record.Status = payroll.RecordStatusPaid
	record.TransactionID = &transactionID
	record.PaidAt = &now
	if err := s.recordRepo.Update(ctx, record, payroll.RecordStatusApproved); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) MarkRecordFailed(ctx context.Context, companyID, id string, req payroll.FailRecordRequest) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if !recordStatusIn(record.Status, payroll.RecordStatusApproved, payroll.RecordStatusProcessing) {
		return payroll.RecordResponse{}, fmt.Errorf("cannot fail record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}
	observed := record.Status

	record.Status = payroll.RecordStatusFailed
	record.FailureReason = &req.Reason
	if err := s.recordRepo.Update(ctx, record, observed); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}

func (s *PayrollServiceImpl) CancelRecord(ctx context.Context, companyID, id string) (payroll.RecordResponse, error) {
	record, err := s.recordRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if !record.Status.IsCancellable() {
		return payroll.RecordResponse{}, fmt.Errorf("cannot cancel record in status %q: %w", record.Status, payroll.ErrInvalidStatus)
	}
	observed := record.Status

	record.Status = payroll.RecordStatusCancelled
	if err := s.recordRepo.Update(ctx, record, observed); err != nil {
		return payroll.RecordResponse{}, err
	}

	return mapToRecordResponse(record), nil
}
