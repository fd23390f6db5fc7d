package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
)

// ProcessBatchPayments drives every approved member record of an approved
// batch through disbursement. Each record is its own unit of work: a failed
// disbursement marks that record failed and processing continues with the
// rest. The snapshot of approved records is taken once, before the first
// payment; records approved afterwards are not picked up by this run.
//
// The terminal rule is deliberately asymmetric: any successful disbursement
// (or a run with zero failures) marks the batch paid, and only a run where
// every attempt failed marks it failed. "Paid" therefore means "done being
// processed" - callers that need all-success semantics must inspect the
// per-record outcomes or the records_by_status breakdown.
func (s *PayrollServiceImpl) ProcessBatchPayments(ctx context.Context, companyID, id string) (payroll.BatchPaymentResult, error) {
	batch, err := s.batchRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchPaymentResult{}, err
	}
	if batch.Status != payroll.BatchStatusApproved {
		return payroll.BatchPaymentResult{}, fmt.Errorf("cannot process batch in status %q: %w", batch.Status, payroll.ErrInvalidStatus)
	}

	now := time.Now()
	batch.Status = payroll.BatchStatusProcessing
	batch.ProcessedAt = &now
	// Conditional on the approved status, so two concurrent runs of the same
	// batch cannot both get past this point.
	if err := s.batchRepo.Update(ctx, batch, payroll.BatchStatusApproved); err != nil {
		return payroll.BatchPaymentResult{}, err
	}

	members, err := s.recordRepo.ListByBatchID(ctx, companyID, id)
	if err != nil {
		return payroll.BatchPaymentResult{}, err
	}
	var snapshot []payroll.PayrollRecord
	for _, rec := range members {
		if rec.Status == payroll.RecordStatusApproved {
			snapshot = append(snapshot, rec)
		}
	}

	result := payroll.BatchPaymentResult{BatchID: batch.ID}
	for _, rec := range snapshot {
		outcome := s.payBatchRecord(ctx, rec)
		if outcome.Status == string(payroll.RecordStatusPaid) {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	completed := time.Now()
	batch.CompletedAt = &completed
	if result.Failed == 0 || result.Successful > 0 {
		batch.Status = payroll.BatchStatusPaid
	} else {
		batch.Status = payroll.BatchStatusFailed
	}
	if err := s.batchRepo.Update(ctx, batch, payroll.BatchStatusProcessing); err != nil {
		return payroll.BatchPaymentResult{}, err
	}

	result.BatchStatus = string(batch.Status)
	return result, nil
}

// payBatchRecord is the per-record unit of the batch run. It never returns an
// error; every failure mode ends with the record marked failed and the reason
// captured in the outcome.
func (s *PayrollServiceImpl) payBatchRecord(ctx context.Context, record payroll.PayrollRecord) payroll.RecordOutcome {
	emp, err := s.employeeRepo.GetByID(ctx, record.CompanyID, record.EmployeeID)
	if err != nil {
		return s.failBatchRecord(ctx, record, payroll.RecordStatusApproved, fmt.Sprintf("employee lookup failed: %v", err))
	}
	if !emp.HasWallet() {
		// Guard failure: no executor call is made for this record.
		return s.failBatchRecord(ctx, record, payroll.RecordStatusApproved, payroll.ErrMissingPaymentDestination.Error())
	}

	record.Status = payroll.RecordStatusProcessing
	if err := s.recordRepo.Update(ctx, record, payroll.RecordStatusApproved); err != nil {
		// Lost the status race for this record; report it failed without
		// touching it further.
		reason := err.Error()
		return payroll.RecordOutcome{
			RecordID:   record.ID,
			EmployeeID: record.EmployeeID,
			Status:     string(payroll.RecordStatusFailed),
			Error:      &reason,
		}
	}

	transactionID, err := s.executor.Disburse(ctx, record.EmployeeID, record.NetAmount, *emp.WalletID)
	if err != nil {
		return s.failBatchRecord(ctx, record, payroll.RecordStatusProcessing, err.Error())
	}

	now := time.Now()
	record.Status = payroll.RecordStatusPaid
	record.TransactionID = &transactionID
	record.PaidAt = &now
	if err := s.recordRepo.Update(ctx, record, payroll.RecordStatusProcessing); err != nil {
		reason := fmt.Sprintf("disbursed as %s but failed to persist: %v", transactionID, err)
		return payroll.RecordOutcome{
			RecordID:      record.ID,
			EmployeeID:    record.EmployeeID,
			Status:        string(payroll.RecordStatusFailed),
			TransactionID: &transactionID,
			Error:         &reason,
		}
	}

	return payroll.RecordOutcome{
		RecordID:      record.ID,
		EmployeeID:    record.EmployeeID,
		Status:        string(payroll.RecordStatusPaid),
		TransactionID: &transactionID,
	}
}

func (s *PayrollServiceImpl) failBatchRecord(ctx context.Context, record payroll.PayrollRecord, expected payroll.RecordStatus, reason string) payroll.RecordOutcome {
	record.Status = payroll.RecordStatusFailed
	record.FailureReason = &reason
	if err := s.recordRepo.Update(ctx, record, expected); err != nil {
		reason = fmt.Sprintf("%s (additionally failed to persist failure: %v)", reason, err)
	}

	return payroll.RecordOutcome{
		RecordID:   record.ID,
		EmployeeID: record.EmployeeID,
		Status:     string(payroll.RecordStatusFailed),
		Error:      &reason,
	}
}
