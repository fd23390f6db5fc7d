package payroll

import (
	"time"

	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
)

type PayrollServiceImpl struct {
	tx           payroll.TxManager
	recordRepo   payroll.RecordRepository
	batchRepo    payroll.BatchRepository
	employeeRepo employee.EmployeeRepository
	executor     payroll.PaymentExecutor
}

func NewPayrollService(
	tx payroll.TxManager,
	recordRepo payroll.RecordRepository,
	batchRepo payroll.BatchRepository,
	employeeRepo employee.EmployeeRepository,
	executor payroll.PaymentExecutor,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		recordRepo:   recordRepo,
		batchRepo:    batchRepo,
		employeeRepo: employeeRepo,
		executor:     executor,
	}
}

// ========== HELPERS ==========

const dateLayout = "2006-01-02"

func recordStatusIn(s payroll.RecordStatus, set ...payroll.RecordStatus) bool {
	for _, allowed := range set {
		if s == allowed {
			return true
		}
	}
	return false
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.RecordResponse {
	return payroll.RecordResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Department:       r.Department,
		BatchID:          r.BatchID,
		PeriodStart:      r.PeriodStart.Format(dateLayout),
		PeriodEnd:        r.PeriodEnd.Format(dateLayout),
		GrossAmount:      r.GrossAmount,
		Deductions:       r.Deductions,
		Bonuses:          r.Bonuses,
		NetAmount:        r.NetAmount,
		DeductionsDetail: r.DeductionsDetail,
		BonusesDetail:    r.BonusesDetail,
		Status:           string(r.Status),
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       formatTimePtr(r.ApprovedAt),
		TransactionID:    r.TransactionID,
		PaidAt:           formatTimePtr(r.PaidAt),
		FailureReason:    r.FailureReason,
		Notes:            r.Notes,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.RecordResponse {
	result := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}

func mapToBatchResponse(b payroll.PayrollBatch) payroll.BatchResponse {
	return payroll.BatchResponse{
		ID:               b.ID,
		BusinessID:       b.BusinessID,
		Name:             b.Name,
		PeriodStart:      b.PeriodStart.Format(dateLayout),
		PeriodEnd:        b.PeriodEnd.Format(dateLayout),
		TotalEmployees:   b.TotalEmployees,
		TotalGrossAmount: b.TotalGrossAmount,
		TotalDeductions:  b.TotalDeductions,
		TotalNetAmount:   b.TotalNetAmount,
		Status:           string(b.Status),
		ApprovedBy:       b.ApprovedBy,
		ApprovedAt:       formatTimePtr(b.ApprovedAt),
		ProcessedAt:      formatTimePtr(b.ProcessedAt),
		CompletedAt:      formatTimePtr(b.CompletedAt),
		FundingSource:    b.FundingSource,
		Notes:            b.Notes,
	}
}

func countRecordsByStatus(records []payroll.PayrollRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[string(r.Status)]++
	}
	return counts
}
