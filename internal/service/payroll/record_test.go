package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID  = "company-1"
	testBusinessID = "business-1"
	testActorID    = "user-1"
)

func seedRecord(t *testing.T, env *testEnv, employeeID string, status payroll.RecordStatus) payroll.PayrollRecord {
	t.Helper()
	record := payroll.PayrollRecord{
		ID:          uuid.NewString(),
		CompanyID:   testCompanyID,
		EmployeeID:  employeeID,
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		GrossAmount: decimal.NewFromInt(5000000),
		Deductions:  decimal.NewFromInt(500000),
		Bonuses:     decimal.Zero,
		NetAmount:   decimal.NewFromInt(4500000),
		Status:      payroll.RecordStatusDraft,
		CreatedBy:   testActorID,
	}
	created, err := env.records.Create(context.Background(), record)
	require.NoError(t, err)
	if status != payroll.RecordStatusDraft {
		created.Status = status
		require.NoError(t, env.records.Update(context.Background(), created, payroll.RecordStatusDraft))
	}
	return created
}

func TestCreateRecord(t *testing.T) {
	env := newTestEnv()
	emp := activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000)
	env.employees.add(emp)

	req := payroll.CreateRecordRequest{
		EmployeeID:  "emp-1",
		PeriodStart: "2026-01-01",
		PeriodEnd:   "2026-02-01",
		GrossAmount: decimal.NewFromInt(5000000),
		Deductions:  decimal.NewFromInt(500000),
		Bonuses:     decimal.NewFromInt(250000),
		DeductionsDetail: map[string]decimal.Decimal{
			"BPJS": decimal.NewFromInt(500000),
		},
	}

	result, err := env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	require.NoError(t, err)

	assert.Equal(t, "draft", result.Status)
	assert.True(t, result.NetAmount.Equal(decimal.NewFromInt(4750000)), "net = gross - deductions + bonuses")
	assert.Equal(t, "emp-1", result.EmployeeID)
	assert.NotEmpty(t, result.ID)

	stored, err := env.records.GetByID(context.Background(), testCompanyID, result.ID)
	require.NoError(t, err)
	assert.Equal(t, testActorID, stored.CreatedBy)
}

func TestCreateRecord_Validation(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		req  payroll.CreateRecordRequest
	}{
		{
			name: "missing employee id",
			req: payroll.CreateRecordRequest{
				PeriodStart: "2026-01-01",
				PeriodEnd:   "2026-02-01",
				GrossAmount: decimal.NewFromInt(1000),
			},
		},
		{
			name: "malformed period start",
			req: payroll.CreateRecordRequest{
				EmployeeID:  "emp-1",
				PeriodStart: "01/01/2026",
				PeriodEnd:   "2026-02-01",
				GrossAmount: decimal.NewFromInt(1000),
			},
		},
		{
			name: "end not after start",
			req: payroll.CreateRecordRequest{
				EmployeeID:  "emp-1",
				PeriodStart: "2026-02-01",
				PeriodEnd:   "2026-02-01",
				GrossAmount: decimal.NewFromInt(1000),
			},
		},
		{
			name: "negative gross",
			req: payroll.CreateRecordRequest{
				EmployeeID:  "emp-1",
				PeriodStart: "2026-01-01",
				PeriodEnd:   "2026-02-01",
				GrossAmount: decimal.NewFromInt(-1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, tt.req)
			assert.Error(t, err)
		})
	}
}

func TestCreateRecord_EmployeeGuards(t *testing.T) {
	env := newTestEnv()
	resigned := activeEmployee("emp-resigned", testCompanyID, testBusinessID, 4000000)
	resigned.EmploymentStatus = employee.EmploymentStatusResigned
	env.employees.add(resigned)

	req := payroll.CreateRecordRequest{
		EmployeeID:  "emp-resigned",
		PeriodStart: "2026-01-01",
		PeriodEnd:   "2026-02-01",
		GrossAmount: decimal.NewFromInt(4000000),
	}

	_, err := env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	req.EmployeeID = "emp-unknown"
	_, err = env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCreateRecord_DuplicatePeriod(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))

	req := payroll.CreateRecordRequest{
		EmployeeID:  "emp-1",
		PeriodStart: "2026-01-01",
		PeriodEnd:   "2026-02-01",
		GrossAmount: decimal.NewFromInt(5000000),
	}

	first, err := env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	require.NoError(t, err)

	_, err = env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	assert.ErrorIs(t, err, payroll.ErrDuplicateRecord)

	// Cancelling the first record frees the period for a new one.
	_, err = env.svc.CancelRecord(context.Background(), testCompanyID, first.ID)
	require.NoError(t, err)

	_, err = env.svc.CreateRecord(context.Background(), testCompanyID, testActorID, req)
	assert.NoError(t, err)
}

func TestUpdateRecord_RecomputesNet(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusDraft)

	bonuses := decimal.NewFromInt(1000000)
	result, err := env.svc.UpdateRecord(context.Background(), testCompanyID, payroll.UpdateRecordRequest{
		ID:      record.ID,
		Bonuses: &bonuses,
	})
	require.NoError(t, err)

	// 5000000 - 500000 + 1000000
	assert.True(t, result.NetAmount.Equal(decimal.NewFromInt(5500000)))
}

func TestUpdateRecord_EditableStatusesOnly(t *testing.T) {
	tests := []struct {
		status  payroll.RecordStatus
		allowed bool
	}{
		{payroll.RecordStatusDraft, true},
		{payroll.RecordStatusPendingApproval, true},
		{payroll.RecordStatusApproved, false},
		{payroll.RecordStatusProcessing, false},
		{payroll.RecordStatusPaid, false},
		{payroll.RecordStatusFailed, false},
		{payroll.RecordStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", tt.status)

			gross := decimal.NewFromInt(6000000)
			_, err := env.svc.UpdateRecord(context.Background(), testCompanyID, payroll.UpdateRecordRequest{
				ID:          record.ID,
				GrossAmount: &gross,
			})
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
			}
		})
	}
}

func TestSubmitRecord_Transitions(t *testing.T) {
	tests := []struct {
		status  payroll.RecordStatus
		allowed bool
	}{
		{payroll.RecordStatusDraft, true},
		{payroll.RecordStatusPendingApproval, false},
		{payroll.RecordStatusApproved, false},
		{payroll.RecordStatusProcessing, false},
		{payroll.RecordStatusPaid, false},
		{payroll.RecordStatusFailed, false},
		{payroll.RecordStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", tt.status)

			result, err := env.svc.SubmitRecord(context.Background(), testCompanyID, record.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "pending_approval", result.Status)
			} else {
				assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
			}
		})
	}
}

func TestApproveRecord_Transitions(t *testing.T) {
	tests := []struct {
		status  payroll.RecordStatus
		allowed bool
	}{
		{payroll.RecordStatusDraft, false},
		{payroll.RecordStatusPendingApproval, true},
		{payroll.RecordStatusApproved, false},
		{payroll.RecordStatusProcessing, false},
		{payroll.RecordStatusPaid, false},
		{payroll.RecordStatusFailed, false},
		{payroll.RecordStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", tt.status)

			result, err := env.svc.ApproveRecord(context.Background(), testCompanyID, testActorID, record.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "approved", result.Status)
				require.NotNil(t, result.ApprovedBy)
				assert.Equal(t, testActorID, *result.ApprovedBy)
				assert.NotNil(t, result.ApprovedAt)
			} else {
				assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
			}
		})
	}
}

func TestPayRecord(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	result, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
	require.NoError(t, err)

	assert.Equal(t, "paid", result.Status)
	require.NotNil(t, result.TransactionID)
	assert.Equal(t, "txn-001", *result.TransactionID)
	assert.NotNil(t, result.PaidAt)
	assert.Equal(t, []string{"emp-1"}, env.executor.calls)
}

func TestPayRecord_BankAccountFallback(t *testing.T) {
	env := newTestEnv()
	emp := activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000)
	emp.WalletID = nil
	emp.BankAccountNumber = strPtr("1234567890")
	env.employees.add(emp)
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	result, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", result.Status)
}

func TestPayRecord_MissingDestination(t *testing.T) {
	env := newTestEnv()
	emp := activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000)
	emp.WalletID = nil
	env.employees.add(emp)
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	_, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
	assert.ErrorIs(t, err, payroll.ErrMissingPaymentDestination)
	assert.Empty(t, env.executor.calls, "guard failures never reach the executor")

	// The record stays approved; nothing was attempted.
	stored, getErr := env.records.GetByID(context.Background(), testCompanyID, record.ID)
	require.NoError(t, getErr)
	assert.Equal(t, payroll.RecordStatusApproved, stored.Status)
}

func TestPayRecord_ExecutorFailure(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	env.executor.failFor["emp-1"] = assert.AnError
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	_, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
	require.Error(t, err)

	stored, getErr := env.records.GetByID(context.Background(), testCompanyID, record.ID)
	require.NoError(t, getErr)
	assert.Equal(t, payroll.RecordStatusFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Contains(t, *stored.FailureReason, assert.AnError.Error())
}

func TestPayRecord_ExecutorFailurePersistError(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	env.executor.failFor["emp-1"] = assert.AnError
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	// The store also refuses the failure write; both errors must surface.
	env.records.updateErr = errors.New("connection reset")

	_, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPayRecord_RequiresApproved(t *testing.T) {
	for _, status := range []payroll.RecordStatus{
		payroll.RecordStatusDraft,
		payroll.RecordStatusPendingApproval,
		payroll.RecordStatusProcessing,
		payroll.RecordStatusPaid,
		payroll.RecordStatusFailed,
		payroll.RecordStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", status)

			_, err := env.svc.PayRecord(context.Background(), testCompanyID, record.ID)
			assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
		})
	}
}

func TestMarkRecordFailed(t *testing.T) {
	tests := []struct {
		status  payroll.RecordStatus
		allowed bool
	}{
		{payroll.RecordStatusDraft, false},
		{payroll.RecordStatusPendingApproval, false},
		{payroll.RecordStatusApproved, true},
		{payroll.RecordStatusProcessing, true},
		{payroll.RecordStatusPaid, false},
		{payroll.RecordStatusFailed, false},
		{payroll.RecordStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", tt.status)

			result, err := env.svc.MarkRecordFailed(context.Background(), testCompanyID, record.ID, payroll.FailRecordRequest{Reason: "gateway timeout"})
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "failed", result.Status)
				require.NotNil(t, result.FailureReason)
				assert.Equal(t, "gateway timeout", *result.FailureReason)
			} else {
				assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
			}
		})
	}
}

func TestMarkRecordFailed_ReasonRequired(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusApproved)

	_, err := env.svc.MarkRecordFailed(context.Background(), testCompanyID, record.ID, payroll.FailRecordRequest{})
	assert.Error(t, err)
}

func TestCancelRecord(t *testing.T) {
	tests := []struct {
		status  payroll.RecordStatus
		allowed bool
	}{
		{payroll.RecordStatusDraft, true},
		{payroll.RecordStatusPendingApproval, true},
		{payroll.RecordStatusApproved, true},
		{payroll.RecordStatusProcessing, true},
		{payroll.RecordStatusFailed, true},
		{payroll.RecordStatusPaid, false},
		{payroll.RecordStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			env := newTestEnv()
			env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
			record := seedRecord(t, env, "emp-1", tt.status)

			result, err := env.svc.CancelRecord(context.Background(), testCompanyID, record.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "cancelled", result.Status)
			} else {
				assert.ErrorIs(t, err, payroll.ErrInvalidStatus)
			}
		})
	}
}

func TestRecord_CompanyScoping(t *testing.T) {
	env := newTestEnv()
	env.employees.add(activeEmployee("emp-1", testCompanyID, testBusinessID, 5000000))
	record := seedRecord(t, env, "emp-1", payroll.RecordStatusDraft)

	_, err := env.svc.GetRecord(context.Background(), "other-company", record.ID)
	assert.ErrorIs(t, err, payroll.ErrRecordNotFound)
}
