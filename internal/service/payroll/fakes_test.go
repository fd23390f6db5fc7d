package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// In-memory doubles for the repository and executor contracts. They keep
// insertion order so assertions on batch runs are deterministic.

type fakeRecordRepo struct {
	records map[string]payroll.PayrollRecord
	order   []string

	// Business scoping on the summary reads goes through the employee
	// directory, same as the SQL join.
	employees *fakeEmployeeRepo

	createErr      error
	createErrAfter int // fail the Nth create (1-based); 0 disables
	createCalls    int
	updateErr      error
	bulkErr        error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]payroll.PayrollRecord)}
}

func (r *fakeRecordRepo) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.createCalls++
	if r.createErr != nil && (r.createErrAfter == 0 || r.createCalls >= r.createErrAfter) {
		return payroll.PayrollRecord{}, r.createErr
	}
	for _, existing := range r.records {
		if existing.EmployeeID == record.EmployeeID &&
			existing.PeriodStart.Equal(record.PeriodStart) &&
			existing.PeriodEnd.Equal(record.PeriodEnd) &&
			existing.Status.IsActive() {
			return payroll.PayrollRecord{}, payroll.ErrDuplicateRecord
		}
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records[record.ID] = record
	r.order = append(r.order, record.ID)
	return record, nil
}

func (r *fakeRecordRepo) GetByID(ctx context.Context, companyID, id string) (payroll.PayrollRecord, error) {
	record, ok := r.records[id]
	if !ok || record.CompanyID != companyID {
		return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
	}
	return record, nil
}

func (r *fakeRecordRepo) List(ctx context.Context, companyID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.BatchID != nil && (rec.BatchID == nil || *rec.BatchID != *filter.BatchID) {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRecordRepo) ListByBatchID(ctx context.Context, companyID, batchID string) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.CompanyID == companyID && rec.BatchID != nil && *rec.BatchID == batchID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) HasActiveForPeriod(ctx context.Context, companyID, employeeID string, periodStart, periodEnd time.Time) (bool, error) {
	for _, rec := range r.records {
		if rec.CompanyID == companyID && rec.EmployeeID == employeeID &&
			rec.PeriodStart.Equal(periodStart) && rec.PeriodEnd.Equal(periodEnd) &&
			rec.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRecordRepo) Update(ctx context.Context, record payroll.PayrollRecord, expected payroll.RecordStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.records[record.ID]
	if !ok || existing.CompanyID != record.CompanyID {
		return payroll.ErrRecordNotFound
	}
	if existing.Status != expected {
		return payroll.ErrInvalidStatus
	}
	record.UpdatedAt = time.Now()
	r.records[record.ID] = record
	return nil
}

func (r *fakeRecordRepo) BulkUpdateStatusByBatch(ctx context.Context, companyID, batchID string, from []payroll.RecordStatus, to payroll.RecordStatus, approvedBy *string, approvedAt *time.Time) (int64, error) {
	if r.bulkErr != nil {
		return 0, r.bulkErr
	}
	fromSet := make(map[payroll.RecordStatus]bool, len(from))
	for _, st := range from {
		fromSet[st] = true
	}
	var moved int64
	for _, id := range r.order {
		rec := r.records[id]
		if rec.CompanyID != companyID || rec.BatchID == nil || *rec.BatchID != batchID {
			continue
		}
		if !fromSet[rec.Status] {
			continue
		}
		rec.Status = to
		if approvedBy != nil {
			rec.ApprovedBy = approvedBy
		}
		if approvedAt != nil {
			rec.ApprovedAt = approvedAt
		}
		r.records[id] = rec
		moved++
	}
	return moved, nil
}

func (r *fakeRecordRepo) inBusiness(rec payroll.PayrollRecord, businessID string) bool {
	emp, ok := r.employees.employees[rec.EmployeeID]
	return ok && emp.BusinessID == businessID
}

func (r *fakeRecordRepo) ListPaidInYear(ctx context.Context, companyID, businessID string, year int) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.CompanyID != companyID || rec.Status != payroll.RecordStatusPaid {
			continue
		}
		if rec.PaidAt == nil || rec.PaidAt.Year() != year {
			continue
		}
		if !r.inBusiness(rec, businessID) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRecordRepo) ListPendingByBusiness(ctx context.Context, companyID, businessID string) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if rec.CompanyID != companyID || !r.inBusiness(rec, businessID) {
			continue
		}
		switch rec.Status {
		case payroll.RecordStatusDraft, payroll.RecordStatusPendingApproval, payroll.RecordStatusApproved:
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeBatchRepo struct {
	batches map[string]payroll.PayrollBatch
	order   []string
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]payroll.PayrollBatch)}
}

func (r *fakeBatchRepo) Create(ctx context.Context, batch payroll.PayrollBatch) (payroll.PayrollBatch, error) {
	now := time.Now()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	r.batches[batch.ID] = batch
	r.order = append(r.order, batch.ID)
	return batch, nil
}

func (r *fakeBatchRepo) GetByID(ctx context.Context, companyID, id string) (payroll.PayrollBatch, error) {
	batch, ok := r.batches[id]
	if !ok || batch.CompanyID != companyID {
		return payroll.PayrollBatch{}, payroll.ErrBatchNotFound
	}
	return batch, nil
}

func (r *fakeBatchRepo) List(ctx context.Context, companyID string, filter payroll.BatchFilter) ([]payroll.PayrollBatch, int64, error) {
	var out []payroll.PayrollBatch
	for _, id := range r.order {
		b := r.batches[id]
		if b.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && string(b.Status) != *filter.Status {
			continue
		}
		if filter.BusinessID != nil && b.BusinessID != *filter.BusinessID {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBatchRepo) Update(ctx context.Context, batch payroll.PayrollBatch, expected payroll.BatchStatus) error {
	existing, ok := r.batches[batch.ID]
	if !ok || existing.CompanyID != batch.CompanyID {
		return payroll.ErrBatchNotFound
	}
	if existing.Status != expected {
		return payroll.ErrInvalidStatus
	}
	batch.UpdatedAt = time.Now()
	r.batches[batch.ID] = batch
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
}

func (r *fakeEmployeeRepo) add(emp employee.Employee) {
	r.employees[emp.ID] = emp
	r.order = append(r.order, emp.ID)
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok || emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) ListEligible(ctx context.Context, companyID, businessID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, id := range r.order {
		emp := r.employees[id]
		if emp.CompanyID != companyID || emp.BusinessID != businessID {
			continue
		}
		if !emp.IsActive() || emp.EndDate != nil || emp.BaseSalary == nil {
			continue
		}
		out = append(out, emp)
	}
	return out, nil
}

// fakeTxManager snapshots both stores before running fn and restores them if
// fn fails, mirroring a real rollback.
type fakeTxManager struct {
	recordRepo *fakeRecordRepo
	batchRepo  *fakeBatchRepo
}

func (t *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	recordsBefore := make(map[string]payroll.PayrollRecord, len(t.recordRepo.records))
	for k, v := range t.recordRepo.records {
		recordsBefore[k] = v
	}
	recordOrderBefore := append([]string(nil), t.recordRepo.order...)
	batchesBefore := make(map[string]payroll.PayrollBatch, len(t.batchRepo.batches))
	for k, v := range t.batchRepo.batches {
		batchesBefore[k] = v
	}
	batchOrderBefore := append([]string(nil), t.batchRepo.order...)

	if err := fn(ctx); err != nil {
		t.recordRepo.records = recordsBefore
		t.recordRepo.order = recordOrderBefore
		t.batchRepo.batches = batchesBefore
		t.batchRepo.order = batchOrderBefore
		return err
	}
	return nil
}

type fakeExecutor struct {
	failFor map[string]error // employeeID -> error
	calls   []string
	txnSeq  int
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{failFor: make(map[string]error)}
}

func (e *fakeExecutor) Disburse(ctx context.Context, employeeID string, amount decimal.Decimal, walletID string) (string, error) {
	e.calls = append(e.calls, employeeID)
	if err, ok := e.failFor[employeeID]; ok {
		return "", err
	}
	e.txnSeq++
	return fmt.Sprintf("txn-%03d", e.txnSeq), nil
}

// testEnv bundles the service with its fakes for direct state assertions.
type testEnv struct {
	svc       payroll.PayrollService
	records   *fakeRecordRepo
	batches   *fakeBatchRepo
	employees *fakeEmployeeRepo
	executor  *fakeExecutor
}

func newTestEnv() *testEnv {
	records := newFakeRecordRepo()
	batches := newFakeBatchRepo()
	employees := newFakeEmployeeRepo()
	records.employees = employees
	executor := newFakeExecutor()
	tx := &fakeTxManager{recordRepo: records, batchRepo: batches}
	return &testEnv{
		svc:       NewPayrollService(tx, records, batches, employees, executor),
		records:   records,
		batches:   batches,
		employees: employees,
		executor:  executor,
	}
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func activeEmployee(id, companyID, businessID string, salary int64) employee.Employee {
	return employee.Employee{
		ID:               id,
		CompanyID:        companyID,
		BusinessID:       businessID,
		EmployeeCode:     "EMP-" + id,
		FullName:         "Employee " + id,
		EmploymentStatus: employee.EmploymentStatusActive,
		HireDate:         time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseSalary:       decPtr(decimal.NewFromInt(salary)),
		WalletID:         strPtr("wallet-" + id),
	}
}
