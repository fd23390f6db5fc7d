package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/database"
)

type recordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) payroll.RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	deductionsJSON, _ := json.Marshal(record.DeductionsDetail)
	bonusesJSON, _ := json.Marshal(record.BonusesDetail)

	query := `
		INSERT INTO payroll_records (
			id, company_id, employee_id, batch_id, period_start, period_end,
			gross_amount, deductions, bonuses, net_amount,
			deductions_detail, bonuses_detail, status, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, company_id, employee_id, batch_id, period_start, period_end,
			gross_amount, deductions, bonuses, net_amount,
			deductions_detail, bonuses_detail, status,
			approved_by, approved_at, transaction_id, paid_at, failure_reason,
			notes, created_by, created_at, updated_at
	`

	var rec payroll.PayrollRecord
	var deductionsBytes, bonusesBytes []byte
	err := q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.BatchID, record.PeriodStart, record.PeriodEnd,
		record.GrossAmount, record.Deductions, record.Bonuses, record.NetAmount,
		deductionsJSON, bonusesJSON, record.Status, record.Notes, record.CreatedBy,
	).Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.BatchID, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.GrossAmount, &rec.Deductions, &rec.Bonuses, &rec.NetAmount,
		&deductionsBytes, &bonusesBytes, &rec.Status,
		&rec.ApprovedBy, &rec.ApprovedAt, &rec.TransactionID, &rec.PaidAt, &rec.FailureReason,
		&rec.Notes, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_active_employee_period") {
			return payroll.PayrollRecord{}, payroll.ErrDuplicateRecord
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	_ = json.Unmarshal(deductionsBytes, &rec.DeductionsDetail)
	_ = json.Unmarshal(bonusesBytes, &rec.BonusesDetail)

	return rec, nil
}

const recordSelectColumns = `
	pr.id, pr.company_id, pr.employee_id, pr.batch_id, pr.period_start, pr.period_end,
	pr.gross_amount, pr.deductions, pr.bonuses, pr.net_amount,
	pr.deductions_detail, pr.bonuses_detail, pr.status,
	pr.approved_by, pr.approved_at, pr.transaction_id, pr.paid_at, pr.failure_reason,
	pr.notes, pr.created_by, pr.created_at, pr.updated_at,
	e.full_name AS employee_name, e.department
`

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var deductionsBytes, bonusesBytes []byte
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.BatchID, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.GrossAmount, &rec.Deductions, &rec.Bonuses, &rec.NetAmount,
		&deductionsBytes, &bonusesBytes, &rec.Status,
		&rec.ApprovedBy, &rec.ApprovedAt, &rec.TransactionID, &rec.PaidAt, &rec.FailureReason,
		&rec.Notes, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.Department,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	_ = json.Unmarshal(deductionsBytes, &rec.DeductionsDetail)
	_ = json.Unmarshal(bonusesBytes, &rec.BonusesDetail)

	return rec, nil
}

func (r *recordRepository) GetByID(ctx context.Context, companyID string, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordSelectColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1 AND pr.company_id = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *recordRepository) List(ctx context.Context, companyID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"pr.company_id = $1"}
	args := []interface{}{companyID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("pr.status = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("pr.employee_id = $%d", len(args)))
	}
	if filter.BatchID != nil {
		args = append(args, *filter.BatchID)
		conditions = append(conditions, fmt.Sprintf("pr.batch_id = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM payroll_records pr WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	sortBy := "pr.created_at"
	switch filter.SortBy {
	case "period_start":
		sortBy = "pr.period_start"
	case "net_amount":
		sortBy = "pr.net_amount"
	case "status":
		sortBy = "pr.status"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, recordSelectColumns, where, sortBy, sortOrder, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

func (r *recordRepository) ListByBatchID(ctx context.Context, companyID string, batchID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordSelectColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.batch_id = $1 AND pr.company_id = $2
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query, batchID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch records: %w", err)
	}

	return records, nil
}

func (r *recordRepository) HasActiveForPeriod(ctx context.Context, companyID string, employeeID string, periodStart, periodEnd time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payroll_records
			WHERE company_id = $1 AND employee_id = $2
			  AND period_start = $3 AND period_end = $4
			  AND status NOT IN ('cancelled', 'failed')
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, companyID, employeeID, periodStart, periodEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active record for period: %w", err)
	}

	return exists, nil
}

func (r *recordRepository) Update(ctx context.Context, record payroll.PayrollRecord, expected payroll.RecordStatus) error {
	q := GetQuerier(ctx, r.db)

	deductionsJSON, _ := json.Marshal(record.DeductionsDetail)
	bonusesJSON, _ := json.Marshal(record.BonusesDetail)

	query := `
		UPDATE payroll_records SET
			gross_amount = $1, deductions = $2, bonuses = $3, net_amount = $4,
			deductions_detail = $5, bonuses_detail = $6, status = $7,
			approved_by = $8, approved_at = $9, transaction_id = $10, paid_at = $11,
			failure_reason = $12, notes = $13, updated_at = NOW()
		WHERE id = $14 AND company_id = $15 AND status = $16
	`

	tag, err := q.Exec(ctx, query,
		record.GrossAmount, record.Deductions, record.Bonuses, record.NetAmount,
		deductionsJSON, bonusesJSON, record.Status,
		record.ApprovedBy, record.ApprovedAt, record.TransactionID, record.PaidAt,
		record.FailureReason, record.Notes,
		record.ID, record.CompanyID, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Row exists (records are never deleted); its status moved under us.
		return payroll.ErrInvalidStatus
	}

	return nil
}

func (r *recordRepository) BulkUpdateStatusByBatch(ctx context.Context, companyID string, batchID string, from []payroll.RecordStatus, to payroll.RecordStatus, approvedBy *string, approvedAt *time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query := `
		UPDATE payroll_records SET
			status = $1,
			approved_by = COALESCE($2, approved_by),
			approved_at = COALESCE($3, approved_at),
			updated_at = NOW()
		WHERE batch_id = $4 AND company_id = $5 AND status = ANY($6)
	`

	tag, err := q.Exec(ctx, query, to, approvedBy, approvedAt, batchID, companyID, statuses)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update batch records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *recordRepository) ListPaidInYear(ctx context.Context, companyID string, businessID string, year int) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordSelectColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1 AND e.business_id = $2
		  AND pr.status = 'paid'
		  AND pr.paid_at >= $3 AND pr.paid_at < $4
		ORDER BY pr.paid_at ASC
	`

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	rows, err := q.Query(ctx, query, companyID, businessID, yearStart, yearEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list paid records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paid records: %w", err)
	}

	return records, nil
}

func (r *recordRepository) ListPendingByBusiness(ctx context.Context, companyID string, businessID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordSelectColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.company_id = $1 AND e.business_id = $2
		  AND pr.status IN ('draft', 'pending_approval', 'approved')
		ORDER BY pr.created_at ASC
	`

	rows, err := q.Query(ctx, query, companyID, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending records: %w", err)
	}

	return records, nil
}
