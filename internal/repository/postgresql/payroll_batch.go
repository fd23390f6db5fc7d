package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/database"
)

type batchRepository struct {
	db *database.DB
}

func NewBatchRepository(db *database.DB) payroll.BatchRepository {
	return &batchRepository{db: db}
}

const batchColumns = `
	id, company_id, business_id, name, period_start, period_end,
	total_employees, total_gross_amount, total_deductions, total_net_amount,
	status, approved_by, approved_at, processed_at, completed_at,
	funding_source, notes, created_by, created_at, updated_at
`

func scanBatch(row pgx.Row) (payroll.PayrollBatch, error) {
	var b payroll.PayrollBatch
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.BusinessID, &b.Name, &b.PeriodStart, &b.PeriodEnd,
		&b.TotalEmployees, &b.TotalGrossAmount, &b.TotalDeductions, &b.TotalNetAmount,
		&b.Status, &b.ApprovedBy, &b.ApprovedAt, &b.ProcessedAt, &b.CompletedAt,
		&b.FundingSource, &b.Notes, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *batchRepository) Create(ctx context.Context, batch payroll.PayrollBatch) (payroll.PayrollBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_batches (
			id, company_id, business_id, name, period_start, period_end,
			total_employees, total_gross_amount, total_deductions, total_net_amount,
			status, funding_source, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + batchColumns + `
	`

	b, err := scanBatch(q.QueryRow(ctx, query,
		batch.ID, batch.CompanyID, batch.BusinessID, batch.Name, batch.PeriodStart, batch.PeriodEnd,
		batch.TotalEmployees, batch.TotalGrossAmount, batch.TotalDeductions, batch.TotalNetAmount,
		batch.Status, batch.FundingSource, batch.Notes, batch.CreatedBy,
	))
	if err != nil {
		return payroll.PayrollBatch{}, fmt.Errorf("failed to create payroll batch: %w", err)
	}

	return b, nil
}

func (r *batchRepository) GetByID(ctx context.Context, companyID string, id string) (payroll.PayrollBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + batchColumns + `
		FROM payroll_batches
		WHERE id = $1 AND company_id = $2
	`

	b, err := scanBatch(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollBatch{}, payroll.ErrBatchNotFound
		}
		return payroll.PayrollBatch{}, fmt.Errorf("failed to get payroll batch: %w", err)
	}

	return b, nil
}

func (r *batchRepository) List(ctx context.Context, companyID string, filter payroll.BatchFilter) ([]payroll.PayrollBatch, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BusinessID != nil {
		args = append(args, *filter.BusinessID)
		conditions = append(conditions, fmt.Sprintf("business_id = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM payroll_batches WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll batches: %w", err)
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
		FROM payroll_batches
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, batchColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll batches: %w", err)
	}
	defer rows.Close()

	var batches []payroll.PayrollBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll batches: %w", err)
	}

	return batches, totalCount, nil
}

func (r *batchRepository) Update(ctx context.Context, batch payroll.PayrollBatch, expected payroll.BatchStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_batches SET
			status = $1, approved_by = $2, approved_at = $3,
			processed_at = $4, completed_at = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND company_id = $8 AND status = $9
	`

	tag, err := q.Exec(ctx, query,
		batch.Status, batch.ApprovedBy, batch.ApprovedAt,
		batch.ProcessedAt, batch.CompletedAt, batch.Notes,
		batch.ID, batch.CompanyID, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrInvalidStatus
	}

	return nil
}
