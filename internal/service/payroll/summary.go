package payroll

import (
	"context"

	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// GetYearlySummary buckets the year's paid records by month of year (0-11)
// and by employee department, and totals the net amounts still in flight
// (draft, pending approval, approved). Read-only.
func (s *PayrollServiceImpl) GetYearlySummary(ctx context.Context, companyID, businessID string, year int) (payroll.YearlySummaryResponse, error) {
	paid, err := s.recordRepo.ListPaidInYear(ctx, companyID, businessID, year)
	if err != nil {
		return payroll.YearlySummaryResponse{}, err
	}

	byMonth := make(map[int]decimal.Decimal, 12)
	for m := 0; m < 12; m++ {
		byMonth[m] = decimal.Zero
	}
	byDepartment := make(map[string]decimal.Decimal)
	totalPaid := decimal.Zero

	for _, rec := range paid {
		if rec.PaidAt == nil {
			continue
		}

		month := int(rec.PaidAt.Month()) - 1
		byMonth[month] = byMonth[month].Add(rec.NetAmount)

		department := payroll.UnassignedDepartment
		if rec.Department != nil && *rec.Department != "" {
			department = *rec.Department
		}
		byDepartment[department] = byDepartment[department].Add(rec.NetAmount)

		totalPaid = totalPaid.Add(rec.NetAmount)
	}

	pending, err := s.recordRepo.ListPendingByBusiness(ctx, companyID, businessID)
	if err != nil {
		return payroll.YearlySummaryResponse{}, err
	}
	totalPending := decimal.Zero
	for _, rec := range pending {
		totalPending = totalPending.Add(rec.NetAmount)
	}

	return payroll.YearlySummaryResponse{
		Year:         year,
		TotalPaid:    totalPaid,
		ByMonth:      byMonth,
		ByDepartment: byDepartment,
		TotalPending: totalPending,
	}, nil
}
