package employee

import "context"

// EmployeeRepository is the read-only directory contract consumed by payroll.
// All methods take companyID to prevent cross-company data access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, companyID string, id string) (Employee, error)

	// ListEligible returns employees that can be put on a payroll batch:
	// active, no end date, base salary configured.
	ListEligible(ctx context.Context, companyID string, businessID string) ([]Employee, error)
}
