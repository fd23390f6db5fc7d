package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                string
	CompanyID         string
	BusinessID        string
	EmployeeCode      string
	FullName          string
	Department        *string
	EmploymentStatus  EmploymentStatus
	HireDate          time.Time
	EndDate           *time.Time
	BaseSalary        *decimal.Decimal
	WalletID          *string
	BankAccountNumber *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee can carry payroll obligations.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// HasWallet reports whether the employee has an internal wallet to disburse to.
func (e Employee) HasWallet() bool {
	return e.WalletID != nil && *e.WalletID != ""
}

// HasPaymentDestination reports whether a payment can be routed to the employee
// at all: an internal wallet or an external bank account.
func (e Employee) HasPaymentDestination() bool {
	if e.HasWallet() {
		return true
	}
	return e.BankAccountNumber != nil && *e.BankAccountNumber != ""
}
