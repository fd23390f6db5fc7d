package payroll

import "errors"

var (
	ErrRecordNotFound            = errors.New("payroll record not found")
	ErrBatchNotFound             = errors.New("payroll batch not found")
	ErrInvalidStatus             = errors.New("operation not allowed in current status")
	ErrDuplicateRecord           = errors.New("active payroll record already exists for this employee and period")
	ErrNoEligibleEmployees       = errors.New("no eligible employees for batch creation")
	ErrMissingPaymentDestination = errors.New("employee has no wallet or bank account configured")
)
