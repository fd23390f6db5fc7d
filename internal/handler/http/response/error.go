package response

import (
	"errors"
	"net/http"

	"github.com/paystream-hq/payroll-backend-go/internal/domain/employee"
	"github.com/paystream-hq/payroll-backend-go/internal/domain/payroll"
	"github.com/paystream-hq/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrBatchNotFound):
		NotFound(w, "Payroll batch not found")
	case errors.Is(err, payroll.ErrInvalidStatus):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrDuplicateRecord):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoEligibleEmployees):
		UnprocessableEntity(w, "NO_ELIGIBLE_EMPLOYEES", err.Error())
	case errors.Is(err, payroll.ErrMissingPaymentDestination):
		UnprocessableEntity(w, "MISSING_PAYMENT_DESTINATION", err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		UnprocessableEntity(w, "EMPLOYEE_INACTIVE", err.Error())

	default:
		InternalServerError(w, "Internal server error")
	}
}
